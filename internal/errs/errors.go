// Package errs provides the unified error type used across warehouser.
//
// Configuration problems (unknown dialect, missing or mistyped fields) are
// reported as *errs.Error with a Kind, so callers can branch on the kind
// without parsing messages. Errors coming back from a database driver are
// never converted into *errs.Error: they reach the caller as the driver
// produced them.
//
// Usage:
//
//	cfg, err := database.FromMap(m)
//	if errs.IsMissingField(err) {
//	    // ask the user for the rest of the settings
//	}
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKind categorises an error without exposing which component raised it.
type ErrKind int

const (
	ErrKindUnknown            ErrKind = iota
	ErrKindUnsupportedDialect         // dialect / dbms outside the supported set
	ErrKindMissingField               // required key absent from a mapping
	ErrKindTypeMismatch               // key present with a value of the wrong type
	ErrKindInvalidInput               // malformed argument (bad URI, unknown table, …)
	ErrKindConnectionFailed           // no driver could be opened for a target
	ErrKindNotFound                   // bucket or object missing from the file store
	ErrKindPermissionDenied           // credentials rejected by the file store
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindUnsupportedDialect:
		return "unsupported_dialect"
	case ErrKindMissingField:
		return "missing_field"
	case ErrKindTypeMismatch:
		return "type_mismatch"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindPermissionDenied:
		return "permission_denied"
	default:
		return "unknown"
	}
}

// Error is the single error type produced by warehouser itself.
type Error struct {
	Kind    ErrKind
	Message string
	Field   string // offending mapping key, if any
	Value   any    // offending value, echoed for TypeMismatch
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// UnsupportedDialect reports a dialect value outside valid. The message
// always lists the accepted values.
func UnsupportedDialect(value string, valid []string) *Error {
	return &Error{
		Kind:    ErrKindUnsupportedDialect,
		Message: fmt.Sprintf("unsupported dialect %q, must be one of: %s", value, strings.Join(valid, ", ")),
		Field:   "dbms",
		Value:   value,
	}
}

// MissingField reports a required key absent from an input mapping.
func MissingField(field string) *Error {
	return &Error{
		Kind:    ErrKindMissingField,
		Message: fmt.Sprintf("missing %q field in DB config", field),
		Field:   field,
	}
}

// TypeMismatch reports a present key whose value has the wrong type.
func TypeMismatch(field, want string, value any) *Error {
	return &Error{
		Kind:    ErrKindTypeMismatch,
		Message: fmt.Sprintf("%q field must be %s, got: %v (%T)", field, want, value, value),
		Field:   field,
		Value:   value,
	}
}

// FieldErrors is the result of a validation pass that found problems.
// It keeps every field error in the order they were detected.
type FieldErrors []*Error

func (fe FieldErrors) Error() string {
	switch len(fe) {
	case 0:
		return "no field errors"
	case 1:
		return fe[0].Error()
	}
	msgs := make([]string, len(fe))
	for i, e := range fe {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d field errors: %s", len(fe), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual errors to errors.Is / errors.As.
func (fe FieldErrors) Unwrap() []error {
	out := make([]error, len(fe))
	for i, e := range fe {
		out[i] = e
	}
	return out
}

// Fields returns the names of the offending fields.
func (fe FieldErrors) Fields() []string {
	names := make([]string, 0, len(fe))
	for _, e := range fe {
		names = append(names, e.Field)
	}
	return names
}

// --- Predicates ---

// IsUnsupportedDialect reports whether err names a dialect outside the supported set.
func IsUnsupportedDialect(err error) bool {
	return hasKind(err, ErrKindUnsupportedDialect)
}

// IsMissingField reports whether err contains a missing required field.
func IsMissingField(err error) bool {
	return hasKind(err, ErrKindMissingField)
}

// IsTypeMismatch reports whether err contains a field of the wrong type.
func IsTypeMismatch(err error) bool {
	return hasKind(err, ErrKindTypeMismatch)
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return hasKind(err, ErrKindInvalidInput)
}

// IsConnectionFailed reports whether err comes from opening a target.
func IsConnectionFailed(err error) bool {
	return hasKind(err, ErrKindConnectionFailed)
}

// IsNotFound reports whether err is a missing bucket or object.
func IsNotFound(err error) bool {
	return hasKind(err, ErrKindNotFound)
}

// IsPermissionDenied reports whether the file store refused the credentials.
func IsPermissionDenied(err error) bool {
	return hasKind(err, ErrKindPermissionDenied)
}

// FieldError returns the first error of the given kind found in err's tree,
// or nil. Useful to read Field / Value back from a FieldErrors list.
func FieldError(err error, kind ErrKind) *Error {
	var found *Error
	walk(err, func(e *Error) bool {
		if e.Kind == kind {
			found = e
			return true
		}
		return false
	})
	return found
}

func hasKind(err error, kind ErrKind) bool {
	return FieldError(err, kind) != nil
}

// walk visits every *Error in err's tree, depth first, until visit returns true.
func walk(err error, visit func(*Error) bool) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok && visit(e) {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if walk(inner, visit) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return walk(u.Unwrap(), visit)
	}
	return false
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
