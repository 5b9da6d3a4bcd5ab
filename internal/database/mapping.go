package database

import (
	"github.com/koustreak/warehouser/internal/dialect"
	"github.com/koustreak/warehouser/internal/errs"
)

// Mapping keys understood by Validate.
const (
	KeyDBMS     = "dbms"
	KeyHost     = "host"
	KeyPort     = "port"
	KeyUser     = "user"
	KeyPassword = "password"
	KeyDatabase = "database"
)

var requiredKeys = []string{KeyDBMS, KeyHost, KeyUser, KeyPassword}

// Fields is the typed result of a successful Validate.
type Fields struct {
	Dialect  dialect.Dialect
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// Validate checks an untyped settings mapping in a single pass.
// It returns either the typed Fields or an errs.FieldErrors listing every
// problem found, never both.
func Validate(m map[string]any) (Fields, error) {
	var (
		f    Fields
		bad  errs.FieldErrors
		seen = make(map[string]bool, len(requiredKeys))
	)

	for _, key := range requiredKeys {
		if _, ok := m[key]; !ok {
			bad = append(bad, errs.MissingField(key))
			continue
		}
		seen[key] = true
	}

	if seen[KeyDBMS] {
		switch v := m[KeyDBMS].(type) {
		case string:
			d, err := dialect.Parse(v)
			if err != nil {
				bad = append(bad, errs.UnsupportedDialect(v, dialect.Names()))
			}
			f.Dialect = d
		default:
			bad = append(bad, errs.TypeMismatch(KeyDBMS, "a string", v))
		}
	}

	stringField := func(key string, dst *string) {
		if _, ok := m[key]; !ok {
			return
		}
		s, ok := m[key].(string)
		if !ok {
			bad = append(bad, errs.TypeMismatch(key, "a string", m[key]))
			return
		}
		*dst = s
	}
	stringField(KeyUser, &f.User)
	stringField(KeyPassword, &f.Password)
	stringField(KeyHost, &f.Host)
	stringField(KeyDatabase, &f.Database)

	// port may also be explicitly null
	if v, ok := m[KeyPort]; ok && v != nil {
		s, isStr := v.(string)
		if !isStr {
			bad = append(bad, errs.TypeMismatch(KeyPort, "a string or null", v))
		}
		f.Port = s
	}

	if len(bad) > 0 {
		return Fields{}, bad
	}
	return f, nil
}

// FromMap validates m and builds a Config from it.
func FromMap(m map[string]any) (*Config, error) {
	f, err := Validate(m)
	if err != nil {
		return nil, err
	}
	return f.Config()
}

// Config builds a Config from validated fields.
func (f Fields) Config() (*Config, error) {
	return New(f.Dialect, f.Database, f.User, f.Password,
		WithHost(f.Host),
		WithPort(f.Port),
	)
}
