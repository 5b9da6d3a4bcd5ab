package database

import (
	"strings"

	"github.com/koustreak/warehouser/internal/dialect"
	"github.com/koustreak/warehouser/internal/errs"
)

// Target is a connection URI split back into its parts. Drivers build
// their native DSN from it.
type Target struct {
	Dialect  dialect.Dialect
	User     string
	Password string
	Host     string
	Port     string
	Database string // schema name, or file path for sqlite
}

// ParseTarget parses a URI produced by Config.URI.
//
//	uri   := scheme "://" login? ("/" database)?
//	login := user ":" password "@" host ":" port
//
// The password is not escaped in the URI. The login ends at the last "@"
// followed by "host:port" with a numeric port and then "/" or the end of
// the URI, so passwords and database names may both contain "@". A
// database name that itself holds "@host:port" cannot be told apart.
func ParseTarget(uri string) (*Target, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return nil, errs.New(errs.ErrKindInvalidInput, "connection URI has no scheme: "+Redact(uri))
	}

	d, err := dialect.FromScheme(scheme)
	if err != nil {
		return nil, err
	}

	t := &Target{Dialect: d}

	if d == dialect.SQLite {
		// "sqlite://" + "/" + path
		t.Database = strings.TrimPrefix(rest, "/")
		return t, nil
	}

	if !strings.Contains(rest, "@") {
		return nil, errs.New(errs.ErrKindInvalidInput, "connection URI has no login: "+Redact(uri))
	}
	at := loginEnd(rest)
	if at < 0 {
		return nil, errs.New(errs.ErrKindInvalidInput, "connection URI has no port: "+Redact(uri))
	}
	userinfo, address := rest[:at], rest[at+1:]

	t.User, t.Password, _ = strings.Cut(userinfo, ":")

	hostport, database, _ := strings.Cut(address, "/")
	colon := strings.LastIndex(hostport, ":")
	t.Host, t.Port = hostport[:colon], hostport[colon+1:]
	t.Database = database

	return t, nil
}

// URI renders t back into the connection URI form.
func (t *Target) URI() string {
	login := ""
	if t.Dialect != dialect.SQLite {
		login = t.User + ":" + t.Password + "@" + t.Host + ":" + t.Port
	}
	return makeURI(t.Dialect, login, t.Database)
}

// InMemory reports whether t names a sqlite in-memory database, which
// lives only as long as the one connection holding it.
func (t *Target) InMemory() bool {
	if t.Dialect != dialect.SQLite {
		return false
	}
	path, query, _ := strings.Cut(t.Database, "?")
	return path == ":memory:" || path == "file::memory:" || strings.Contains(query, "mode=memory")
}

// Address returns "host:port".
func (t *Target) Address() string {
	return t.Host + ":" + t.Port
}

// Redact returns uri with its password masked, for error messages and logs.
func Redact(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	at := loginEnd(rest)
	if at < 0 {
		at = strings.LastIndex(rest, "@")
	}
	if at < 0 {
		return uri
	}
	user, _, hasPwd := strings.Cut(rest[:at], ":")
	if !hasPwd {
		return uri
	}
	return scheme + "://" + user + ":***@" + rest[at+1:]
}

// loginEnd returns the index of the "@" closing the login in rest, or -1.
func loginEnd(rest string) int {
	for end := len(rest); end > 0; {
		at := strings.LastIndex(rest[:end], "@")
		if at < 0 {
			return -1
		}
		hostport, _, _ := strings.Cut(rest[at+1:], "/")
		if colon := strings.LastIndex(hostport, ":"); colon > 0 && isPort(hostport[colon+1:]) {
			return at
		}
		end = at
	}
	return -1
}

func isPort(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
