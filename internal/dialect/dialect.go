// Package dialect holds the per-dialect policy of warehouser: default host,
// default port, connection URI scheme and the SQL flavour used for upserts.
package dialect

import (
	"github.com/koustreak/warehouser/internal/errs"
)

// Dialect identifies a relational database family.
//
// The set is closed. Adding a dialect means adding a case to DefaultHost,
// DefaultPort and URIScheme together, plus SQLFor and DriverName in sql.go.
type Dialect string

const (
	MySQL      Dialect = "mysql"
	PostgreSQL Dialect = "postgresql"
	Doris      Dialect = "doris" // MySQL-compatible OLAP engine
	SQLite     Dialect = "sqlite"
)

// Driver tokens used inside URI schemes.
const (
	MySQLDriver    = "gomysql"
	PostgresDriver = "pgx"
)

const (
	MySQLDefaultPort = "3306"
	PGDefaultPort    = "5432"
	DorisDefaultPort = "9030"

	DefaultHostname = "localhost"
)

var all = []Dialect{MySQL, PostgreSQL, Doris, SQLite}

// All returns the supported dialects in a stable order.
func All() []Dialect {
	out := make([]Dialect, len(all))
	copy(out, all)
	return out
}

// Names returns All as plain strings, for error messages and flag help.
func Names() []string {
	out := make([]string, len(all))
	for i, d := range all {
		out[i] = string(d)
	}
	return out
}

// Parse validates s and returns it as a Dialect.
func Parse(s string) (Dialect, error) {
	d := Dialect(s)
	if !d.Valid() {
		return "", unsupported(d)
	}
	return d, nil
}

// Valid reports whether d is one of the supported dialects.
func (d Dialect) Valid() bool {
	switch d {
	case MySQL, PostgreSQL, Doris, SQLite:
		return true
	}
	return false
}

func (d Dialect) String() string { return string(d) }

// DefaultHost returns the host used when none is configured.
func DefaultHost(d Dialect) (string, error) {
	switch d {
	case SQLite:
		return "", nil
	case MySQL, PostgreSQL, Doris:
		return DefaultHostname, nil
	}
	return "", unsupported(d)
}

// DefaultPort returns the port used when none is configured.
func DefaultPort(d Dialect) (string, error) {
	switch d {
	case MySQL:
		return MySQLDefaultPort, nil
	case PostgreSQL:
		return PGDefaultPort, nil
	case Doris:
		return DorisDefaultPort, nil
	case SQLite:
		return "", nil
	}
	return "", unsupported(d)
}

// URIScheme returns the driver-qualified scheme of connection URIs for d.
func URIScheme(d Dialect) (string, error) {
	switch d {
	case MySQL:
		return "mysql+" + MySQLDriver, nil
	case PostgreSQL:
		return "postgresql+" + PostgresDriver, nil
	case Doris:
		return "doris+" + MySQLDriver, nil
	case SQLite:
		return "sqlite", nil
	}
	return "", unsupported(d)
}

// FromScheme is the inverse of URIScheme.
func FromScheme(scheme string) (Dialect, error) {
	for _, d := range all {
		if s, _ := URIScheme(d); s == scheme {
			return d, nil
		}
	}
	return "", errs.UnsupportedDialect(scheme, schemes())
}

func schemes() []string {
	out := make([]string, 0, len(all))
	for _, d := range all {
		s, _ := URIScheme(d)
		out = append(out, s)
	}
	return out
}

func unsupported(d Dialect) error {
	return errs.UnsupportedDialect(string(d), Names())
}
