// Package sqlite opens embedded database files through modernc.org/sqlite.
// Import it for its side effect of registering the dialect.
package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/koustreak/warehouser/internal/database"
	"github.com/koustreak/warehouser/internal/dialect"
	"github.com/koustreak/warehouser/internal/errs"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

const pragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

func init() {
	database.Register(dialect.SQLite, open)
}

// DSN returns the file path of t with the connection pragmas appended to
// any query the path already carries.
func DSN(t *database.Target) string {
	if strings.Contains(t.Database, "?") {
		return t.Database + "&" + pragmas
	}
	return t.Database + "?" + pragmas
}

func open(_ context.Context, t *database.Target) (*sql.DB, error) {
	if t.Database == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "sqlite database path is required")
	}
	name, err := dialect.DriverName(dialect.SQLite)
	if err != nil {
		return nil, err
	}
	return sql.Open(name, DSN(t))
}
