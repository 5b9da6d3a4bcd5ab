// Package postgres opens PostgreSQL targets through pgx's database/sql
// adapter. Import it for its side effect of registering the dialect.
package postgres

import (
	"context"
	"database/sql"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/koustreak/warehouser/internal/database"
	"github.com/koustreak/warehouser/internal/dialect"
)

func init() {
	database.Register(dialect.PostgreSQL, open)
}

// DSN returns a postgres:// URL for t with the credentials escaped.
// An empty database connects to the user's default database.
func DSN(t *database.Target) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(t.User, t.Password),
		Host:   t.Address(),
	}
	if t.Database != "" {
		u.Path = "/" + t.Database
	}
	return u.String()
}

func open(_ context.Context, t *database.Target) (*sql.DB, error) {
	connCfg, err := pgx.ParseConfig(DSN(t))
	if err != nil {
		return nil, err
	}
	return stdlib.OpenDB(*connCfg), nil
}
