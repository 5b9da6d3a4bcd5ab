// Package mysql opens MySQL and Doris targets through go-sql-driver/mysql.
// Import it for its side effect of registering both dialects with the
// database package.
package mysql

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"
	"github.com/koustreak/warehouser/internal/database"
	"github.com/koustreak/warehouser/internal/dialect"
)

func init() {
	database.Register(dialect.MySQL, open)
	database.Register(dialect.Doris, open)
}

// Config converts a Target into a driver config.
// Doris FE nodes do not support server-side prepared statements, so
// arguments are interpolated client side for that dialect.
func Config(t *database.Target) *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = t.User
	cfg.Passwd = t.Password
	cfg.Net = "tcp"
	cfg.Addr = t.Address()
	cfg.DBName = t.Database
	cfg.ParseTime = true
	cfg.InterpolateParams = t.Dialect == dialect.Doris
	return cfg
}

// DSN returns the native data source name for t.
// format: user:pass@tcp(host:port)/dbname?parseTime=true
func DSN(t *database.Target) string {
	return Config(t).FormatDSN()
}

func open(_ context.Context, t *database.Target) (*sql.DB, error) {
	connector, err := mysql.NewConnector(Config(t))
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}
