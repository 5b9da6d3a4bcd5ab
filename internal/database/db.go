package database

import (
	"context"
	"database/sql"

	"github.com/koustreak/warehouser/internal/dialect"
)

// DB is an open connection pool for one Target.
// It is safe for concurrent use by multiple goroutines.
type DB struct {
	sqlDB  *sql.DB
	target *Target
}

// Dialect returns the dialect the pool was opened for.
func (db *DB) Dialect() dialect.Dialect { return db.target.Dialect }

// Target returns the parsed URI the pool was opened from.
func (db *DB) Target() Target { return *db.target }

// Ping verifies the connection is alive
func (db *DB) Ping(ctx context.Context) error {
	return db.sqlDB.PingContext(ctx)
}

// Close shuts down the connection pool
func (db *DB) Close() error {
	return db.sqlDB.Close()
}

// Exec executes a statement returning rows affected
func (db *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return rowsAffected(db.sqlDB.ExecContext(ctx, query, args...))
}

// Query executes a query returning multiple rows
func (db *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.sqlDB.QueryContext(ctx, query, args...)
}

// Begin starts a transaction
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	tx, err := db.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// SqlDB returns the underlying *sql.DB (for advanced use)
func (db *DB) SqlDB() *sql.DB {
	return db.sqlDB
}

// Tx wraps *sql.Tx.
type Tx struct{ tx *sql.Tx }

func (t *Tx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return rowsAffected(t.tx.ExecContext(ctx, query, args...))
}

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }

func rowsAffected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
