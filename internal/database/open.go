package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/koustreak/warehouser/internal/dialect"
	"github.com/koustreak/warehouser/internal/errs"
)

// Opener turns a parsed Target into an open *sql.DB. Driver packages
// register one per dialect they serve.
type Opener func(ctx context.Context, t *Target) (*sql.DB, error)

var (
	openersMu sync.RWMutex
	openers   = make(map[dialect.Dialect]Opener)
)

// Register makes an Opener available for d. It is called from the init
// functions of the driver packages.
func Register(d dialect.Dialect, o Opener) {
	openersMu.Lock()
	defer openersMu.Unlock()
	openers[d] = o
}

func opener(d dialect.Dialect) (Opener, bool) {
	openersMu.RLock()
	defer openersMu.RUnlock()
	o, ok := openers[d]
	return o, ok
}

const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 10 * time.Minute
	defaultConnectTimeout  = 10 * time.Second
)

// Open parses uri, opens it with the registered driver and pings it.
// Errors from the driver are returned wrapped with %w only.
func Open(ctx context.Context, uri string) (*DB, error) {
	t, err := ParseTarget(uri)
	if err != nil {
		return nil, err
	}

	o, ok := opener(t.Dialect)
	if !ok {
		return nil, errs.New(errs.ErrKindConnectionFailed,
			fmt.Sprintf("no driver registered for %s (missing import of its driver package?)", t.Dialect))
	}

	sqlDB, err := o(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", Redact(uri), err)
	}

	sqlDB.SetMaxOpenConns(defaultMaxOpenConns)
	sqlDB.SetMaxIdleConns(defaultMaxIdleConns)
	sqlDB.SetConnMaxLifetime(defaultConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	if t.InMemory() {
		// a second connection would see a different, empty database
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", Redact(uri), err)
	}

	return &DB{sqlDB: sqlDB, target: t}, nil
}
