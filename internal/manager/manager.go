// Package manager writes rows into a described schema. It owns one
// connection pool, opened from a database.Config's connection URI, and
// upserts rows table by table in partitions.
//
// Usage:
//
//	cfg := database.NewSQLite("data/app.db")
//	md := schema.NewMetadata(schema.NewTable("users",
//	    schema.Column{Name: "id", PrimaryKey: true},
//	    schema.Column{Name: "email"},
//	))
//
//	m, err := manager.New(ctx, cfg, md)
//	if err != nil { ... }
//	defer m.Close()
//
//	n, err := m.Upsert(ctx, "users", rows)
package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/koustreak/warehouser/internal/database"
	"github.com/koustreak/warehouser/internal/dialect"
	"github.com/koustreak/warehouser/internal/errs"
	"github.com/koustreak/warehouser/internal/logger"
	"github.com/koustreak/warehouser/internal/metrics"
	"github.com/koustreak/warehouser/internal/schema"

	// drivers for every supported dialect
	_ "github.com/koustreak/warehouser/internal/database/mysql"
	_ "github.com/koustreak/warehouser/internal/database/postgres"
	_ "github.com/koustreak/warehouser/internal/database/sqlite"
)

// DefaultPartitionSize is the number of rows written per transaction.
const DefaultPartitionSize = 5000

// Manager upserts rows into the tables of a Metadata.
// It is not safe for concurrent use of Use; Upsert may be called
// concurrently once no Use is in flight.
type Manager struct {
	cfg     *database.Config
	md      *schema.Metadata
	db      *database.DB
	sql     dialect.SQL
	log     *logger.Logger
	metrics *metrics.Metrics

	partitionSize int
	safe          bool
}

// Option customises New.
type Option func(*Manager)

// WithPartitionSize sets how many rows go into one transaction.
// Values below 1 keep DefaultPartitionSize.
func WithPartitionSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.partitionSize = n
		}
	}
}

// WithSafe controls unknown row keys. In safe mode (the default) a row
// key the table does not declare fails the upsert before any SQL runs;
// otherwise such keys are dropped.
func WithSafe(safe bool) Option {
	return func(m *Manager) {
		m.safe = safe
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithMetrics records upsert and connect metrics into mt.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// New opens cfg's connection URI and returns a Manager writing into md.
// A nil md starts empty; tables can be added later or read with Reflect.
func New(ctx context.Context, cfg *database.Config, md *schema.Metadata, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, errs.New(errs.ErrKindInvalidInput, "manager needs a database config")
	}
	if md == nil {
		md = schema.NewMetadata()
	}

	s, err := dialect.SQLFor(cfg.Dialect())
	if err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:           cfg,
		md:            md,
		sql:           s,
		log:           logger.Nop(),
		partitionSize: DefaultPartitionSize,
		safe:          true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With().
		Str("dialect", cfg.Dialect().String()).
		Str("host", cfg.Host()).
		Logger()

	db, err := m.connect(ctx, cfg.Database())
	if err != nil {
		return nil, err
	}
	m.db = db
	return m, nil
}

// NewFromMap validates an untyped settings mapping (see database.FromMap)
// and opens a Manager for it.
func NewFromMap(ctx context.Context, settings map[string]any, md *schema.Metadata, opts ...Option) (*Manager, error) {
	cfg, err := database.FromMap(settings)
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg, md, opts...)
}

func (m *Manager) connect(ctx context.Context, name string) (*database.DB, error) {
	db, err := database.Open(ctx, m.cfg.URIFor(name))
	if m.metrics != nil {
		m.metrics.RecordConnect(m.cfg.Dialect().String(), err)
	}
	if err != nil {
		m.log.ErrorWith("connect failed", err, map[string]any{"database": name})
		return nil, err
	}
	m.log.InfoWith("connected", map[string]any{"database": name})
	return db, nil
}

// Config returns the configuration the manager was opened with.
func (m *Manager) Config() *database.Config { return m.cfg }

// Metadata returns the schema the manager writes into.
func (m *Manager) Metadata() *schema.Metadata { return m.md }

// DB returns the open connection pool.
func (m *Manager) DB() *database.DB { return m.db }

// Use repoints the manager at another database on the same server (or
// another file for sqlite). The config is only updated once the new
// connection is up; on failure the manager keeps its current one.
func (m *Manager) Use(ctx context.Context, name string) error {
	if name == "" {
		return errs.New(errs.ErrKindInvalidInput, "database name is required")
	}
	if name == m.cfg.Database() {
		return nil
	}

	db, err := m.connect(ctx, name)
	if err != nil {
		return err
	}

	old := m.db
	m.db = db
	m.cfg.SetDatabase(name)
	if old != nil {
		if err := old.Close(); err != nil {
			m.log.ErrorWith("closing previous connection", err, nil)
		}
	}
	return nil
}

// Reflect reads table descriptions from the connected database into the
// manager's metadata, replacing tables with the same name.
func (m *Manager) Reflect(ctx context.Context, tables ...string) error {
	md, err := schema.Reflect(ctx, m.db, m.cfg.Dialect(), tables...)
	if err != nil {
		return err
	}
	for _, t := range md.Tables() {
		m.md.Add(t)
	}
	m.log.DebugWith("reflected tables", map[string]any{"tables": md.Len()})
	return nil
}

// Close releases the connection pool.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

func (m *Manager) String() string {
	return fmt.Sprintf(`Manager[%s:"%s"]`, m.cfg.Dialect(), database.Redact(m.cfg.URI()))
}

// Upsert inserts rows into table, updating rows whose primary key already
// exists. Every row must carry the same keys, including the whole primary
// key. Rows are written in partitions, one transaction each; when a
// partition fails it is rolled back and the rows of earlier partitions stay
// written. The returned count is the number of rows committed.
func (m *Manager) Upsert(ctx context.Context, table string, rows []map[string]any) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	t, ok := m.md.Table(table)
	if !ok {
		return 0, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown table %q", table))
	}

	p, err := m.prepare(t, rows)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	written := 0
	for lo := 0; lo < len(p.args); lo += m.partitionSize {
		hi := min(lo+m.partitionSize, len(p.args))
		if err := m.writePartition(ctx, p.statement, p.args[lo:hi]); err != nil {
			m.recordFailure(table, start)
			m.log.ErrorWith("upsert failed", err, map[string]any{
				"table":   table,
				"written": written,
				"rows":    len(rows),
			})
			return written, err
		}
		written = hi
		m.log.DebugWith("partition written", map[string]any{"table": table, "rows": hi - lo})
	}

	if m.metrics != nil {
		m.metrics.RecordUpsertSuccess(m.cfg.Dialect().String(), table, written, time.Since(start))
	}
	m.log.InfoWith("upsert done", map[string]any{
		"table":    table,
		"rows":     written,
		"database": m.cfg.Database(),
	})
	return written, nil
}

func (m *Manager) recordFailure(table string, start time.Time) {
	if m.metrics != nil {
		m.metrics.RecordUpsertFailure(m.cfg.Dialect().String(), table, time.Since(start))
	}
}

func (m *Manager) writePartition(ctx context.Context, statement string, args [][]any) (err error) {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, a := range args {
		if _, err = tx.Exec(ctx, statement, a...); err != nil {
			return err
		}
	}
	return tx.Commit()
}
