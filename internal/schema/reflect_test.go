package schema

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/koustreak/warehouser/internal/database"
	"github.com/koustreak/warehouser/internal/dialect"
	"github.com/koustreak/warehouser/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/koustreak/warehouser/internal/database/sqlite"
)

func openSQLite(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.NewSQLite(filepath.Join(t.TempDir(), "reflect.db")).URI())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE users (id INTEGER NOT NULL, tenant TEXT NOT NULL, email TEXT, PRIMARY KEY (id, tenant))`,
		`CREATE TABLE events (seq INTEGER PRIMARY KEY, payload TEXT)`,
	} {
		_, err := db.Exec(ctx, stmt)
		require.NoError(t, err)
	}
	return db
}

func TestReflect_SQLiteAllTables(t *testing.T) {
	db := openSQLite(t)

	md, err := Reflect(context.Background(), db, dialect.SQLite)
	require.NoError(t, err)

	require.Equal(t, 2, md.Len())
	assert.Equal(t, "events", md.Tables()[0].Name)

	users, ok := md.Table("users")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "tenant", "email"}, users.ColumnNames())
	assert.Equal(t, []string{"id", "tenant"}, users.PrimaryKey())
	assert.False(t, users.Columns[0].Nullable)
	assert.True(t, users.Columns[2].Nullable)
	assert.Equal(t, "INTEGER", users.Columns[0].DataType)
}

func TestReflect_SQLiteNamedTable(t *testing.T) {
	db := openSQLite(t)

	md, err := Reflect(context.Background(), db, dialect.SQLite, "events")
	require.NoError(t, err)

	require.Equal(t, 1, md.Len())
	events, _ := md.Table("events")
	assert.Equal(t, []string{"seq"}, events.PrimaryKey())
}

func TestReflect_MissingTable(t *testing.T) {
	db := openSQLite(t)

	_, err := Reflect(context.Background(), db, dialect.SQLite, "nope")
	assert.ErrorContains(t, err, "nope")
}

func TestReflect_UnsupportedDialect(t *testing.T) {
	_, err := Reflect(context.Background(), nil, dialect.Dialect("oracle"))
	assert.True(t, errs.IsUnsupportedDialect(err))
}

func TestIntrospectionFor_EveryDialect(t *testing.T) {
	for _, d := range dialect.All() {
		in, err := introspectionFor(d)
		require.NoError(t, err, d)
		assert.NotEmpty(t, in.listTables)
		assert.NotEmpty(t, in.columns)
	}
}
