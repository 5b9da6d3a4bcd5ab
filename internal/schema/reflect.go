package schema

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/koustreak/warehouser/internal/dialect"
)

// Querier is the read surface Reflect needs from a connection.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// introspection holds the catalog queries of one dialect.
// Both queries take the table name as their only argument (columns) or
// none (tables) and read from the currently selected database.
type introspection struct {
	listTables string
	columns    string
}

const mysqlListTables = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`

func introspectionFor(d dialect.Dialect) (introspection, error) {
	switch d {
	case dialect.MySQL:
		return introspection{
			listTables: mysqlListTables,
			columns: `
		SELECT column_name,
		       data_type,
		       is_nullable = 'YES',
		       column_key  = 'PRI'
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name   = ?
		ORDER BY ordinal_position`,
		}, nil
	case dialect.Doris:
		// Doris reports the key columns of UNIQUE KEY tables as UNI.
		return introspection{
			listTables: mysqlListTables,
			columns: `
		SELECT column_name,
		       data_type,
		       is_nullable = 'YES',
		       column_key IN ('PRI', 'UNI')
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name   = ?
		ORDER BY ordinal_position`,
		}, nil
	case dialect.PostgreSQL:
		return introspection{
			listTables: `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_type   = 'BASE TABLE'
		ORDER BY table_name`,
			columns: `
		SELECT c.column_name,
		       c.data_type,
		       c.is_nullable = 'YES',
		       COALESCE(pk.is_pk, false)
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT kcu.column_name, true AS is_pk
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name
			 AND tc.table_schema    = kcu.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
			  AND tc.table_schema    = current_schema()
			  AND tc.table_name      = $1
		) pk ON pk.column_name = c.column_name
		WHERE c.table_schema = current_schema()
		  AND c.table_name   = $1
		ORDER BY c.ordinal_position`,
		}, nil
	case dialect.SQLite:
		return introspection{
			listTables: `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name`,
			columns: `
		SELECT name,
		       type,
		       "notnull" = 0,
		       pk > 0
		FROM pragma_table_info(?)
		ORDER BY cid`,
		}, nil
	}
	_, err := dialect.Parse(string(d))
	return introspection{}, err
}

// Reflect reads the named tables (all base tables when none are given)
// from the database q is connected to.
func Reflect(ctx context.Context, q Querier, d dialect.Dialect, tables ...string) (*Metadata, error) {
	in, err := introspectionFor(d)
	if err != nil {
		return nil, err
	}

	if len(tables) == 0 {
		tables, err = listTables(ctx, q, in.listTables)
		if err != nil {
			return nil, err
		}
	}

	md := NewMetadata()
	for _, name := range tables {
		t, err := inspectTable(ctx, q, in.columns, name)
		if err != nil {
			return nil, fmt.Errorf("inspecting table %q: %w", name, err)
		}
		md.Add(t)
	}
	return md, nil
}

func listTables(ctx context.Context, q Querier, query string) ([]string, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func inspectTable(ctx context.Context, q Querier, query, table string) (*Table, error) {
	rows, err := q.Query(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := &Table{Name: table}
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable, &c.PrimaryKey); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		t.Columns = append(t.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", table)
	}
	return t, nil
}
