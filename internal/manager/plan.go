package manager

import (
	"fmt"
	"slices"
	"strings"

	"github.com/koustreak/warehouser/internal/dialect"
	"github.com/koustreak/warehouser/internal/errs"
	"github.com/koustreak/warehouser/internal/schema"
)

// plan is a validated upsert: one statement and the argument list of
// every row, in column order.
type plan struct {
	statement string
	args      [][]any
}

// prepare checks rows against t and builds the statement. Columns follow the
// table's declaration order, restricted to the keys of the first row.
func (m *Manager) prepare(t *schema.Table, rows []map[string]any) (*plan, error) {
	pk := t.PrimaryKey()
	if len(pk) == 0 {
		return nil, errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("table %q has no primary key to upsert on", t.Name))
	}

	var columns []string
	for _, c := range t.ColumnNames() {
		if _, ok := rows[0][c]; ok {
			columns = append(columns, c)
		}
	}

	for _, k := range pk {
		if !slices.Contains(columns, k) {
			return nil, errs.New(errs.ErrKindInvalidInput,
				fmt.Sprintf("rows for %q lack primary key column %q", t.Name, k))
		}
	}

	args := make([][]any, len(rows))
	for i, row := range rows {
		if unknown := t.UnknownColumns(row); len(unknown) > 0 && m.safe {
			return nil, errs.New(errs.ErrKindInvalidInput,
				fmt.Sprintf("row %d has columns not in table %q: %s", i, t.Name, strings.Join(unknown, ", ")))
		}

		known := len(row) - len(t.UnknownColumns(row))
		if known != len(columns) {
			return nil, mismatch(t.Name, i)
		}

		a := make([]any, len(columns))
		for j, c := range columns {
			v, ok := row[c]
			if !ok {
				return nil, mismatch(t.Name, i)
			}
			a[j] = v
		}
		args[i] = a
	}

	return &plan{
		statement: dialect.UpsertStatement(m.sql, t.Name, columns, pk, nil, false),
		args:      args,
	}, nil
}

func mismatch(table string, row int) error {
	return errs.New(errs.ErrKindInvalidInput,
		fmt.Sprintf("row %d of %q does not have the same columns as row 0", row, table))
}
