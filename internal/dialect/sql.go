package dialect

import (
	"fmt"
	"strings"
)

// SQL defines the statement-level behaviour that differs between dialects.
type SQL interface {
	QuoteIdentifier(string) string
	Placeholder(int) string
	// InsertPrefix returns the INSERT verb; ignore asks for a variant that
	// skips conflicting rows when the dialect has one.
	InsertPrefix(ignore bool) string
	// UpsertSQL returns the conflict clause appended after VALUES (...).
	// A nil updateCols means "do nothing on conflict".
	UpsertSQL(conflictCols, updateCols []string) string
}

// SQLFor returns the SQL flavour of d.
func SQLFor(d Dialect) (SQL, error) {
	switch d {
	case MySQL:
		return mysqlSQL{}, nil
	case Doris:
		return dorisSQL{}, nil
	case PostgreSQL:
		return postgresSQL{}, nil
	case SQLite:
		return sqliteSQL{}, nil
	}
	return nil, unsupported(d)
}

// DriverName returns the database/sql driver registered for d.
func DriverName(d Dialect) (string, error) {
	switch d {
	case MySQL, Doris:
		return "mysql", nil
	case PostgreSQL:
		return "pgx", nil
	case SQLite:
		return "sqlite", nil
	}
	return "", unsupported(d)
}

// UpsertStatement builds a single-row upsert for table.
// When updateCols is empty every non-conflict column is updated; pass
// doNothing to keep existing rows untouched instead.
func UpsertStatement(s SQL, table string, columns, conflictCols, updateCols []string, doNothing bool) string {
	if !doNothing && len(updateCols) == 0 {
		updateCols = filterKeys(columns, conflictCols)
		// every column is part of the key: nothing to update
		doNothing = len(updateCols) == 0
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = s.QuoteIdentifier(c)
		placeholders[i] = s.Placeholder(i + 1)
	}

	var sb strings.Builder
	sb.WriteString(s.InsertPrefix(doNothing))
	sb.WriteString(" ")
	sb.WriteString(s.QuoteIdentifier(table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(quoted, ", "))
	sb.WriteString(") VALUES (")
	sb.WriteString(strings.Join(placeholders, ", "))
	sb.WriteString(")")

	if doNothing {
		sb.WriteString(s.UpsertSQL(quoteAll(s, conflictCols), nil))
		return sb.String()
	}
	sb.WriteString(s.UpsertSQL(quoteAll(s, conflictCols), quoteAll(s, updateCols)))
	return sb.String()
}

// --- MySQL ---

type mysqlSQL struct{}

func (mysqlSQL) QuoteIdentifier(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func (mysqlSQL) Placeholder(_ int) string { return "?" }

func (mysqlSQL) InsertPrefix(ignore bool) string {
	if ignore {
		return "INSERT IGNORE INTO"
	}
	return "INSERT INTO"
}

// UpsertSQL uses ON DUPLICATE KEY UPDATE. MySQL resolves the conflict from
// the table's own PRIMARY/UNIQUE keys, so conflictCols is not rendered.
func (mysqlSQL) UpsertSQL(_, updateCols []string) string {
	if updateCols == nil {
		// INSERT IGNORE already covers it
		return ""
	}
	updates := make([]string, len(updateCols))
	for i, col := range updateCols {
		updates[i] = fmt.Sprintf("%s = VALUES(%s)", col, col)
	}
	return " ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")
}

// --- Doris ---

// dorisSQL speaks the MySQL protocol. Unique-key tables in Doris replace
// rows on insert, so no conflict clause exists.
type dorisSQL struct{ mysqlSQL }

func (dorisSQL) InsertPrefix(_ bool) string { return "INSERT INTO" }

func (dorisSQL) UpsertSQL(_, _ []string) string { return "" }

// --- PostgreSQL ---

type postgresSQL struct{}

func (postgresSQL) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (postgresSQL) Placeholder(index int) string { return fmt.Sprintf("$%d", index) }

func (postgresSQL) InsertPrefix(_ bool) string { return "INSERT INTO" }

func (postgresSQL) UpsertSQL(conflictCols, updateCols []string) string {
	return onConflict(conflictCols, updateCols, "EXCLUDED")
}

// --- SQLite ---

type sqliteSQL struct{}

func (sqliteSQL) QuoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (sqliteSQL) Placeholder(_ int) string { return "?" }

func (sqliteSQL) InsertPrefix(_ bool) string { return "INSERT INTO" }

func (sqliteSQL) UpsertSQL(conflictCols, updateCols []string) string {
	return onConflict(conflictCols, updateCols, "excluded")
}

// onConflict renders the ON CONFLICT clause shared by PostgreSQL and SQLite.
func onConflict(conflictCols, updateCols []string, excluded string) string {
	if updateCols == nil {
		if len(conflictCols) > 0 {
			return fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(conflictCols, ", "))
		}
		return " ON CONFLICT DO NOTHING"
	}

	parts := make([]string, len(updateCols))
	for i, col := range updateCols {
		parts[i] = fmt.Sprintf("%s = %s.%s", col, excluded, col)
	}
	return fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(conflictCols, ", "),
		strings.Join(parts, ", "),
	)
}

func quoteAll(s SQL, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = s.QuoteIdentifier(c)
	}
	return out
}

// filterKeys returns keys that are not in the exclude list.
func filterKeys(keys, exclude []string) []string {
	excludeMap := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		excludeMap[e] = true
	}

	filtered := make([]string, 0, len(keys))
	for _, k := range keys {
		if !excludeMap[k] {
			filtered = append(filtered, k)
		}
	}
	return filtered
}
