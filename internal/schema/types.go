// Package schema describes the tables a manager writes to.
//
// A Metadata is either declared in code:
//
//	md := schema.NewMetadata(
//	    schema.NewTable("users",
//	        schema.Column{Name: "id", PrimaryKey: true},
//	        schema.Column{Name: "email"},
//	    ),
//	)
//
// or read from a live database with Reflect.
package schema

import (
	"fmt"
	"sort"
)

// Column describes a single column in a table
type Column struct {
	Name       string
	DataType   string // as reported by the database; empty when declared in code
	Nullable   bool
	PrimaryKey bool
}

// Table describes a table and its columns, in declaration order.
type Table struct {
	Name    string
	Columns []Column
}

// NewTable builds a Table from its columns.
func NewTable(name string, cols ...Column) *Table {
	return &Table{Name: name, Columns: cols}
}

// PrimaryKey returns the names of the key columns in declaration order.
func (t *Table) PrimaryKey() []string {
	var pk []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

// ColumnNames returns every column name in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the table declares a column called name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// UnknownColumns returns the keys of row that the table does not declare, sorted.
func (t *Table) UnknownColumns(row map[string]any) []string {
	var unknown []string
	for k := range row {
		if !t.HasColumn(k) {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Metadata is a set of tables keyed by name.
// It is not safe for concurrent modification.
type Metadata struct {
	order  []string
	tables map[string]*Table
}

// NewMetadata builds a Metadata holding tables.
func NewMetadata(tables ...*Table) *Metadata {
	md := &Metadata{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		md.Add(t)
	}
	return md
}

// Add inserts t, replacing any table with the same name.
func (md *Metadata) Add(t *Table) {
	if md.tables == nil {
		md.tables = make(map[string]*Table)
	}
	if _, ok := md.tables[t.Name]; !ok {
		md.order = append(md.order, t.Name)
	}
	md.tables[t.Name] = t
}

// Table returns the table called name.
func (md *Metadata) Table(name string) (*Table, bool) {
	t, ok := md.tables[name]
	return t, ok
}

// Tables returns every table in insertion order.
func (md *Metadata) Tables() []*Table {
	out := make([]*Table, 0, len(md.order))
	for _, name := range md.order {
		out = append(out, md.tables[name])
	}
	return out
}

// Len returns the number of tables.
func (md *Metadata) Len() int { return len(md.order) }

func (md *Metadata) String() string {
	return fmt.Sprintf("Metadata%v", md.order)
}
