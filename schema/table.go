package schema

import (
	"reflect"
	"strings"
)

// Table describes how a struct type maps to a table. A Table is built once
// by a Registry and never modified afterwards; slice accessors return copies.
type Table struct {
	name    string
	schema  string
	typ     reflect.Type
	mapped  bool
	columns []*Column
	keys    []*Column
	newFn   func() any
	byName  map[string]*Column
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Schema returns the optional schema (namespace) of the table.
func (t *Table) Schema() string { return t.schema }

// QualifiedName returns "schema.name", or the name alone when no schema is set.
func (t *Table) QualifiedName() string {
	if t.schema == "" {
		return t.name
	}
	return t.schema + "." + t.name
}

// Type returns the struct type of the entity.
func (t *Table) Type() reflect.Type { return t.typ }

// Mapped reports whether the table was built from an explicit declaration
// rather than synthesized defaults.
func (t *Table) Mapped() bool { return t.mapped }

// Columns returns the columns in declaration order.
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.columns...)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// ColumnAt returns the i-th column in declaration order.
func (t *Table) ColumnAt(i int) *Column { return t.columns[i] }

// PrimaryKeys returns the primary-key columns in declaration order.
func (t *Table) PrimaryKeys() []*Column {
	return append([]*Column(nil), t.keys...)
}

// HasKeys reports whether the table declares a primary key.
func (t *Table) HasKeys() bool { return len(t.keys) > 0 }

// Column looks a column up by Go field name or storage name. Exact matches
// win over case-insensitive ones, and field names win over storage names.
func (t *Table) Column(name string) (*Column, bool) {
	if c, ok := t.byName[name]; ok {
		return c, true
	}
	c, ok := t.byName[strings.ToLower(name)]
	return c, ok
}

// New returns a new default instance of the entity, as a pointer.
func (t *Table) New() any { return t.newFn() }

func (t *Table) index() {
	t.byName = make(map[string]*Column, len(t.columns)*3)
	// Later passes win: lower-cased aliases, then storage names, then Go
	// field names.
	for _, c := range t.columns {
		t.byName[strings.ToLower(c.name)] = c
	}
	for _, c := range t.columns {
		t.byName[strings.ToLower(c.field)] = c
	}
	for _, c := range t.columns {
		t.byName[c.name] = c
	}
	for _, c := range t.columns {
		t.byName[c.field] = c
	}
}
