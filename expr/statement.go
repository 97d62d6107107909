package expr

import (
	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect"
	"github.com/syssam/rowmap/dialect/sql"
	"github.com/syssam/rowmap/schema"
)

// CompileSelect compiles a SELECT of every column of t, filtered by p when
// p is not nil.
func CompileSelect(t *schema.Table, p Predicate, d dialect.Provider) (sql.Statement, error) {
	b := newBuilder(t, d)
	b.WriteString("SELECT ")
	for i := 0; i < t.NumColumns(); i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(t.ColumnAt(i).Name())
	}
	b.WriteString(" FROM ")
	b.Ident(t.QualifiedName())
	if p != nil {
		b.WriteString(" WHERE ")
		if err := b.predicate(p, true); err != nil {
			return sql.Statement{}, err
		}
	}
	return b.statement(), nil
}

// CompileInsert compiles an INSERT of the writable columns of entity, a
// pointer to the table's struct type. Read-only columns are left to the
// database.
func CompileInsert(t *schema.Table, entity any, d dialect.Provider) (sql.Statement, error) {
	if err := checkEntity(t, entity); err != nil {
		return sql.Statement{}, err
	}
	b := newBuilder(t, d)
	b.WriteString("INSERT INTO ")
	b.Ident(t.QualifiedName())
	b.WriteString(" (")
	var cols []*schema.Column
	for i := 0; i < t.NumColumns(); i++ {
		c := t.ColumnAt(i)
		if !c.Writable() {
			continue
		}
		if len(cols) > 0 {
			b.WriteString(", ")
		}
		b.Ident(c.Name())
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return sql.Statement{}, rowmap.NewMappingError(t.Type().String(), "no writable columns to insert")
	}
	b.WriteString(") VALUES (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Arg(c.Name(), c.Get(entity))
	}
	b.WriteByte(')')
	return b.statement(), nil
}

// CompileUpdate compiles a full UPDATE of entity: every writable column
// outside the primary key is assigned its current value.
func CompileUpdate(t *schema.Table, entity any, d dialect.Provider) (sql.Statement, error) {
	if err := checkEntity(t, entity); err != nil {
		return sql.Statement{}, err
	}
	var changes []Change
	for i := 0; i < t.NumColumns(); i++ {
		if c := t.ColumnAt(i); c.Writable() && !c.Key() {
			changes = append(changes, Change{Column: c.Name(), Value: c.Get(entity)})
		}
	}
	set, err := CompileUpdateSet(changes, t, entity, d)
	if err != nil {
		return sql.Statement{}, err
	}
	b := newBuilder(t, d)
	b.WriteString("UPDATE ")
	b.Ident(t.QualifiedName())
	b.WriteByte(' ')
	b.WriteString(set.Query)
	b.args = set.Args
	return b.statement(), nil
}

// CompileDelete compiles a DELETE of entity by primary key.
func CompileDelete(t *schema.Table, entity any, d dialect.Provider) (sql.Statement, error) {
	if err := checkEntity(t, entity); err != nil {
		return sql.Statement{}, err
	}
	if !t.HasKeys() {
		return sql.Statement{}, rowmap.NewMappingError(t.Type().String(), "delete requires a primary key")
	}
	b := newBuilder(t, d)
	b.WriteString("DELETE FROM ")
	b.Ident(t.QualifiedName())
	b.WriteString(" WHERE ")
	b.keys(entity)
	return b.statement(), nil
}

// CompileDeleteWhere compiles a DELETE of the rows matching p. A nil p
// matches every row.
func CompileDeleteWhere(t *schema.Table, p Predicate, d dialect.Provider) (sql.Statement, error) {
	b := newBuilder(t, d)
	b.WriteString("DELETE FROM ")
	b.Ident(t.QualifiedName())
	b.WriteString(" WHERE ")
	if err := b.predicate(p, true); err != nil {
		return sql.Statement{}, err
	}
	return b.statement(), nil
}
