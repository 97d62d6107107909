package expr

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect"
	"github.com/syssam/rowmap/dialect/sql"
	"github.com/syssam/rowmap/schema"
)

// builder accumulates statement text and parameters. Placeholders are
// numbered from 1 in the order they are written.
type builder struct {
	strings.Builder
	d    dialect.Provider
	t    *schema.Table
	args []sql.Arg
}

func newBuilder(t *schema.Table, d dialect.Provider) *builder {
	return &builder{d: d, t: t}
}

// Arg writes a placeholder bound to v.
func (b *builder) Arg(name string, v any) {
	b.args = append(b.args, sql.Arg{Name: name, Value: v})
	b.WriteString(b.d.Placeholder(len(b.args)))
}

// Ident writes a quoted-if-needed identifier.
func (b *builder) Ident(name string) {
	b.WriteString(dialect.Ident(b.d, name))
}

func (b *builder) column(name string) (*schema.Column, error) {
	c, ok := b.t.Column(name)
	if !ok {
		return nil, rowmap.NewPropertyMappingError(b.t.Type().String(), name, "unknown property")
	}
	return c, nil
}

func (b *builder) statement() sql.Statement {
	return sql.Statement{Query: b.String(), Args: b.args}
}

// CompilePredicate compiles p into a WHERE fragment over the columns of t.
// Placeholders and parameters follow the left-to-right order of the
// comparisons in the tree. Nested junctions are parenthesized; the top
// level is not. A nil predicate compiles to "1 = 1".
func CompilePredicate(p Predicate, t *schema.Table, d dialect.Provider) (sql.Statement, error) {
	b := newBuilder(t, d)
	if err := b.predicate(p, true); err != nil {
		return sql.Statement{}, err
	}
	return b.statement(), nil
}

func (b *builder) predicate(p Predicate, top bool) error {
	switch p := p.(type) {
	case nil:
		b.WriteString("1 = 1")
	case Compare:
		return b.compare(p)
	case *Compare:
		return b.compare(*p)
	case Junction:
		return b.junction(p, top)
	case *Junction:
		return b.junction(*p, top)
	case Negation:
		return b.negation(p)
	case *Negation:
		return b.negation(*p)
	default:
		return fmt.Errorf("expr: unsupported predicate %T", p)
	}
	return nil
}

// likeEscaper escapes the LIKE wildcards of a contains operand, with
// backslash as the escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (b *builder) compare(p Compare) error {
	c, err := b.column(p.Field)
	if err != nil {
		return err
	}
	b.Ident(c.Name())
	switch p.Op {
	case OpIsNull:
		b.WriteString(" IS NULL")
	case OpContains:
		b.WriteString(" LIKE ")
		b.Arg(c.Name(), "%"+likeEscaper.Replace(fmt.Sprint(p.Value))+"%")
		b.WriteString(` ESCAPE '\'`)
	case OpEQ, OpNEQ, OpLT, OpLTE, OpGT, OpGTE:
		b.WriteByte(' ')
		b.WriteString(p.Op.String())
		b.WriteByte(' ')
		b.Arg(c.Name(), p.Value)
	default:
		return fmt.Errorf("expr: invalid operator %d on %s", p.Op, p.Field)
	}
	return nil
}

func (b *builder) junction(j Junction, top bool) error {
	if len(j.Preds) == 0 {
		if j.Or {
			b.WriteString("1 = 0")
		} else {
			b.WriteString("1 = 1")
		}
		return nil
	}
	if len(j.Preds) == 1 {
		return b.predicate(j.Preds[0], top)
	}
	sep := " AND "
	if j.Or {
		sep = " OR "
	}
	if !top {
		b.WriteByte('(')
	}
	for i, p := range j.Preds {
		if i > 0 {
			b.WriteString(sep)
		}
		if err := b.predicate(p, false); err != nil {
			return err
		}
	}
	if !top {
		b.WriteByte(')')
	}
	return nil
}

func (b *builder) negation(n Negation) error {
	if c, ok := n.Pred.(Compare); ok && c.Op == OpIsNull {
		col, err := b.column(c.Field)
		if err != nil {
			return err
		}
		b.Ident(col.Name())
		b.WriteString(" IS NOT NULL")
		return nil
	}
	b.WriteString("NOT (")
	if err := b.predicate(n.Pred, true); err != nil {
		return err
	}
	b.WriteByte(')')
	return nil
}

// Change is one column assignment of an update-set.
type Change struct {
	// Column is the Go field name or the storage name.
	Column string
	Value  any
}

// CompileUpdateSet compiles the assignments of changes followed by a WHERE
// fragment matching the primary key of entity, a pointer to the table's
// struct type:
//
//	SET Name = ? WHERE Id = ?
//
// Parameters are the new values in order, then the current key values. An
// empty change set fails with rowmap.EmptyUpdateError; a table without a
// primary key fails with rowmap.MappingError.
func CompileUpdateSet(changes []Change, t *schema.Table, entity any, d dialect.Provider) (sql.Statement, error) {
	if len(changes) == 0 {
		return sql.Statement{}, rowmap.NewEmptyUpdateError(t.Name())
	}
	if err := checkEntity(t, entity); err != nil {
		return sql.Statement{}, err
	}
	if !t.HasKeys() {
		return sql.Statement{}, rowmap.NewMappingError(t.Type().String(), "update requires a primary key")
	}
	b := newBuilder(t, d)
	b.WriteString("SET ")
	for i, ch := range changes {
		c, err := b.column(ch.Column)
		if err != nil {
			return sql.Statement{}, err
		}
		if !c.Writable() {
			return sql.Statement{}, rowmap.NewPropertyMappingError(t.Type().String(), c.Field(), "column is read-only")
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c.Name())
		b.WriteString(" = ")
		b.Arg(c.Name(), ch.Value)
	}
	b.WriteString(" WHERE ")
	b.keys(entity)
	return b.statement(), nil
}

// keys writes the primary key match of entity.
func (b *builder) keys(entity any) {
	for i, k := range b.t.PrimaryKeys() {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.Ident(k.Name())
		b.WriteString(" = ")
		b.Arg(k.Name(), k.Get(entity))
	}
}

func checkEntity(t *schema.Table, entity any) error {
	rv := reflect.ValueOf(entity)
	if !rv.IsValid() || rv.Type() != reflect.PointerTo(t.Type()) || rv.IsNil() {
		return rowmap.NewMappingError(t.Type().String(), fmt.Sprintf("expected a non-nil *%s, got %T", t.Type().Name(), entity))
	}
	return nil
}
