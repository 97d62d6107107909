package materialize

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect"
	"github.com/syssam/rowmap/schema"
	"github.com/syssam/rowmap/schema/field"
)

// Materializer hydrates entities from raw rows.
type Materializer struct {
	dialect dialect.Provider
	log     *slog.Logger
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithLogger sets the logger null substitutions are reported to at debug
// level. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Materializer) {
		m.log = l
	}
}

// New returns a Materializer coercing values with the given provider.
func New(d dialect.Provider, opts ...Option) *Materializer {
	m := &Materializer{dialect: d, log: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dialect returns the provider of the materializer.
func (m *Materializer) Dialect() dialect.Provider { return m.dialect }

// Materialize writes row into entity, a pointer to the table's struct type,
// and returns it. A nil entity is replaced by a new instance of the table.
//
// Columns absent from pm are left untouched. Storage nulls set nullable
// columns to their zero value and other columns to the provider's null
// default. Read-only columns are not written. The read-back value of every
// present column is folded into the fingerprint, which is attached to
// entities implementing rowmap.Tracker once all columns are written.
func (m *Materializer) Materialize(entity any, pm PositionMap, t *schema.Table, row []any) (any, error) {
	if entity == nil {
		entity = t.New()
	}
	if typ := reflect.TypeOf(entity); typ != reflect.PointerTo(t.Type()) {
		return nil, rowmap.NewMappingError(t.Type().String(), fmt.Sprintf("cannot materialize into %s", typ))
	}
	if len(pm) != t.NumColumns() {
		return nil, fmt.Errorf("materialize: position map has %d entries, table %s has %d columns", len(pm), t.Name(), t.NumColumns())
	}
	fp := NewFingerprint()
	defer fp.Discard()
	for i, ord := range pm {
		if ord == Absent {
			continue
		}
		if ord >= len(row) {
			return nil, fmt.Errorf("materialize: ordinal %d out of range for row of width %d", ord, len(row))
		}
		c := t.ColumnAt(i)
		if c.Writable() {
			v, err := m.value(c, row[ord])
			if err != nil {
				return nil, err
			}
			if err := c.Set(entity, v); err != nil {
				return nil, rowmap.NewCoercionError(c.Name(), reflect.TypeOf(v), c.DeclaredType(), err)
			}
		}
		if err := fp.Add(c.Get(entity)); err != nil {
			return nil, fmt.Errorf("materialize: column %s: %w", c.Name(), err)
		}
	}
	sum := fp.Sum()
	if st, ok := rowmap.StateOf(entity); ok {
		st.MarkLoaded(sum)
	}
	return entity, nil
}

// value returns the Go value written to column c for the raw value v.
func (m *Materializer) value(c *schema.Column, v any) (any, error) {
	if m.dialect.IsNull(v) {
		if c.Nullable() {
			return nil, nil
		}
		d := m.dialect.NullDefault(c.Type(), c.GoType())
		m.log.Debug("materialize: null substituted", "column", c.Name(), "default", d)
		if d == nil || reflect.TypeOf(d).AssignableTo(c.DeclaredType()) {
			return d, nil
		}
		v = d
	}
	out, err := m.dialect.Convert(v, c.GoType())
	if err != nil {
		return nil, rowmap.NewCoercionError(c.Name(), reflect.TypeOf(v), c.GoType(), err)
	}
	return out, nil
}

// MaterializeValue coerces the raw value v to the type of dst, a non-nil
// pointer, and stores it. It is the materialization of unmapped scalar
// targets: a storage null yields the provider's null default for
// non-nullable types.
func (m *Materializer) MaterializeValue(dst any, v any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("materialize: scalar target must be a non-nil pointer, got %T", dst)
	}
	to := rv.Type().Elem()
	if m.dialect.IsNull(v) {
		if field.Nullable(to) {
			rv.Elem().SetZero()
			return nil
		}
		v = m.dialect.NullDefault(m.dialect.MapType(to), to)
	}
	out, err := m.dialect.Convert(v, to)
	if err != nil {
		return rowmap.NewCoercionError("", reflect.TypeOf(v), to, err)
	}
	if out == nil {
		rv.Elem().SetZero()
		return nil
	}
	rv.Elem().Set(reflect.ValueOf(out))
	return nil
}
