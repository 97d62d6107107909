package materialize

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/schema"
	"github.com/syssam/rowmap/schema/field"
)

// Reader reads the rows of a cursor as values of T. When T is a mapped
// struct type, rows are materialized through its table; when T is a
// scalar (including time.Time and the sql.Null* wrappers), the first
// column of every row is coerced to T.
//
// The Reader does not own the cursor beyond Close.
type Reader[T any] struct {
	cursor Cursor
	m      *Materializer
	table  *schema.Table
	pm     PositionMap
	cur    *T
	err    error
}

// NewReader prepares a reader of T over c. The position map is resolved
// once, from the cursor's columns.
func NewReader[T any](r *schema.Registry, m *Materializer, c Cursor) (*Reader[T], error) {
	rd := &Reader[T]{cursor: c, m: m}
	if scalar(reflect.TypeFor[T]()) {
		return rd, nil
	}
	t, err := schema.Lookup[T](r)
	if err != nil {
		return nil, err
	}
	pm, err := ResolveCursor(c, t)
	if err != nil {
		return nil, err
	}
	rd.table, rd.pm = t, pm
	return rd, nil
}

func scalar(t reflect.Type) bool {
	return t.Kind() != reflect.Struct || field.Infer(t) != field.TypeOther
}

// Table returns the table rows are materialized through, or nil for scalar
// readers.
func (r *Reader[T]) Table() *schema.Table { return r.table }

// PositionMap returns the resolved position map, or nil for scalar readers.
func (r *Reader[T]) PositionMap() PositionMap { return r.pm }

// Next advances to the next row and materializes it into a new value,
// available through Current. It returns false at the end of the cursor or
// on error; Err distinguishes the two.
func (r *Reader[T]) Next() bool {
	r.cur = nil
	v := new(T)
	ok, err := r.read(v)
	if err != nil || !ok {
		r.err = err
		return false
	}
	r.cur = v
	return true
}

// Current returns the value read by the last call to Next.
func (r *Reader[T]) Current() *T { return r.cur }

// Load advances to the next row and materializes it into entity, leaving
// the fields of columns the cursor does not return untouched. It returns
// false at the end of the cursor.
func (r *Reader[T]) Load(entity *T) (bool, error) {
	if entity == nil {
		return false, errors.New("materialize: load into nil entity")
	}
	ok, err := r.read(entity)
	if err != nil {
		r.err = err
	}
	return ok, err
}

// All reads the remaining rows. Entities with primary keys can only be
// bulk-loaded when the cursor returns every key column; otherwise All
// fails with rowmap.MissingKeyError before reading any row.
func (r *Reader[T]) All() ([]*T, error) {
	if r.table != nil {
		if missing := r.pm.Missing(r.table, r.table.PrimaryKeys()); len(missing) > 0 {
			return nil, rowmap.NewMissingKeyError(r.table.Name(), missing[0].Name())
		}
	}
	var out []*T
	for r.Next() {
		out = append(out, r.Current())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Err returns the error that stopped iteration, if any.
func (r *Reader[T]) Err() error { return r.err }

// Close closes the cursor if it implements io.Closer.
func (r *Reader[T]) Close() error {
	if c, ok := r.cursor.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *Reader[T]) read(dst *T) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	if !r.cursor.Next() {
		return false, r.cursor.Err()
	}
	row, err := r.cursor.Values()
	if err != nil {
		return false, fmt.Errorf("materialize: reading row: %w", err)
	}
	if r.table == nil {
		if len(row) == 0 {
			return false, errors.New("materialize: scalar read from a row without columns")
		}
		if err := r.m.MaterializeValue(dst, row[0]); err != nil {
			return false, err
		}
		return true, nil
	}
	if _, err := r.m.Materialize(dst, r.pm, r.table, row); err != nil {
		return false, err
	}
	return true, nil
}
