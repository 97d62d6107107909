package schema

import (
	"fmt"
	"reflect"

	"github.com/syssam/rowmap/schema/field"
)

// Column describes one mapped struct field. Columns are owned by a single
// Table and are immutable once the table is published.
type Column struct {
	name     string
	field    string
	goType   reflect.Type
	declared reflect.Type
	typ      field.Type
	nullable bool
	writable bool
	key      bool
	owner    reflect.Type
	index    []int
}

// Name returns the storage (column) name.
func (c *Column) Name() string { return c.name }

// Field returns the Go field name.
func (c *Column) Field() string { return c.field }

// GoType returns the value type of the column. For interface fields this is
// the concrete type observed on a default instance, if any.
func (c *Column) GoType() reflect.Type { return c.goType }

// DeclaredType returns the declared type of the struct field.
func (c *Column) DeclaredType() reflect.Type { return c.declared }

// Type returns the storage type tag.
func (c *Column) Type() field.Type { return c.typ }

// Nullable reports whether a storage null maps to the zero value of the field.
func (c *Column) Nullable() bool { return c.nullable }

// Writable reports whether materialization may write the field.
func (c *Column) Writable() bool { return c.writable }

// Key reports whether the column is part of the primary key.
func (c *Column) Key() bool { return c.key }

// Get reads the field from entity, which must be a pointer to the owning
// struct. It returns nil when the field is unreachable through a nil
// embedded pointer.
func (c *Column) Get(entity any) any {
	v, err := c.value(entity, false)
	if err != nil || !v.IsValid() {
		return nil
	}
	return v.Interface()
}

// Set writes v to the field of entity. A nil v resets the field to its zero
// value; any other v must be assignable to the declared field type.
func (c *Column) Set(entity any, v any) error {
	fv, err := c.value(entity, true)
	if err != nil {
		return err
	}
	if !fv.CanSet() {
		return fmt.Errorf("schema: field %s.%s is not settable", c.owner.Name(), c.field)
	}
	if v == nil {
		fv.SetZero()
		return nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(fv.Type()) {
		return fmt.Errorf("schema: cannot assign %s to field %s.%s of type %s", rv.Type(), c.owner.Name(), c.field, fv.Type())
	}
	fv.Set(rv)
	return nil
}

// value walks the field index path. With alloc set, nil embedded pointers
// along the path are allocated.
func (c *Column) value(entity any, alloc bool) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return reflect.Value{}, fmt.Errorf("schema: expect non-nil *%s, got %T", c.owner.Name(), entity)
	}
	v = v.Elem()
	if v.Type() != c.owner {
		return reflect.Value{}, fmt.Errorf("schema: expect *%s, got %T", c.owner.Name(), entity)
	}
	for i, x := range c.index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !alloc {
					return reflect.Value{}, nil
				}
				if !v.CanSet() {
					return reflect.Value{}, fmt.Errorf("schema: cannot allocate embedded %s of %s", v.Type(), c.owner.Name())
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, nil
}
