package schema

import (
	"reflect"

	"github.com/syssam/rowmap/schema/field"
)

// Mapping holds the resolved declarations for one entity type. Anything left
// empty is synthesized when the table is built.
type Mapping struct {
	// Type is the struct type being mapped.
	Type reflect.Type
	// Table overrides the table name.
	Table string
	// Schema sets the schema (namespace) of the table.
	Schema string
	// New constructs a default instance of the entity, as a pointer. It is
	// used for new entities and for probing interface-typed fields.
	New func() any
	// Columns holds per-field overrides keyed by Go field name.
	Columns map[string]ColumnSpec
	// Keys lists the Go field names forming the primary key.
	Keys []string
}

// ColumnSpec overrides the synthesized column of one field.
type ColumnSpec struct {
	Name     string     `yaml:"name"`
	Type     field.Type `yaml:"-"`
	Nullable *bool      `yaml:"nullable"`
	ReadOnly bool       `yaml:"readonly"`
	Skip     bool       `yaml:"skip"`
}

// Declaration is implemented by values that resolve to a Mapping.
type Declaration interface {
	Mapping() Mapping
}

// Mapping implements Declaration.
func (m Mapping) Mapping() Mapping { return m }

// Builder declares the mapping of T fluently:
//
//	schema.For[User]().
//	    Table("users").
//	    Key("ID").
//	    Column("Name", schema.Name("full_name")).
//	    Column("Nickname", schema.Nullable()).
//	    ReadOnly("CreatedAt")
type Builder[T any] struct {
	m Mapping
}

// For starts the declaration of T, which must be a struct type.
func For[T any]() *Builder[T] {
	return &Builder[T]{m: Mapping{
		Type:    reflect.TypeFor[T](),
		Columns: make(map[string]ColumnSpec),
	}}
}

// Table sets the table name.
func (b *Builder[T]) Table(name string) *Builder[T] {
	b.m.Table = name
	return b
}

// Schema sets the schema name.
func (b *Builder[T]) Schema(name string) *Builder[T] {
	b.m.Schema = name
	return b
}

// Key adds fields to the primary key, in order.
func (b *Builder[T]) Key(fields ...string) *Builder[T] {
	b.m.Keys = append(b.m.Keys, fields...)
	return b
}

// New sets the factory used to construct default instances.
func (b *Builder[T]) New(fn func() *T) *Builder[T] {
	b.m.New = func() any { return fn() }
	return b
}

// Column applies options to the column of a field.
func (b *Builder[T]) Column(name string, opts ...ColumnOption) *Builder[T] {
	spec := b.m.Columns[name]
	for _, opt := range opts {
		opt(&spec)
	}
	b.m.Columns[name] = spec
	return b
}

// ReadOnly marks fields as read-only.
func (b *Builder[T]) ReadOnly(fields ...string) *Builder[T] {
	for _, f := range fields {
		b.Column(f, ReadOnly())
	}
	return b
}

// Skip excludes fields from the mapping.
func (b *Builder[T]) Skip(fields ...string) *Builder[T] {
	for _, f := range fields {
		b.Column(f, Skip())
	}
	return b
}

// With merges a parsed TableSpec into the declaration. Values already set
// on the builder take precedence.
func (b *Builder[T]) With(spec TableSpec) *Builder[T] {
	if b.m.Table == "" {
		b.m.Table = spec.Table
	}
	if b.m.Schema == "" {
		b.m.Schema = spec.Schema
	}
	if len(b.m.Keys) == 0 {
		b.m.Keys = append(b.m.Keys, spec.Keys...)
	}
	for name, cs := range spec.Columns {
		if _, ok := b.m.Columns[name]; !ok {
			b.m.Columns[name] = cs
		}
	}
	return b
}

// Mapping implements Declaration.
func (b *Builder[T]) Mapping() Mapping {
	m := b.m
	m.Columns = make(map[string]ColumnSpec, len(b.m.Columns))
	for k, v := range b.m.Columns {
		m.Columns[k] = v
	}
	m.Keys = append([]string(nil), b.m.Keys...)
	return m
}

// ColumnOption configures a ColumnSpec.
type ColumnOption func(*ColumnSpec)

// Name sets the storage name of the column.
func Name(name string) ColumnOption {
	return func(s *ColumnSpec) { s.Name = name }
}

// StorageType sets the storage type tag of the column.
func StorageType(t field.Type) ColumnOption {
	return func(s *ColumnSpec) { s.Type = t }
}

// Nullable marks the column as nullable.
func Nullable() ColumnOption {
	return func(s *ColumnSpec) {
		v := true
		s.Nullable = &v
	}
}

// NotNull marks the column as not nullable, even for pointer fields.
func NotNull() ColumnOption {
	return func(s *ColumnSpec) {
		v := false
		s.Nullable = &v
	}
}

// ReadOnly marks the column as read-only.
func ReadOnly() ColumnOption {
	return func(s *ColumnSpec) { s.ReadOnly = true }
}

// Skip excludes the field from the mapping.
func Skip() ColumnOption {
	return func(s *ColumnSpec) { s.Skip = true }
}
