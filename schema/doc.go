// Package schema derives the table mapping of Go struct types.
//
// A [Registry] builds one immutable [Table] per struct type on first
// lookup and caches it for its own lifetime:
//
//	reg := schema.NewRegistry(schema.WithNaming(schema.SnakeNaming))
//	users, err := schema.Lookup[User](reg)
//
// # Derivation
//
// Every exported field becomes a [Column]. The struct's own fields come
// first, followed by the fields of each embedded struct, recursively. A
// field without a declaration gets a synthesized column: its storage name is
// the field name (after the naming strategy) and its storage type is
// inferred from the Go type with [field.Infer]. The table name defaults to
// the unqualified type name, or to the result of a TableName method.
//
// # Declarations
//
// Overrides are supplied before the first lookup, either fluently:
//
//	err := reg.Register(schema.For[User]().
//	    Table("users").
//	    Key("ID").
//	    Column("Name", schema.Name("full_name")).
//	    ReadOnly("CreatedAt"))
//
// or from a YAML document parsed with [ParseDeclarations] and merged with
// [Builder.With].
//
// # Interface fields
//
// A field whose declared type is an interface takes the dynamic type found
// on a default instance built by the declared New factory. When the default
// instance leaves the field nil, the interface type itself is kept.
//
// Looking up an interface type fails with a rowmap.MappingError unless a
// concrete type was registered for it with [Registry.RegisterInterface].
package schema
