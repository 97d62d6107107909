// Package rowmap is an object-relational mapping core translating between Go
// struct entities and relational rows.
//
// The module is split into small packages:
//
//   - [schema]: table and column descriptors derived from struct types and
//     cached by a [schema.Registry]
//   - [schema/field]: storage type tags
//   - [dialect]: backend specific rendering rules selected by engine
//   - [dialect/sql]: compiled statements and database/sql adapters
//   - [materialize]: result schema resolution, fingerprinting and hydration
//   - [expr]: predicate and update-set compilation
//
// # Quick Start
//
//	reg := schema.NewRegistry()
//	users, err := schema.Lookup[User](reg)
//	if err != nil {
//	    return err
//	}
//	d, err := dialect.Open(dialect.SQLite)
//	if err != nil {
//	    return err
//	}
//	stmt, err := expr.CompileSelect(users, expr.And(
//	    expr.F[int]("Age").GTE(18),
//	    expr.F[string]("Name").EQ("Ann"),
//	), d)
//
// Rows are read back with a [materialize.Reader], which records the
// as-loaded fingerprint on entities embedding [State].
//
// # Errors
//
// Every failure of this module is one of [MappingError], [CoercionError],
// [UnsupportedEngineError], [EmptyUpdateError] or [MissingKeyError]. They
// reflect static mapping mismatches and are never retried.
package rowmap
