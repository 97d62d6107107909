// Package dialect provides the database dialect abstraction of rowmap.
//
// A [Provider] supplies the backend specific primitives used when reading
// rows and compiling statements: parameter markers, identifier quoting,
// Go type to storage type mapping, storage-null detection, the value
// substituted for a null read into a non-nullable column, and raw value
// coercion.
//
// # Engines
//
// Providers are selected by engine:
//
//	d, err := dialect.Open(dialect.SQLite)
//
// The following engines are recognized:
//
//   - SQLite: shipped, renders "?" parameters and "quoted" identifiers
//   - Postgres, MySQL, SQLServer: named but not shipped
//
// Opening an engine without a shipped provider fails with a
// rowmap.UnsupportedEngineError rather than falling back to another
// dialect.
//
// # Value Conversion
//
// [Convert] coerces the values produced by database/sql drivers to the Go
// type of a column:
//
//	v, err := dialect.Convert(int64(42), reflect.TypeFor[int16]())  // int16(42)
//	v, err := dialect.Convert([]byte("ok"), reflect.TypeFor[*string]()) // *string
//	v, err := dialect.Convert("3b1f...", reflect.TypeFor[uuid.UUID]())  // via sql.Scanner
//
// Providers layer their own storage conventions on top of it; SQLite for
// instance reads unix integers into time.Time.
package dialect
