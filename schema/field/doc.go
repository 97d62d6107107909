// Package field defines the storage type tags attached to mapped columns.
//
// A column's tag is either declared explicitly in a mapping or inferred from
// the Go type of the struct field:
//
//	field.Infer(reflect.TypeFor[int64]())     // field.TypeInt64
//	field.Infer(reflect.TypeFor[*string]())   // field.TypeString
//	field.Infer(reflect.TypeFor[time.Time]()) // field.TypeTime
//	field.Infer(reflect.TypeFor[uuid.UUID]()) // field.TypeUUID
//
// Pointers are dereferenced before inference; named types with a string or
// integer underlying kind map to the tag of that kind. Types with no natural
// storage representation map to TypeOther.
//
// Tags also have a textual form used by declarations:
//
//	t, err := field.ParseType("int64")
package field
