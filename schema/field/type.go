package field

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type is the storage type tag of a column.
type Type uint8

// Storage type tags.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeTime
	TypeJSON
	TypeUUID
	TypeBytes
	TypeEnum
	TypeString
	TypeOther
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint
	TypeUint64
	TypeFloat32
	TypeFloat64
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeTime:    "time.Time",
	TypeJSON:    "json.RawMessage",
	TypeUUID:    "uuid.UUID",
	TypeBytes:   "[]byte",
	TypeEnum:    "enum",
	TypeString:  "string",
	TypeOther:   "other",
	TypeInt:     "int",
	TypeInt8:    "int8",
	TypeInt16:   "int16",
	TypeInt32:   "int32",
	TypeInt64:   "int64",
	TypeUint:    "uint",
	TypeUint8:   "uint8",
	TypeUint16:  "uint16",
	TypeUint32:  "uint32",
	TypeUint64:  "uint64",
	TypeFloat32: "float32",
	TypeFloat64: "float64",
}

// String returns the string representation of a type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type is known.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	return t >= TypeInt8 && t < endTypes
}

// Float reports if the given type is a float type.
func (t Type) Float() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// Integer reports if the given type is an integral type.
func (t Type) Integer() bool {
	return t.Numeric() && !t.Float()
}

// ParseType returns the tag for its textual form. Both the Go spelling
// ("time.Time", "[]byte") and short aliases ("time", "bytes", "uuid", "json")
// are accepted.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "time":
		return TypeTime, nil
	case "bytes":
		return TypeBytes, nil
	case "uuid":
		return TypeUUID, nil
	case "json":
		return TypeJSON, nil
	}
	for t := TypeBool; t < endTypes; t++ {
		if strings.EqualFold(typeNames[t], s) {
			return t, nil
		}
	}
	return TypeInvalid, fmt.Errorf("field: unknown storage type %q", s)
}

var (
	timeType    = reflect.TypeFor[time.Time]()
	uuidType    = reflect.TypeFor[uuid.UUID]()
	rawJSONType = reflect.TypeFor[json.RawMessage]()
	bytesType   = reflect.TypeFor[[]byte]()
	valuerType  = reflect.TypeFor[driver.Valuer]()
)

// Infer returns the storage tag for a Go type. Pointer types are inferred
// from their element type.
func Infer(t reflect.Type) Type {
	if t == nil {
		return TypeInvalid
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case timeType:
		return TypeTime
	case uuidType:
		return TypeUUID
	case rawJSONType:
		return TypeJSON
	case bytesType:
		return TypeBytes
	}
	switch t.Kind() {
	case reflect.Bool:
		return TypeBool
	case reflect.String:
		if t.PkgPath() != "" {
			return TypeEnum
		}
		return TypeString
	case reflect.Int:
		return TypeInt
	case reflect.Int8:
		return TypeInt8
	case reflect.Int16:
		return TypeInt16
	case reflect.Int32:
		return TypeInt32
	case reflect.Int64:
		return TypeInt64
	case reflect.Uint:
		return TypeUint
	case reflect.Uint8:
		return TypeUint8
	case reflect.Uint16:
		return TypeUint16
	case reflect.Uint32:
		return TypeUint32
	case reflect.Uint64:
		return TypeUint64
	case reflect.Float32:
		return TypeFloat32
	case reflect.Float64:
		return TypeFloat64
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return TypeBytes
		}
		return TypeJSON
	case reflect.Map, reflect.Array:
		if t.Kind() == reflect.Array && t.Elem().Kind() == reflect.Uint8 {
			return TypeBytes
		}
		return TypeJSON
	case reflect.Struct:
		// sql.NullString, sql.Null[T], uuid.NullUUID and the like.
		if Nullable(t) && t.NumField() == 2 {
			return Infer(t.Field(0).Type)
		}
	}
	return TypeOther
}

// Nullable reports whether a Go type can hold a storage null natively:
// pointers, maps, slices, interfaces and driver.Valuer types with a
// Valid flag (sql.NullString and friends).
func Nullable(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return true
	case reflect.Struct:
		if !t.Implements(valuerType) {
			return false
		}
		f, ok := t.FieldByName("Valid")
		return ok && f.Type.Kind() == reflect.Bool
	}
	return false
}
