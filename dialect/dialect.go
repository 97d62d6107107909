package dialect

import (
	"database/sql/driver"
	"reflect"
	"regexp"
	"strings"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/schema/field"
)

// Engine identifies a database backend.
type Engine string

// Known engines. Only SQLite ships with a provider; the others are
// recognized so that selecting them fails explicitly.
const (
	SQLite    Engine = "sqlite"
	Postgres  Engine = "postgres"
	MySQL     Engine = "mysql"
	SQLServer Engine = "sqlserver"
)

// String implements fmt.Stringer.
func (e Engine) String() string { return string(e) }

// Provider supplies the backend specific primitives used by the
// materializer and the expression compiler.
type Provider interface {
	// Engine returns the engine of the provider.
	Engine() Engine
	// MapType returns the storage type tag of a Go type.
	MapType(t reflect.Type) field.Type
	// NullDefault returns the value substituted for a storage null read
	// into a non-nullable column of the given tag and Go type.
	NullDefault(t field.Type, goType reflect.Type) any
	// Placeholder renders the parameter marker of the i-th parameter,
	// starting at 1.
	Placeholder(i int) string
	// Quote quotes an identifier.
	Quote(ident string) string
	// IsNull reports whether a raw row value is a storage null.
	IsNull(v any) bool
	// Convert coerces a raw row value to the Go type of a column.
	Convert(v any, to reflect.Type) (any, error)
}

// Open returns the provider of the given engine. Engines without a shipped
// provider, and unknown engines, fail with rowmap.UnsupportedEngineError.
func Open(e Engine) (Provider, error) {
	switch e {
	case SQLite:
		return sqliteProvider{}, nil
	default:
		return nil, rowmap.NewUnsupportedEngineError(string(e))
	}
}

// ParseEngine returns the engine named by s. Driver names wrapped with a
// suffix (e.g. "sqlite3") are matched by prefix.
func ParseEngine(s string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, e := range []Engine{SQLite, Postgres, MySQL, SQLServer} {
		if strings.HasPrefix(name, string(e)) {
			return e, nil
		}
	}
	return "", rowmap.NewUnsupportedEngineError(s)
}

// validIdentifierRe validates SQL identifiers (alphanumeric and underscores).
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Ident returns ident as is when it is a plain identifier, and quoted by p
// otherwise. Dotted names are handled per part.
func Ident(p Provider, ident string) string {
	parts := strings.Split(ident, ".")
	for i, part := range parts {
		if !validIdentifierRe.MatchString(part) {
			parts[i] = p.Quote(part)
		}
	}
	return strings.Join(parts, ".")
}

// IsNull is the default storage-null predicate: nil, nil pointers and
// driver.Valuer values reporting a nil value.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	if dv, ok := v.(driver.Valuer); ok {
		val, err := dv.Value()
		return err == nil && val == nil
	}
	return false
}

// ZeroDefault is the default null substitute: the zero value of goType.
func ZeroDefault(t field.Type, goType reflect.Type) any {
	if goType != nil {
		return reflect.Zero(goType).Interface()
	}
	switch {
	case t == field.TypeBool:
		return false
	case t == field.TypeString, t == field.TypeEnum:
		return ""
	case t.Float():
		return float64(0)
	case t.Integer():
		return int64(0)
	}
	return nil
}
