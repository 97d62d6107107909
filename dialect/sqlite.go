package dialect

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/syssam/rowmap/schema/field"
)

// sqliteProvider renders positional "?" parameters and double-quoted
// identifiers. SQLite has no boolean or time storage class: booleans come
// back as integers and times as text or unix integers, unless the driver
// recognizes a declared column type.
type sqliteProvider struct{}

func (sqliteProvider) Engine() Engine { return SQLite }

func (sqliteProvider) MapType(t reflect.Type) field.Type { return field.Infer(t) }

func (sqliteProvider) NullDefault(t field.Type, goType reflect.Type) any {
	return ZeroDefault(t, goType)
}

func (sqliteProvider) Placeholder(int) string { return "?" }

func (sqliteProvider) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (sqliteProvider) IsNull(v any) bool { return IsNull(v) }

func (sqliteProvider) Convert(v any, to reflect.Type) (any, error) {
	target := to
	for target.Kind() == reflect.Pointer {
		target = target.Elem()
	}
	if target == timeType {
		switch v := v.(type) {
		case int64:
			return wrap(reflect.ValueOf(time.Unix(v, 0).UTC()), to), nil
		case float64:
			sec, frac := splitFloat(v)
			return wrap(reflect.ValueOf(time.Unix(sec, frac).UTC()), to), nil
		}
	}
	return Convert(v, to)
}

func splitFloat(f float64) (int64, int64) {
	sec := int64(f)
	return sec, int64((f - float64(sec)) * 1e9)
}

// timeFormats are the text layouts SQLite drivers write times with.
var timeFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	var err error
	for _, layout := range timeFormats {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	if n, perr := strconv.ParseInt(s, 10, 64); perr == nil {
		return time.Unix(n, 0).UTC(), nil
	}
	return time.Time{}, err
}
