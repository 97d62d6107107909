package dialect

import (
	"database/sql"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

var (
	timeType    = reflect.TypeFor[time.Time]()
	scannerType = reflect.TypeFor[sql.Scanner]()
)

// Convert coerces a raw row value to the Go type to. It accepts the value
// kinds database/sql drivers produce (int64, float64, bool, []byte, string,
// time.Time) and converts them to numeric kinds with overflow checks, to
// strings and string-based enums, to bools, to times, to pointer types and
// to types whose pointer implements sql.Scanner. A nil v yields the zero
// value of to.
func Convert(v any, to reflect.Type) (any, error) {
	if to == nil {
		return nil, fmt.Errorf("dialect: convert to nil type")
	}
	if v == nil {
		return reflect.Zero(to).Interface(), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type() == to {
		return v, nil
	}
	if to.Kind() == reflect.Interface {
		if rv.Type().Implements(to) {
			out := reflect.New(to).Elem()
			out.Set(rv)
			return out.Interface(), nil
		}
		return nil, fmt.Errorf("dialect: %s does not implement %s", rv.Type(), to)
	}
	if to.Kind() == reflect.Pointer {
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return reflect.Zero(to).Interface(), nil
			}
			return Convert(rv.Elem().Interface(), to)
		}
		elem, err := Convert(v, to.Elem())
		if err != nil {
			return nil, err
		}
		return wrap(reflect.ValueOf(elem), to), nil
	}
	if reflect.PointerTo(to).Implements(scannerType) {
		out := reflect.New(to)
		if err := out.Interface().(sql.Scanner).Scan(scanSource(v)); err != nil {
			return nil, fmt.Errorf("dialect: scan %s: %w", to, err)
		}
		return out.Elem().Interface(), nil
	}
	out, err := convertKind(rv, to)
	if err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

// scanSource normalizes v to a driver.Value accepted by sql.Scanner
// implementations.
func scanSource(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Bool:
		return rv.Bool()
	}
	return v
}

func convertKind(rv reflect.Value, to reflect.Type) (reflect.Value, error) {
	if to == timeType {
		return convertTime(rv)
	}
	if b, ok := rv.Interface().([]byte); ok {
		switch {
		case to.Kind() == reflect.String:
			return reflect.ValueOf(string(b)).Convert(to), nil
		case to.Kind() == reflect.Slice && to.Elem().Kind() == reflect.Uint8:
			return reflect.ValueOf(append([]byte(nil), b...)).Convert(to), nil
		}
		// Numeric and bool text.
		rv = reflect.ValueOf(string(b))
	}
	switch to.Kind() {
	case reflect.String:
		if rv.Kind() == reflect.String {
			return rv.Convert(to), nil
		}
	case reflect.Bool:
		switch rv.Kind() {
		case reflect.Bool:
			return rv.Convert(to), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return reflect.ValueOf(rv.Int() != 0).Convert(to), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return reflect.ValueOf(rv.Uint() != 0).Convert(to), nil
		case reflect.String:
			b, err := strconv.ParseBool(rv.String())
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(b).Convert(to), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(rv)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(to).Elem()
		if out.OverflowInt(n) {
			return reflect.Value{}, fmt.Errorf("dialect: value %d overflows %s", n, to)
		}
		out.SetInt(n)
		return out, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toUint64(rv)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(to).Elem()
		if out.OverflowUint(n) {
			return reflect.Value{}, fmt.Errorf("dialect: value %d overflows %s", n, to)
		}
		out.SetUint(n)
		return out, nil
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(rv)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(to).Elem()
		if out.OverflowFloat(f) {
			return reflect.Value{}, fmt.Errorf("dialect: value %g overflows %s", f, to)
		}
		out.SetFloat(f)
		return out, nil
	}
	if rv.Type().ConvertibleTo(to) && rv.Kind() == to.Kind() {
		return rv.Convert(to), nil
	}
	return reflect.Value{}, fmt.Errorf("dialect: unsupported conversion from %s to %s", rv.Type(), to)
}

func toInt64(rv reflect.Value) (int64, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("dialect: value %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		// float64(math.MaxInt64) rounds up to 2^63, which is out of range.
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("dialect: value %g is not an integer", f)
		}
		return int64(f), nil
	case reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.String:
		return strconv.ParseInt(rv.String(), 10, 64)
	}
	return 0, fmt.Errorf("dialect: unsupported conversion from %s to integer", rv.Type())
}

func toUint64(rv reflect.Value) (uint64, error) {
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.String:
		return strconv.ParseUint(rv.String(), 10, 64)
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < 0 || f >= math.Ldexp(1, 64) {
			return 0, fmt.Errorf("dialect: value %g is not an unsigned integer", f)
		}
		return uint64(f), nil
	}
	n, err := toInt64(rv)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("dialect: negative value %d for unsigned type", n)
	}
	return uint64(n), nil
}

func toFloat64(rv reflect.Value) (float64, error) {
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), nil
	case reflect.String:
		return strconv.ParseFloat(rv.String(), 64)
	}
	return 0, fmt.Errorf("dialect: unsupported conversion from %s to float", rv.Type())
}

func convertTime(rv reflect.Value) (reflect.Value, error) {
	switch rv.Kind() {
	case reflect.String:
		t, err := parseTime(rv.String())
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(t), nil
	case reflect.Slice:
		if b, ok := rv.Interface().([]byte); ok {
			t, err := parseTime(string(b))
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(t), nil
		}
	case reflect.Struct:
		if rv.Type().ConvertibleTo(timeType) {
			return rv.Convert(timeType), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("dialect: unsupported conversion from %s to %s", rv.Type(), timeType)
}

// wrap returns a pointer of type to holding v.
func wrap(v reflect.Value, to reflect.Type) any {
	if v.Type() == to || to.Kind() != reflect.Pointer {
		return v.Interface()
	}
	p := reflect.New(to.Elem())
	p.Elem().Set(reflect.ValueOf(wrap(v, to.Elem())))
	return p.Interface()
}
