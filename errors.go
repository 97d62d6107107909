package rowmap

import (
	"errors"
	"fmt"
	"reflect"
)

// Standard sentinel errors for the mapping core.
var (
	// ErrMapping is matched by every MappingError.
	ErrMapping = errors.New("rowmap: mapping error")

	// ErrCoercion is matched by every CoercionError.
	ErrCoercion = errors.New("rowmap: coercion error")

	// ErrUnsupportedEngine is matched by every UnsupportedEngineError.
	ErrUnsupportedEngine = errors.New("rowmap: unsupported engine")

	// ErrEmptyUpdate is returned when an update is compiled without changes.
	ErrEmptyUpdate = errors.New("rowmap: update has no changed columns")
)

// MappingError represents a type or property that has no usable mapping:
// an interface type without a registered concrete substitute, an unmapped
// property in an expression, or a conflicting declaration.
type MappingError struct {
	Type     string // Go type name
	Property string // Optional: the property that failed to resolve
	Reason   string
}

// Error returns the error string.
func (e *MappingError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("rowmap: mapping %s.%s: %s", e.Type, e.Property, e.Reason)
	}
	return fmt.Sprintf("rowmap: mapping %s: %s", e.Type, e.Reason)
}

// Is reports whether the target error matches MappingError.
func (e *MappingError) Is(err error) bool {
	return err == ErrMapping
}

// NewMappingError returns a new MappingError for the given type.
func NewMappingError(typ, reason string) *MappingError {
	return &MappingError{Type: typ, Reason: reason}
}

// NewPropertyMappingError returns a new MappingError for a property of the given type.
func NewPropertyMappingError(typ, property, reason string) *MappingError {
	return &MappingError{Type: typ, Property: property, Reason: reason}
}

// IsMappingError returns true if the error is a MappingError.
func IsMappingError(err error) bool {
	if err == nil {
		return false
	}
	var e *MappingError
	return errors.As(err, &e) || errors.Is(err, ErrMapping)
}

// CoercionError represents a storage value that cannot be converted to the
// declared type of its column.
type CoercionError struct {
	Column string       // Storage column name
	From   reflect.Type // Type of the raw storage value
	To     reflect.Type // Declared property type
	Err    error        // Optional: underlying conversion error
}

// Error returns the error string.
func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("rowmap: cannot convert column %q from %s to %s", e.Column, typeName(e.From), typeName(e.To))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *CoercionError) Unwrap() error {
	return e.Err
}

// Is reports whether the target error matches CoercionError.
func (e *CoercionError) Is(err error) bool {
	return err == ErrCoercion
}

// NewCoercionError returns a new CoercionError.
func NewCoercionError(column string, from, to reflect.Type, err error) *CoercionError {
	return &CoercionError{Column: column, From: from, To: to, Err: err}
}

// IsCoercionError returns true if the error is a CoercionError.
func IsCoercionError(err error) bool {
	if err == nil {
		return false
	}
	var e *CoercionError
	return errors.As(err, &e) || errors.Is(err, ErrCoercion)
}

// UnsupportedEngineError is returned by the dialect factory for an engine
// that is unknown or has no shipped provider.
type UnsupportedEngineError struct {
	Engine string
}

// Error returns the error string.
func (e *UnsupportedEngineError) Error() string {
	return fmt.Sprintf("rowmap: unsupported engine %q", e.Engine)
}

// Is reports whether the target error matches UnsupportedEngineError.
func (e *UnsupportedEngineError) Is(err error) bool {
	return err == ErrUnsupportedEngine
}

// NewUnsupportedEngineError returns a new UnsupportedEngineError.
func NewUnsupportedEngineError(engine string) *UnsupportedEngineError {
	return &UnsupportedEngineError{Engine: engine}
}

// IsUnsupportedEngine returns true if the error is an UnsupportedEngineError.
func IsUnsupportedEngine(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedEngineError
	return errors.As(err, &e) || errors.Is(err, ErrUnsupportedEngine)
}

// EmptyUpdateError is returned when an update-set is compiled for a table
// with no changed columns.
type EmptyUpdateError struct {
	Table string
}

// Error returns the error string.
func (e *EmptyUpdateError) Error() string {
	return fmt.Sprintf("rowmap: update of %s has no changed columns", e.Table)
}

// Is reports whether the target error matches EmptyUpdateError.
func (e *EmptyUpdateError) Is(err error) bool {
	return err == ErrEmptyUpdate
}

// NewEmptyUpdateError returns a new EmptyUpdateError.
func NewEmptyUpdateError(table string) *EmptyUpdateError {
	return &EmptyUpdateError{Table: table}
}

// IsEmptyUpdate returns true if the error is an EmptyUpdateError.
func IsEmptyUpdate(err error) bool {
	if err == nil {
		return false
	}
	var e *EmptyUpdateError
	return errors.As(err, &e) || errors.Is(err, ErrEmptyUpdate)
}

// MissingKeyError is returned by bulk-load paths that require identity when
// a result set does not carry every primary-key column.
type MissingKeyError struct {
	Table  string
	Column string
}

// Error returns the error string.
func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("rowmap: result set for %s is missing primary key column %q", e.Table, e.Column)
}

// NewMissingKeyError returns a new MissingKeyError.
func NewMissingKeyError(table, column string) *MissingKeyError {
	return &MissingKeyError{Table: table, Column: column}
}

// IsMissingKey returns true if the error is a MissingKeyError.
func IsMissingKey(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingKeyError
	return errors.As(err, &e)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
