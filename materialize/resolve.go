package materialize

import (
	"fmt"

	"golang.org/x/text/cases"

	"github.com/syssam/rowmap/schema"
)

// Cursor is a forward-only result cursor. *sql.Rows of the dialect/sql
// package implements it.
type Cursor interface {
	// Columns returns the result column names, in ordinal order.
	Columns() ([]string, error)
	// Next advances to the next row.
	Next() bool
	// Values returns the raw values of the current row, in ordinal order.
	Values() ([]any, error)
	// Err returns the error, if any, that stopped iteration.
	Err() error
}

// Absent marks a column that the cursor does not return.
const Absent = -1

// PositionMap maps each column of a table, by declaration index, to a
// cursor ordinal or Absent.
type PositionMap []int

// Resolve matches the columns of t against the result column names. Names
// are compared after Unicode case folding; when a name occurs more than
// once, the lowest ordinal wins.
func Resolve(columns []string, t *schema.Table) PositionMap {
	fold := cases.Fold()
	folded := make([]string, len(columns))
	for i, c := range columns {
		folded[i] = fold.String(c)
	}
	pm := make(PositionMap, t.NumColumns())
	for i := range pm {
		name := fold.String(t.ColumnAt(i).Name())
		pm[i] = Absent
		for j, c := range folded {
			if c == name {
				pm[i] = j
				break
			}
		}
	}
	return pm
}

// ResolveCursor resolves t against the columns of c.
func ResolveCursor(c Cursor, t *schema.Table) (PositionMap, error) {
	columns, err := c.Columns()
	if err != nil {
		return nil, fmt.Errorf("materialize: reading columns: %w", err)
	}
	return Resolve(columns, t), nil
}

// Present reports whether the i-th column is returned by the cursor.
func (pm PositionMap) Present(i int) bool {
	return i >= 0 && i < len(pm) && pm[i] != Absent
}

// Missing returns the columns of cols that the cursor does not return.
func (pm PositionMap) Missing(t *schema.Table, cols []*schema.Column) []*schema.Column {
	var missing []*schema.Column
	for _, c := range cols {
		for i := 0; i < t.NumColumns(); i++ {
			if t.ColumnAt(i) == c && !pm.Present(i) {
				missing = append(missing, c)
				break
			}
		}
	}
	return missing
}
