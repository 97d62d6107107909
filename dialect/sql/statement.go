package sql

import (
	"fmt"
	"strings"
)

// Arg is one bound parameter of a Statement.
type Arg struct {
	// Name is the storage column the parameter is bound against.
	Name  string
	Value any
}

// Statement is a compiled statement or fragment: dialect-rendered text and
// its parameters, in placeholder order.
type Statement struct {
	Query string
	Args  []Arg
}

// Values returns the parameter values in order, ready to be passed to
// database/sql.
func (s Statement) Values() []any {
	vs := make([]any, len(s.Args))
	for i, a := range s.Args {
		vs[i] = a.Value
	}
	return vs
}

// Empty reports whether the statement has no text.
func (s Statement) Empty() bool { return s.Query == "" }

// String returns the text followed by the parameters, one per line.
func (s Statement) String() string {
	var b strings.Builder
	b.WriteString(s.Query)
	for i, a := range s.Args {
		fmt.Fprintf(&b, "\n$%d %s = %#v", i+1, a.Name, a.Value)
	}
	return b.String()
}
