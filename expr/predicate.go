package expr

// Op is a comparison operator.
type Op uint8

// Comparison operators.
const (
	OpEQ       Op = iota + 1 // =
	OpNEQ                    // <>
	OpLT                     // <
	OpLTE                    // <=
	OpGT                     // >
	OpGTE                    // >=
	OpContains               // LIKE %v% ESCAPE '\'
	OpIsNull                 // IS NULL
)

var opText = [...]string{
	OpEQ:       "=",
	OpNEQ:      "<>",
	OpLT:       "<",
	OpLTE:      "<=",
	OpGT:       ">",
	OpGTE:      ">=",
	OpContains: "LIKE",
	OpIsNull:   "IS NULL",
}

// String returns the SQL operator.
func (o Op) String() string {
	if o == 0 || int(o) >= len(opText) {
		return "invalid"
	}
	return opText[o]
}

// Predicate is a node of a boolean expression tree over entity properties.
// The implementations are Compare, Junction and Negation.
type Predicate interface {
	predicate()
}

// Compare is a leaf comparing a property with a literal value. The property
// is named by its Go field name or its storage name.
type Compare struct {
	Field string
	Op    Op
	Value any
}

// Junction is a conjunction (AND) or disjunction (OR) of predicates.
type Junction struct {
	Or    bool
	Preds []Predicate
}

// Negation negates a predicate.
type Negation struct {
	Pred Predicate
}

func (Compare) predicate()  {}
func (Junction) predicate() {}
func (Negation) predicate() {}

// And returns the conjunction of ps. An empty conjunction is true.
func And(ps ...Predicate) Predicate {
	return Junction{Preds: ps}
}

// Or returns the disjunction of ps. An empty disjunction is false.
func Or(ps ...Predicate) Predicate {
	return Junction{Or: true, Preds: ps}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return Negation{Pred: p}
}

// Cmp returns a comparison of the named property.
func Cmp(field string, op Op, v any) Predicate {
	return Compare{Field: field, Op: op, Value: v}
}

// F is a typed property reference:
//
//	expr.And(
//	    expr.F[int]("Age").GTE(18),
//	    expr.F[string]("Name").EQ("Ann"),
//	)
type F[T any] string

// Name returns the property name.
func (f F[T]) Name() string { return string(f) }

// EQ returns a predicate that checks if the property equals v.
func (f F[T]) EQ(v T) Predicate { return Cmp(string(f), OpEQ, v) }

// NEQ returns a predicate that checks if the property does not equal v.
func (f F[T]) NEQ(v T) Predicate { return Cmp(string(f), OpNEQ, v) }

// LT returns a predicate that checks if the property is less than v.
func (f F[T]) LT(v T) Predicate { return Cmp(string(f), OpLT, v) }

// LTE returns a predicate that checks if the property is less than or equal to v.
func (f F[T]) LTE(v T) Predicate { return Cmp(string(f), OpLTE, v) }

// GT returns a predicate that checks if the property is greater than v.
func (f F[T]) GT(v T) Predicate { return Cmp(string(f), OpGT, v) }

// GTE returns a predicate that checks if the property is greater than or equal to v.
func (f F[T]) GTE(v T) Predicate { return Cmp(string(f), OpGTE, v) }

// Contains returns a predicate that checks if the property contains s.
func (f F[T]) Contains(s string) Predicate { return Cmp(string(f), OpContains, s) }

// IsNull returns a predicate that checks if the property is null.
func (f F[T]) IsNull() Predicate { return Cmp(string(f), OpIsNull, nil) }

// NotNull returns a predicate that checks if the property is not null.
func (f F[T]) NotNull() Predicate { return Not(f.IsNull()) }
