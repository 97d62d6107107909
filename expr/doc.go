// Package expr compiles predicate and update expressions over entity
// properties into parameterized statements.
//
// Properties are referenced by Go field name or storage name and resolved
// through the entity's schema.Table; every literal operand becomes one
// dialect placeholder, in left-to-right order:
//
//	p := expr.And(
//	    expr.F[int]("Age").GTE(18),
//	    expr.F[string]("Name").EQ("Ann"),
//	)
//	stmt, err := expr.CompilePredicate(p, users, d)
//	// stmt.Query: Age >= ? AND Name = ?
//	// stmt.Values(): [18 Ann]
package expr
