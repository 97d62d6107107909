// Package materialize hydrates entities from result rows.
//
// A read resolves the cursor's columns against the entity's table once
// (Resolve), then materializes every row through that PositionMap. Each
// load folds the as-loaded column values into a Fingerprint and attaches it,
// with the Loaded status, to entities embedding rowmap.State.
//
//	rows, err := drv.Query(ctx, stmt)
//	if err != nil {
//		return err
//	}
//	defer rows.Close()
//	rd, err := materialize.NewReader[User](reg, materialize.New(drv.Dialect()), rows)
//	if err != nil {
//		return err
//	}
//	users, err := rd.All()
package materialize
