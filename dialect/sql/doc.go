// Package sql executes compiled statements on database/sql.
//
// A Statement is the output of the expr compilers: dialect-rendered text and
// its named parameters in placeholder order. Driver, Conn and Tx run
// statements and return Rows, a forward-only cursor whose Values method
// reads whole rows as raw driver values for the materializer.
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db")
//	if err != nil {
//		return err
//	}
//	rows, err := drv.Query(ctx, stmt)
//	if err != nil {
//		return err
//	}
//	defer rows.Close()
//
// # Statistics
//
// StatsDriver counts statements, errors and slow statements, and can log
// slow statements through log/slog:
//
//	stats := sql.NewStatsDriver(drv,
//		sql.WithSlowThreshold(200*time.Millisecond),
//		sql.WithSlowQueryLog(logger),
//	)
//	fmt.Printf("%+v\n", stats.Stats())
package sql
