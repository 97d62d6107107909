package sql

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/syssam/rowmap/dialect"
)

// Stats is a point-in-time snapshot of statement statistics.
type Stats struct {
	Queries  int64         // row-returning statements
	Execs    int64         // statements without rows
	Slow     int64         // statements over the slow threshold
	Errors   int64         // failed statements
	Duration time.Duration // total execution time
}

// SlowQueryHook is called when a statement exceeds the slow threshold.
type SlowQueryHook func(ctx context.Context, stmt Statement, duration time.Duration)

// StatsDriver wraps a Driver and counts the statements run through it and
// its transactions.
type StatsDriver struct {
	*Driver
	threshold time.Duration
	onSlow    SlowQueryHook

	queries  atomic.Int64
	execs    atomic.Int64
	slow     atomic.Int64
	failed   atomic.Int64
	duration atomic.Int64 // nanoseconds
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement is slow.
// Default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) { s.threshold = d }
}

// WithSlowQueryHook sets the function called for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) { s.onSlow = hook }
}

// WithSlowQueryLog logs slow statements to l at warn level, or to the
// default logger when l is nil.
func WithSlowQueryLog(l *slog.Logger) StatsOption {
	if l == nil {
		l = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, stmt Statement, duration time.Duration) {
		l.WarnContext(ctx, "slow query detected", "duration", duration, "query", stmt.Query, "args", stmt.Values())
	})
}

// NewStatsDriver wraps drv with statement statistics.
func NewStatsDriver(drv *Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv, threshold: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenWithStats opens a database and wraps it with statement statistics.
func OpenWithStats(engine dialect.Engine, source string, opts ...StatsOption) (*StatsDriver, error) {
	drv, err := Open(engine, source)
	if err != nil {
		return nil, err
	}
	return NewStatsDriver(drv, opts...), nil
}

// Stats returns the statistics recorded so far.
func (d *StatsDriver) Stats() Stats {
	return Stats{
		Queries:  d.queries.Load(),
		Execs:    d.execs.Load(),
		Slow:     d.slow.Load(),
		Errors:   d.failed.Load(),
		Duration: time.Duration(d.duration.Load()),
	}
}

// Query executes a row-returning statement and records it.
func (d *StatsDriver) Query(ctx context.Context, stmt Statement) (*Rows, error) {
	start := time.Now()
	rows, err := d.Driver.Query(ctx, stmt)
	d.record(ctx, &d.queries, stmt, start, err)
	return rows, err
}

// Exec executes a statement and records it.
func (d *StatsDriver) Exec(ctx context.Context, stmt Statement) (Result, error) {
	start := time.Now()
	res, err := d.Driver.Exec(ctx, stmt)
	d.record(ctx, &d.execs, stmt, start, err)
	return res, err
}

// Tx starts a transaction whose statements are recorded by d.
func (d *StatsDriver) Tx(ctx context.Context) (*StatsTx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsTx{Tx: tx, driver: d}, nil
}

func (d *StatsDriver) record(ctx context.Context, kind *atomic.Int64, stmt Statement, start time.Time, err error) {
	elapsed := time.Since(start)
	kind.Add(1)
	d.duration.Add(int64(elapsed))
	if err != nil {
		d.failed.Add(1)
	}
	if elapsed > d.threshold {
		d.slow.Add(1)
		if d.onSlow != nil {
			d.onSlow(ctx, stmt, elapsed)
		}
	}
}

// StatsTx is a transaction started by a StatsDriver.
type StatsTx struct {
	*Tx
	driver *StatsDriver
}

// Query executes a row-returning statement within the transaction.
func (tx *StatsTx) Query(ctx context.Context, stmt Statement) (*Rows, error) {
	start := time.Now()
	rows, err := tx.Tx.Query(ctx, stmt)
	tx.driver.record(ctx, &tx.driver.queries, stmt, start, err)
	return rows, err
}

// Exec executes a statement within the transaction.
func (tx *StatsTx) Exec(ctx context.Context, stmt Statement) (Result, error) {
	start := time.Now()
	res, err := tx.Tx.Exec(ctx, stmt)
	tx.driver.record(ctx, &tx.driver.execs, stmt, start, err)
	return res, err
}

// DebugDriver wraps a Driver and logs every statement at debug level.
type DebugDriver struct {
	*Driver
	log *slog.Logger
}

// NewDebugDriver wraps drv with debug logging. A nil logger uses the
// default logger.
func NewDebugDriver(drv *Driver, l *slog.Logger) *DebugDriver {
	if l == nil {
		l = slog.Default()
	}
	return &DebugDriver{Driver: drv, log: l}
}

// Query logs and executes a row-returning statement.
func (d *DebugDriver) Query(ctx context.Context, stmt Statement) (*Rows, error) {
	d.log.DebugContext(ctx, "query", "query", stmt.Query, "args", stmt.Values())
	return d.Driver.Query(ctx, stmt)
}

// Exec logs and executes a statement.
func (d *DebugDriver) Exec(ctx context.Context, stmt Statement) (Result, error) {
	d.log.DebugContext(ctx, "exec", "query", stmt.Query, "args", stmt.Values())
	return d.Driver.Exec(ctx, stmt)
}

var (
	_ Executor = (*StatsDriver)(nil)
	_ Executor = (*StatsTx)(nil)
	_ Executor = (*DebugDriver)(nil)
)
