package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/syssam/rowmap/dialect"
)

// Driver executes compiled statements on a database/sql connection pool.
// It is the thin execution layer used by tests and simple callers; sessions
// and transactions with richer lifecycles live outside this module.
type Driver struct {
	Conn
}

// NewDriver creates a new Driver with the given Conn.
func NewDriver(c Conn) *Driver {
	return &Driver{Conn: c}
}

// Open opens a database of the given engine and returns a Driver with the
// engine's provider. The engine must have a shipped provider.
func Open(engine dialect.Engine, source string) (*Driver, error) {
	p, err := dialect.Open(engine)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName(engine), source)
	if err != nil {
		return nil, err
	}
	return OpenDB(p, db), nil
}

// OpenDB wraps the given database/sql.DB with a Driver.
func OpenDB(p dialect.Provider, db *sql.DB) *Driver {
	return NewDriver(Conn{db, p})
}

// DB returns the underlying *sql.DB instance.
func (d Driver) DB() *sql.DB {
	return d.ExecQuerier.(*sql.DB)
}

// Tx starts and returns a transaction.
func (d *Driver) Tx(ctx context.Context) (*Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (*Tx, error) {
	tx, err := d.DB().BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{
		Conn: Conn{tx, d.dialect},
		Tx:   tx,
	}, nil
}

// Close closes the underlying connection.
func (d *Driver) Close() error { return d.DB().Close() }

// Tx is a transaction executing compiled statements.
type Tx struct {
	Conn
	driver.Tx
}

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Executor is implemented by Conn, Driver, Tx and the stats wrappers.
type Executor interface {
	Exec(ctx context.Context, stmt Statement) (Result, error)
	Query(ctx context.Context, stmt Statement) (*Rows, error)
}

// Conn executes compiled statements on an ExecQuerier.
type Conn struct {
	ExecQuerier
	dialect dialect.Provider
}

// Dialect returns the provider the statements are compiled with.
func (c Conn) Dialect() dialect.Provider { return c.dialect }

// Exec executes a statement that returns no rows.
func (c Conn) Exec(ctx context.Context, stmt Statement) (Result, error) {
	if stmt.Empty() {
		return nil, errors.New("dialect/sql: exec: empty statement")
	}
	res, err := c.ExecContext(ctx, stmt.Query, stmt.Values()...)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: exec: %w", err)
	}
	return res, nil
}

// Query executes a statement that returns rows. The caller owns the
// returned Rows and must close them.
func (c Conn) Query(ctx context.Context, stmt Statement) (*Rows, error) {
	if stmt.Empty() {
		return nil, errors.New("dialect/sql: query: empty statement")
	}
	rows, err := c.QueryContext(ctx, stmt.Query, stmt.Values()...)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: query: %w", err)
	}
	return &Rows{ColumnScanner: rows}, nil
}

var (
	_ Executor = Conn{}
	_ Executor = (*Driver)(nil)
	_ Executor = (*Tx)(nil)
)

type (
	// Result is an alias to sql.Result.
	Result = sql.Result
	// TxOptions holds the transaction options to be used in DB.BeginTx.
	TxOptions = sql.TxOptions
)

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	Columns() ([]string, error)
	Err() error
	Next() bool
	Scan(dest ...any) error
}

// Rows is a forward-only cursor over a result set. Besides the standard
// scanning methods it reads whole rows as raw driver values, which is the
// shape the materializer consumes.
type Rows struct {
	ColumnScanner
	width int
}

// NewRows wraps a ColumnScanner.
func NewRows(cs ColumnScanner) *Rows {
	return &Rows{ColumnScanner: cs}
}

// Values returns the raw values of the current row, one per column.
// Storage nulls are returned as nil.
func (r *Rows) Values() ([]any, error) {
	if r.width == 0 {
		cols, err := r.Columns()
		if err != nil {
			return nil, fmt.Errorf("dialect/sql: columns: %w", err)
		}
		r.width = len(cols)
	}
	vals := make([]any, r.width)
	dest := make([]any, r.width)
	for i := range vals {
		dest[i] = &vals[i]
	}
	if err := r.Scan(dest...); err != nil {
		return nil, fmt.Errorf("dialect/sql: scan: %w", err)
	}
	return vals, nil
}

// driverName returns the database/sql driver name registered for engine.
func driverName(e dialect.Engine) string {
	if e == dialect.SQLite {
		return sqliteDriver
	}
	return string(e)
}
