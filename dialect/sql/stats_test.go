package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/rowmap"
	"github.com/syssam/rowmap/dialect"
)

func TestStatsDriver(t *testing.T) {
	drv, mock := newMock(t)
	ctx := context.Background()

	var slow []Statement
	stats := NewStatsDriver(drv,
		WithSlowThreshold(-1),
		WithSlowQueryHook(func(_ context.Context, stmt Statement, _ time.Duration) {
			slow = append(slow, stmt)
		}),
	)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	rows, err := stats.Query(ctx, Statement{Query: "SELECT 1"})
	require.NoError(t, err)
	require.NoError(t, rows.Close())

	mock.ExpectExec("DELETE FROM users").WillReturnError(errors.New("locked"))
	_, err = stats.Exec(ctx, Statement{Query: "DELETE FROM users"})
	require.Error(t, err)

	snap := stats.Stats()
	assert.Equal(t, int64(1), snap.Queries)
	assert.Equal(t, int64(1), snap.Execs)
	assert.Equal(t, int64(1), snap.Errors)
	assert.Equal(t, int64(2), snap.Slow)
	assert.GreaterOrEqual(t, snap.Duration, time.Duration(0))
	assert.Len(t, slow, 2)
	assert.Equal(t, "SELECT 1", slow[0].Query)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsThreshold(t *testing.T) {
	drv, mock := newMock(t)
	called := false
	stats := NewStatsDriver(drv, WithSlowThreshold(time.Hour), WithSlowQueryHook(func(context.Context, Statement, time.Duration) {
		called = true
	}))

	mock.ExpectExec("UPDATE t SET a = 1").WillReturnResult(sqlmock.NewResult(0, 1))
	_, err := stats.Exec(context.Background(), Statement{Query: "UPDATE t SET a = 1"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Stats().Slow)
	assert.False(t, called)
}

func TestOpenWithStats(t *testing.T) {
	stats, err := OpenWithStats(dialect.SQLite, ":memory:")
	require.NoError(t, err)
	defer stats.Close()

	_, err = stats.Exec(context.Background(), Statement{Query: "CREATE TABLE t (a INTEGER)"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Stats().Execs)

	_, err = OpenWithStats(dialect.Engine("oracle"), "")
	assert.True(t, rowmap.IsUnsupportedEngine(err))
}

func TestStatsTx(t *testing.T) {
	drv, mock := newMock(t)
	ctx := context.Background()
	stats := NewStatsDriver(drv)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO t (a) VALUES (?)").WithArgs(1).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := stats.Tx(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, Statement{Query: "INSERT INTO t (a) VALUES (?)", Args: []Arg{{Name: "a", Value: 1}}})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.Equal(t, int64(1), stats.Stats().Execs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlowQueryLog(t *testing.T) {
	drv, mock := newMock(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	stats := NewStatsDriver(drv, WithSlowThreshold(-1), WithSlowQueryLog(logger))

	mock.ExpectExec("UPDATE t SET a = ?").WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 1))
	_, err := stats.Exec(context.Background(), Statement{Query: "UPDATE t SET a = ?", Args: []Arg{{Name: "a", Value: 2}}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "slow query detected")
	assert.Contains(t, buf.String(), `query="UPDATE t SET a = ?"`)
}

func TestDebugDriver(t *testing.T) {
	drv, mock := newMock(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	dbg := NewDebugDriver(drv, logger)

	mock.ExpectQuery("SELECT a FROM t").WillReturnRows(sqlmock.NewRows([]string{"a"}))
	rows, err := dbg.Query(context.Background(), Statement{Query: "SELECT a FROM t"})
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	assert.Contains(t, buf.String(), `query="SELECT a FROM t"`)
}
