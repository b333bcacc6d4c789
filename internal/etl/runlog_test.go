package etl

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestRunLog_Start(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO etl_runs`).
		WithArgs(pgxmock.AnyArg(), "trashbins", StatusRunning).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := NewRunLog(mock).Start(context.Background(), "trashbins")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLog_Complete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE etl_runs SET status`).
		WithArgs("run-1", StatusComplete, int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, NewRunLog(mock).Complete(context.Background(), "run-1", 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLog_Fail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE etl_runs SET status`).
		WithArgs("run-1", StatusFailed, "copy failed").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, NewRunLog(mock).Fail(context.Background(), "run-1", "copy failed"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLog_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	started := time.Date(2026, 8, 25, 3, 0, 0, 0, time.UTC)
	finished := started.Add(40 * time.Second)

	mock.ExpectQuery(`SELECT id, job, status`).
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "job", "status", "rows_loaded", "error", "started_at", "finished_at"}).
			AddRow("run-2", "weather", StatusComplete, int64(1), "", started.Add(time.Minute), &finished).
			AddRow("run-1", "trashbins", StatusFailed, int64(0), "copy failed", started, &finished))

	entries, err := NewRunLog(mock).List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "weather", entries[0].Job)
	assert.Equal(t, StatusFailed, entries[1].Status)
	assert.Equal(t, "copy failed", entries[1].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLog_ListQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, job, status`).
		WithArgs(10).
		WillReturnError(fmt.Errorf("connection refused"))

	_, err = NewRunLog(mock).List(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runlog: list")
}
