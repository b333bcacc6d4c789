package etl

import (
	"context"
	"fmt"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogoodogoo/etl-cli/internal/db"
)

type fakeJob struct {
	name         string
	ds           *Dataset
	extractErr   error
	transformErr error
	loadErr      error
	loads        int
}

func (j *fakeJob) Name() string  { return j.name }
func (j *fakeJob) Table() string { return j.name }

func (j *fakeJob) Extract(context.Context) (any, error) {
	return nil, j.extractErr
}

func (j *fakeJob) Transform(context.Context, any) (*Dataset, error) {
	if j.transformErr != nil {
		return nil, j.transformErr
	}
	return j.ds, nil
}

func (j *fakeJob) Load(context.Context, db.Pool, *Dataset) error {
	j.loads++
	return j.loadErr
}

func TestRunner_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO etl_runs`).
		WithArgs(pgxmock.AnyArg(), "good", StatusRunning).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE etl_runs SET status`).
		WithArgs(pgxmock.AnyArg(), StatusComplete, int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	job := &fakeJob{name: "good", ds: &Dataset{Rows: [][]any{{1}, {2}, {3}}}}
	completed, failed := NewRunner(mock).Run(context.Background(), []Job{job})

	assert.Equal(t, 1, completed)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 1, job.loads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_FailureIsolated(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// First job fails at load and gets recorded as failed; the second
	// still runs to completion.
	mock.ExpectExec(`INSERT INTO etl_runs`).
		WithArgs(pgxmock.AnyArg(), "bad", StatusRunning).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE etl_runs SET status`).
		WithArgs(pgxmock.AnyArg(), StatusFailed, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO etl_runs`).
		WithArgs(pgxmock.AnyArg(), "good", StatusRunning).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE etl_runs SET status`).
		WithArgs(pgxmock.AnyArg(), StatusComplete, int64(0)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	bad := &fakeJob{name: "bad", ds: &Dataset{}, loadErr: fmt.Errorf("copy failed")}
	good := &fakeJob{name: "good", ds: &Dataset{}}
	completed, failed := NewRunner(mock).Run(context.Background(), []Job{bad, good})

	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, good.loads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_RunLogUnavailable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// The audit insert fails but the job itself still executes.
	mock.ExpectExec(`INSERT INTO etl_runs`).
		WithArgs(pgxmock.AnyArg(), "good", StatusRunning).
		WillReturnError(fmt.Errorf("relation does not exist"))

	job := &fakeJob{name: "good", ds: &Dataset{}}
	completed, failed := NewRunner(mock).Run(context.Background(), []Job{job})

	assert.Equal(t, 1, completed)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 1, job.loads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_ExtractErrorFailsJob(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO etl_runs`).
		WithArgs(pgxmock.AnyArg(), "bad", StatusRunning).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE etl_runs SET status`).
		WithArgs(pgxmock.AnyArg(), StatusFailed, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	job := &fakeJob{name: "bad", extractErr: fmt.Errorf("boom")}
	completed, failed := NewRunner(mock).Run(context.Background(), []Job{job})

	assert.Equal(t, 0, completed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 0, job.loads)
	assert.NoError(t, mock.ExpectationsWereMet())
}
