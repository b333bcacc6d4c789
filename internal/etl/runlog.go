package etl

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/dogoodogoo/etl-cli/internal/db"
)

// Run statuses recorded in etl_runs.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// RunEntry is one row of the etl_runs audit table.
type RunEntry struct {
	ID         string
	Job        string
	Status     string
	RowsLoaded int64
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// RunLog records job executions in the etl_runs table so operators can see
// what ran, when, and with what outcome.
type RunLog struct {
	pool db.Pool
}

// NewRunLog creates a run log backed by the given pool.
func NewRunLog(pool db.Pool) *RunLog {
	return &RunLog{pool: pool}
}

// Start inserts a running entry for the job and returns its id.
func (l *RunLog) Start(ctx context.Context, job string) (string, error) {
	id := uuid.NewString()
	_, err := l.pool.Exec(ctx,
		`INSERT INTO etl_runs (id, job, status, started_at) VALUES ($1, $2, $3, now())`,
		id, job, StatusRunning)
	if err != nil {
		return "", eris.Wrapf(err, "runlog: start %s", job)
	}
	return id, nil
}

// Complete marks the run as finished with the number of rows loaded.
func (l *RunLog) Complete(ctx context.Context, id string, rows int64) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE etl_runs SET status = $2, rows_loaded = $3, finished_at = now() WHERE id = $1`,
		id, StatusComplete, rows)
	if err != nil {
		return eris.Wrap(err, "runlog: complete")
	}
	return nil
}

// Fail marks the run as failed with the error message.
func (l *RunLog) Fail(ctx context.Context, id, msg string) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE etl_runs SET status = $2, error = $3, finished_at = now() WHERE id = $1`,
		id, StatusFailed, msg)
	if err != nil {
		return eris.Wrap(err, "runlog: fail")
	}
	return nil
}

// List returns the most recent runs, newest first.
func (l *RunLog) List(ctx context.Context, limit int) ([]RunEntry, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, job, status, rows_loaded, COALESCE(error, ''), started_at, finished_at
		 FROM etl_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		if strings.Contains(err.Error(), "no rows in result set") {
			return nil, nil
		}
		return nil, eris.Wrap(err, "runlog: list")
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		if err := rows.Scan(&e.ID, &e.Job, &e.Status, &e.RowsLoaded, &e.Error, &e.StartedAt, &e.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "runlog: scan row")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "runlog: iterate rows")
	}
	return entries, nil
}
