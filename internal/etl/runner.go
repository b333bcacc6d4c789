package etl

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dogoodogoo/etl-cli/internal/db"
)

// Runner executes jobs sequentially with per-job failure isolation: one
// failing job is logged and recorded, and the remaining jobs still run.
type Runner struct {
	pool   db.Pool
	runlog *RunLog
	log    *zap.Logger
}

// NewRunner creates a runner backed by the given pool.
func NewRunner(pool db.Pool) *Runner {
	return &Runner{
		pool:   pool,
		runlog: NewRunLog(pool),
		log:    zap.L().With(zap.String("component", "etl")),
	}
}

// Run executes the given jobs in order and returns how many completed and
// how many failed.
func (r *Runner) Run(ctx context.Context, jobs []Job) (completed, failed int) {
	for _, job := range jobs {
		if err := r.runOne(ctx, job); err != nil {
			r.log.Error("job failed", zap.String("job", job.Name()), zap.Error(err))
			failed++
			continue
		}
		completed++
	}
	r.log.Info("run finished", zap.Int("completed", completed), zap.Int("failed", failed))
	return completed, failed
}

func (r *Runner) runOne(ctx context.Context, job Job) error {
	start := time.Now()
	r.log.Info("job starting", zap.String("job", job.Name()))

	runID, err := r.runlog.Start(ctx, job.Name())
	if err != nil {
		// The audit record is best-effort; the load itself still runs.
		r.log.Warn("run log unavailable", zap.Error(err))
	}

	ds, err := r.execute(ctx, job)
	if err != nil {
		if runID != "" {
			if lerr := r.runlog.Fail(ctx, runID, err.Error()); lerr != nil {
				r.log.Warn("run log update failed", zap.Error(lerr))
			}
		}
		return err
	}

	if runID != "" {
		if lerr := r.runlog.Complete(ctx, runID, int64(ds.Len())); lerr != nil {
			r.log.Warn("run log update failed", zap.Error(lerr))
		}
	}

	r.log.Info("job complete",
		zap.String("job", job.Name()),
		zap.Int("rows", ds.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (r *Runner) execute(ctx context.Context, job Job) (*Dataset, error) {
	raw, err := job.Extract(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := job.Transform(ctx, raw)
	if err != nil {
		return nil, err
	}
	if err := job.Load(ctx, r.pool, ds); err != nil {
		return nil, err
	}
	return ds, nil
}
