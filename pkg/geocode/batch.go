package geocode

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the resolution pool width when none is configured.
const DefaultWorkers = 20

// progressEvery is the completion cadence for progress log lines.
const progressEvery = 1000

// ResolveAll fans resolution out across records with a bounded worker pool.
// The returned slice always has len(records) entries in input order: worker
// i writes only slot i, so the slice itself needs no locking. Workers check
// the shared breaker before starting each record; once an auth failure trips
// it, remaining records complete as unmatched without network calls.
func (r *Resolver) ResolveAll(ctx context.Context, records []Record, workers int) []Result {
	results := make([]Result, len(records))
	if len(records) == 0 {
		return results
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	log := zap.L().With(zap.String("component", "geocode.batch"))
	log.Info("resolution batch started",
		zap.Int("records", len(records)),
		zap.Int("workers", workers),
	)

	start := time.Now()
	total := int64(len(records))
	var completed atomic.Int64

	var eg errgroup.Group
	eg.SetLimit(workers)

	for i, rec := range records {
		eg.Go(func() error {
			// Skip the body entirely once the breaker is tripped; the
			// slot keeps its zero (unmatched) value.
			if !r.breaker.Tripped() {
				results[i] = r.Resolve(ctx, rec)
			}

			done := completed.Add(1)
			if done%progressEvery == 0 || done == total {
				log.Info("resolution progress",
					zap.Int64("completed", done),
					zap.Int64("total", total),
					zap.Duration("elapsed", time.Since(start)),
				)
			}
			return nil
		})
	}
	_ = eg.Wait()

	return results
}
