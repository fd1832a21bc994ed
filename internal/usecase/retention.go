package usecase

import (
	"context"
	"log/slog"
	"time"

	"ProposalReviewer/internal/ports"
)

// Retention wires the periodic driver with stored-batch cleanup.
type Retention struct {
	driver  ports.Scheduler
	batches ports.BatchRepository
	maxAge  time.Duration
	logger  *slog.Logger
}

// NewRetention returns a helper that purges batches older than maxAge.
func NewRetention(driver ports.Scheduler, batches ports.BatchRepository, maxAge time.Duration, logger *slog.Logger) *Retention {
	return &Retention{driver: driver, batches: batches, maxAge: maxAge, logger: logger}
}

// Start registers the sweep job with the provided scheduler.
func (r *Retention) Start(ctx context.Context) error {
	if r.driver == nil || r.batches == nil || r.maxAge <= 0 {
		return nil
	}

	job := func(trigger time.Time) {
		cutoff := trigger.Add(-r.maxAge)
		deleted, err := r.batches.DeleteBatchesBefore(ctx, cutoff)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("retention sweep", "error", err)
			}
			return
		}
		if deleted > 0 && r.logger != nil {
			r.logger.Info("retention sweep", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
		}
	}

	return r.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (r *Retention) Stop(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}
	return r.driver.Stop(ctx)
}
