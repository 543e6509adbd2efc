// Package scheduler drives the periodic maintenance jobs of the pool.
//
// Each job (archiver pass, stale patrol) runs on its own independent timer
// and performs a short, non-blocking pass over the store. Runs are infrequent
// relative to interactive operations, so a failed pass is logged and retried
// on the next tick rather than aborting the scheduler.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/zinincorp/taskpool/internal/errors"
)

// Job is one periodic maintenance pass.
type Job struct {
	// Name identifies the job in logs.
	Name string

	// Interval is the tick period. Must be positive.
	Interval time.Duration

	// Run performs one pass. Errors are logged and the job keeps ticking.
	Run func(ctx context.Context) error
}

// Scheduler owns a set of periodic jobs.
type Scheduler struct {
	jobs   []Job
	logger zerolog.Logger
}

// New creates a Scheduler for the given jobs.
func New(logger zerolog.Logger, jobs ...Job) (*Scheduler, error) {
	for _, j := range jobs {
		if j.Interval <= 0 {
			return nil, fmt.Errorf("job '%s' interval %s: %w", j.Name, j.Interval, pkgerrors.ErrInvalidDuration)
		}
		if j.Run == nil {
			return nil, fmt.Errorf("job '%s' run func %w", j.Name, pkgerrors.ErrEmptyValue)
		}
	}
	return &Scheduler{
		jobs:   jobs,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}, nil
}

// Run ticks every job on its own timer until ctx is canceled. It blocks and
// returns ctx.Err() on shutdown; individual job errors never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, job := range s.jobs {
		job := job
		g.Go(func() error {
			return s.runJob(gctx, job)
		})
	}
	return g.Wait()
}

func (s *Scheduler) runJob(ctx context.Context, job Job) error {
	logger := s.logger.With().Str("job", job.Name).Logger()
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", job.Interval).Msg("job scheduled")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("job stopped")
			return ctx.Err()
		case <-ticker.C:
			started := time.Now()
			if err := job.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("job pass failed")
				continue
			}
			logger.Debug().Dur("elapsed", time.Since(started)).Msg("job pass completed")
		}
	}
}
