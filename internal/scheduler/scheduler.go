// Package scheduler repeats inventory cycles on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/siteatlas/siteatlas/internal/runner"
)

// Cycler runs one inventory cycle. Satisfied by *runner.Runner.
type Cycler interface {
	RunOnce(ctx context.Context) (runner.Result, error)
}

// Scheduler drives a Cycler on a ticker until the context ends.
type Scheduler struct {
	cycler   Cycler
	interval time.Duration
	logger   *zap.Logger
}

// New constructs a Scheduler.
func New(cycler Cycler, interval time.Duration, logger *zap.Logger) (*Scheduler, error) {
	if cycler == nil {
		return nil, fmt.Errorf("cycler is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cycler: cycler, interval: interval, logger: logger}, nil
}

// Run executes one cycle immediately, then one per interval tick. A failed
// cycle is logged and the schedule continues; only context cancellation
// stops the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", zap.Error(ctx.Err()))
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if _, err := s.cycler.RunOnce(ctx); err != nil {
		s.logger.Error("inventory cycle failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled cycle finished", zap.Duration("elapsed", time.Since(start)))
}
