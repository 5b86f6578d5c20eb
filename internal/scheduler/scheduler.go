package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lenish/personal-hub/internal/domain/collector"
)

// Runner executes one collection pass for a collector.
type Runner interface {
	Run(ctx context.Context, c collector.Collector)
}

// Scheduler triggers periodic collection passes. It is the "external timer"
// the engine assumes: same-source overlap protection lives in the runner,
// not here.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	logger *slog.Logger
}

// New creates a scheduler.
func New(runner Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		logger: logger,
	}
}

// Add registers a collector to run every interval.
func (s *Scheduler) Add(c collector.Collector, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %v for source %s", interval, c.Source())
	}

	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		s.runner.Run(context.Background(), c)
	})
	if err != nil {
		return fmt.Errorf("scheduling source %s: %w", c.Source(), err)
	}

	s.logger.Info("scheduled collector", "source", c.Source(), "interval", interval)
	return nil
}

// Start begins firing scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for in-flight jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
