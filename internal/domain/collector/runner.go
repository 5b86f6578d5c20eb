package collector

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lenish/personal-hub/internal/domain/syncstate"
)

// StateTracker records run outcomes.
type StateTracker interface {
	Update(ctx context.Context, source string, upd syncstate.Update) error
}

// Runner brackets one collection pass with sync-state transitions:
// running on entry, idle with the item count on success, error with a
// truncated message on failure. Failures never propagate to the caller;
// callers poll sync state to learn the outcome.
//
// Overlapping runs of the same source are skipped: state is partitioned by
// source, so two concurrent passes for one source would race on the same row.
type Runner struct {
	states  StateTracker
	timeout time.Duration
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRunner creates a runner. timeout bounds each pass so a stuck external
// call cannot wedge a source forever; zero disables the deadline.
func NewRunner(states StateTracker, timeout time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		states:  states,
		timeout: timeout,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Run executes one collection pass for c. There is no retry and no
// re-raise: the outcome lands in sync state and nowhere else.
func (r *Runner) Run(ctx context.Context, c Collector) {
	source := c.Source()

	lock := r.lockFor(source)
	if !lock.TryLock() {
		r.logger.Warn("collection already in progress, skipping", "source", source)
		return
	}
	defer lock.Unlock()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.logger.Info("starting collection", "source", source, "category", c.Category())

	// Cursor and items_synced stay untouched while the run is in flight.
	if err := r.states.Update(ctx, source, syncstate.Update{Status: syncstate.StatusRunning}); err != nil {
		r.logger.Error("failed to mark collection running", "source", source, "error", err)
		return
	}

	count, err := c.Collect(ctx)
	if err != nil {
		r.logger.Error("collection failed", "source", source, "error", err)
		msg := err.Error()
		// A timed-out run ctx must not block recording the failure.
		if err := r.states.Update(context.WithoutCancel(ctx), source, syncstate.Update{
			Status: syncstate.StatusError,
			Error:  &msg,
		}); err != nil {
			r.logger.Error("failed to record collection failure", "source", source, "error", err)
		}
		return
	}

	if err := r.states.Update(ctx, source, syncstate.Update{
		Status:      syncstate.StatusIdle,
		ItemsSynced: &count,
	}); err != nil {
		r.logger.Error("failed to record collection result", "source", source, "error", err)
		return
	}

	r.logger.Info("collection complete", "source", source, "items", count)
}

func (r *Runner) lockFor(source string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[source]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[source] = lock
	}
	return lock
}
