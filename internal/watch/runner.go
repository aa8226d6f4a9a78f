// Package watch drives organization passes from outside triggers: a fixed
// schedule or file system events in the target directory.
package watch

import (
	"context"
	"sync"
	"time"

	"filebot/internal/errors"
	"filebot/internal/log"
	"filebot/internal/organize"
	"filebot/pkg/types"
)

// ErrPassRunning is returned by Runner.Trigger when another pass is in progress.
var ErrPassRunning = errors.New("organization pass already running")

// Runner serializes passes of one Organizer. At most one pass runs at a time;
// a trigger that arrives during a pass is dropped, not queued.
type Runner struct {
	organizer organize.Organizer

	running sync.Mutex

	mu       sync.Mutex
	passes   int
	dropped  int
	last     types.Summary
	lastErr  error
	lastRun  time.Time
	onFinish func(reason string, summary types.Summary, err error)
}

// NewRunner returns a Runner for o.
func NewRunner(o organize.Organizer) *Runner {
	return &Runner{organizer: o}
}

// OnFinish registers a callback invoked after every completed pass.
func (r *Runner) OnFinish(fn func(reason string, summary types.Summary, err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFinish = fn
}

// Trigger runs one pass unless one is already running, in which case it
// returns ErrPassRunning immediately. reason is only used for logging.
func (r *Runner) Trigger(ctx context.Context, reason string) (types.Summary, error) {
	if !r.running.TryLock() {
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
		log.LogWithFields(log.F("trigger", reason)).Warn("Organization pass already running, trigger dropped")
		return types.Summary{}, ErrPassRunning
	}
	defer r.running.Unlock()

	log.LogWithFields(log.F("trigger", reason)).Debug("Organization pass starting")
	summary, err := r.organizer.Run(ctx)

	r.mu.Lock()
	r.passes++
	r.last = summary
	r.lastErr = err
	r.lastRun = time.Now()
	fn := r.onFinish
	r.mu.Unlock()

	if fn != nil {
		fn(reason, summary, err)
	}
	return summary, err
}

// LogPassResult is the OnFinish callback used by the commands. Errors that
// stop a pass before any file is touched are logged at error level, shutdown
// at debug level and everything else as a warning.
func LogPassResult(reason string, summary types.Summary, err error) {
	entry := log.LogWithFields(
		log.F("trigger", reason),
		log.F("pass", summary.PassID),
		log.F("files_processed", summary.Processed),
		log.F("files_skipped", summary.Skipped),
	)
	switch {
	case err == nil:
		entry.Debug("Pass finished")
	case errors.Is(err, context.Canceled):
		entry.Debug("Pass interrupted")
	case errors.IsFatal(err):
		entry.WithError(err).Error("Pass aborted")
	default:
		entry.WithError(err).Warn("Pass ended with an error")
	}
}

// Stats describes the passes a Runner has performed.
type Stats struct {
	Passes      int
	Dropped     int
	LastRun     time.Time
	LastSummary types.Summary
	LastErr     error
}

// Stats returns a snapshot of the runner's counters.
func (r *Runner) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Passes:      r.passes,
		Dropped:     r.dropped,
		LastRun:     r.lastRun,
		LastSummary: r.last,
		LastErr:     r.lastErr,
	}
}
