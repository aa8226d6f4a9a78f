package watch

import (
	"context"
	"time"

	"filebot/internal/errors"
	"filebot/internal/log"
)

// Scheduler triggers a pass every Interval until its context ends. A failed
// pass is logged and the schedule continues.
type Scheduler struct {
	runner     *Runner
	interval   time.Duration
	runOnStart bool
}

// NewScheduler returns a scheduler driving runner every interval.
// With runOnStart the first pass happens immediately instead of after one interval.
func NewScheduler(runner *Runner, interval time.Duration, runOnStart bool) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.NewConfigError("schedule interval must be positive", "schedule.interval", errors.InvalidConfig, nil)
	}
	return &Scheduler{runner: runner, interval: interval, runOnStart: runOnStart}, nil
}

// Run blocks until ctx is done and returns nil on a clean stop.
func (s *Scheduler) Run(ctx context.Context) error {
	log.LogWithFields(log.F("interval", s.interval.String())).Info("Scheduler started. Press Ctrl+C to exit.")

	if s.runOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Scheduler stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	log.Info("Scheduled organization started")
	_, err := s.runner.Trigger(ctx, "schedule")
	switch {
	case err == nil:
	case errors.Is(err, ErrPassRunning):
	case ctx.Err() != nil:
		return
	default:
		log.LogWithError(err).Error("Error during scheduled organization")
	}
	log.Info("Scheduled organization completed")
}
