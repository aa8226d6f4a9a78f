package watch_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "filebot/internal/errors"
	"filebot/internal/log"
	"filebot/internal/watch"
	"filebot/pkg/types"
)

// fakeOrganizer counts passes and can hold a pass open until released.
type fakeOrganizer struct {
	runs    atomic.Int32
	block   chan struct{}
	started chan struct{}
	summary types.Summary
	err     error
}

func (f *fakeOrganizer) Run(ctx context.Context) (types.Summary, error) {
	f.runs.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return types.Summary{}, ctx.Err()
		}
	}
	return f.summary, f.err
}

func (f *fakeOrganizer) ProcessFile(path string) types.OrganizeResult {
	return types.OrganizeResult{}
}

func (f *fakeOrganizer) DryRun() bool { return false }

func TestRunnerTrigger(t *testing.T) {
	org := &fakeOrganizer{summary: types.Summary{Processed: 3, Skipped: 1}}
	runner := watch.NewRunner(org)

	var finished []string
	runner.OnFinish(func(reason string, s types.Summary, err error) {
		finished = append(finished, reason)
		assert.Equal(t, 3, s.Processed)
		assert.NoError(t, err)
	})

	summary, err := runner.Trigger(context.Background(), "manual")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, []string{"manual"}, finished)

	stats := runner.Stats()
	assert.Equal(t, 1, stats.Passes)
	assert.Equal(t, 0, stats.Dropped)
	assert.Equal(t, 3, stats.LastSummary.Processed)
	assert.False(t, stats.LastRun.IsZero())
}

func TestRunnerRecordsError(t *testing.T) {
	boom := errors.New("boom")
	runner := watch.NewRunner(&fakeOrganizer{err: boom})

	_, err := runner.Trigger(context.Background(), "manual")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, runner.Stats().LastErr, boom)
}

func TestLogPassResult(t *testing.T) {
	var buf bytes.Buffer
	log.Configure(log.WithOutput(&buf), log.WithLevel("debug"))
	defer log.Configure()

	tests := []struct {
		name  string
		err   error
		level string
		msg   string
	}{
		{"success", nil, "level=debug", "Pass finished"},
		{"shutdown", context.Canceled, "level=debug", "Pass interrupted"},
		{"target missing", apperrors.NewFileError("target directory does not exist", "/srv/inbox", apperrors.TargetMissing, nil), "level=error", "Pass aborted"},
		{"per-file error", errors.New("cannot read target directory"), "level=warning", "Pass ended with an error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			watch.LogPassResult("schedule", types.Summary{PassID: "p1", Processed: 2}, tt.err)

			out := buf.String()
			assert.Contains(t, out, tt.level)
			assert.Contains(t, out, tt.msg)
			assert.Contains(t, out, "trigger=schedule")
			assert.Contains(t, out, "files_processed=2")
		})
	}
}

func TestRunnerDropsOverlappingTrigger(t *testing.T) {
	org := &fakeOrganizer{block: make(chan struct{}), started: make(chan struct{}, 1)}
	runner := watch.NewRunner(org)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := runner.Trigger(context.Background(), "schedule")
		assert.NoError(t, err)
	}()

	select {
	case <-org.started:
	case <-time.After(time.Second):
		t.Fatal("first pass did not start")
	}

	_, err := runner.Trigger(context.Background(), "watch")
	assert.ErrorIs(t, err, watch.ErrPassRunning)

	close(org.block)
	wg.Wait()

	stats := runner.Stats()
	assert.Equal(t, 1, stats.Passes)
	assert.Equal(t, 1, stats.Dropped)
	assert.EqualValues(t, 1, org.runs.Load())

	// The lock is released once the pass ends.
	_, err = runner.Trigger(context.Background(), "manual")
	assert.NoError(t, err)
}
