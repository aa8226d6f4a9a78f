package organize

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"filebot/internal/config"
	"filebot/internal/errors"
	"filebot/pkg/types"
)

// Engine runs organization passes over the configured target directory.
// It is safe to run passes one after another; it does not guard against
// overlapping passes itself.
type Engine struct {
	cfg      *config.Config
	dryRun   bool
	now      func() time.Time
	reporter Reporter
}

// Option configures an Engine.
type Option func(*Engine)

// WithDryRun overrides the config's dry_run setting.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) { e.dryRun = dryRun }
}

// WithClock sets the time source used for date groups and rename timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithReporter sets where pass events go. The default writes to the package logger.
func WithReporter(r Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// NewEngine validates cfg and returns an engine for it.
func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, errors.ErrInvalidConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		dryRun:   cfg.DryRun,
		now:      time.Now,
		reporter: NewLogReporter(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reporter == nil {
		e.reporter = Discard
	}
	return e, nil
}

// DryRun reports whether the engine only simulates moves.
func (e *Engine) DryRun() bool {
	return e.dryRun
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Run performs one pass: it snapshots the top level of the target directory
// and processes each entry in name order. A missing target aborts the pass
// before any file is touched. Cancellation is honoured between files; the
// summary returned with ctx's error covers the files handled so far.
func (e *Engine) Run(ctx context.Context) (types.Summary, error) {
	summary := types.Summary{PassID: uuid.NewString(), DryRun: e.dryRun}
	target := e.cfg.TargetDirectory

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("not a directory")
		}
		missing := errors.NewFileError("target directory does not exist", target, errors.TargetMissing, err)
		e.report(Event{Level: LevelError, Message: "Target directory does not exist", PassID: summary.PassID, Path: target, Err: missing})
		return summary, missing
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		readErr := errors.NewFileError("cannot read target directory", target, errors.FileAccessDenied, err)
		e.report(Event{Level: LevelError, Message: "Cannot read target directory", PassID: summary.PassID, Path: target, Err: readErr})
		return summary, readErr
	}

	mode := "live"
	if e.dryRun {
		mode = "dry run"
	}
	e.report(Event{Level: LevelInfo, Message: fmt.Sprintf("Organization started (%s, %d entries)", mode, len(entries)), PassID: summary.PassID, Path: target})

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			e.report(Event{Level: LevelWarn, Message: "Organization interrupted", PassID: summary.PassID, Err: err})
			return summary, err
		}

		path := filepath.Join(target, entry.Name())
		info, err := entry.Info()
		if err != nil {
			// The entry vanished between listing and inspection.
			result := types.OrganizeResult{SourcePath: path, Outcome: types.OutcomeExcluded}
			e.report(Event{Level: LevelWarn, Message: "Skipping unreadable file", PassID: summary.PassID, Path: path, Err: err})
			summary.Add(result)
			continue
		}

		summary.Add(e.processFile(summary.PassID, path, info))
	}

	e.report(Event{
		Level:   LevelInfo,
		Message: fmt.Sprintf("Organization complete. Processed: %d, Skipped: %d", summary.Processed, summary.Skipped),
		PassID:  summary.PassID,
	})
	return summary, nil
}

// ProcessFile runs a single file at path through the pipeline.
func (e *Engine) ProcessFile(path string) types.OrganizeResult {
	info, err := os.Lstat(path)
	if err != nil {
		failed := errors.NewFileError("cannot stat file", path, errors.FileNotFound, err)
		e.report(Event{Level: LevelWarn, Message: "Skipping unreadable file", Path: path, Err: failed})
		return types.OrganizeResult{SourcePath: path, Outcome: types.OutcomeExcluded, Error: failed}
	}
	return e.processFile("", path, info)
}

func (e *Engine) processFile(passID, path string, info fs.FileInfo) types.OrganizeResult {
	result := types.OrganizeResult{SourcePath: path}

	if reason, skip := CheckSkippable(path, info, e.cfg); skip {
		switch reason {
		case SkipLocked:
			result.Outcome = types.OutcomeLocked
			result.Error = errors.NewFileError("file is locked or inaccessible", path, errors.FileLocked, nil)
			e.report(Event{Level: LevelWarn, Message: "Skipping locked file", PassID: passID, Path: path, Err: result.Error})
		case SkipDirectory:
			result.Outcome = types.OutcomeExcluded
			e.report(Event{Level: LevelDebug, Message: "Skipping directory", PassID: passID, Path: path})
		default:
			result.Outcome = types.OutcomeExcluded
			e.report(Event{Level: LevelInfo, Message: "Skipping file: " + reason, PassID: passID, Path: path})
		}
		return result
	}

	file := types.NewCandidate(path)
	result.Size = file.Size

	match, ok := Classify(file, e.cfg.Rules)
	if !ok {
		result.Outcome = types.OutcomeUnmatched
		e.report(Event{Level: LevelInfo, Message: "Skipping file: no matching rule", PassID: passID, Path: path})
		return result
	}
	result.RuleName = match.RuleName

	if !file.HasModTime() {
		e.report(Event{
			Level:   LevelWarn,
			Message: "Modification time unavailable, using " + types.DateGroupUnknown,
			PassID:  passID,
			Path:    path,
			Rule:    match.RuleName,
			Err:     errors.NewFileError("cannot read modification time", path, errors.MetadataUnavailable, file.ModTimeErr),
		})
	}

	now := e.now()
	rel := ResolveDestination(file, match.Condition, e.cfg.DateGroups, now)
	dest := filepath.Join(e.cfg.TargetDirectory, rel, file.Name)

	if filepath.Clean(dest) == filepath.Clean(path) {
		result.Outcome = types.OutcomeConflict
		result.Action = types.ActionSkip
		e.report(Event{Level: LevelInfo, Message: "Skipping file: already at destination", PassID: passID, Path: path, Rule: match.RuleName})
		return result
	}

	action := ResolveConflict(exists(dest), dest, e.cfg.Policy(), now)
	result.Action = action.Kind
	result.DestinationPath = action.Destination

	switch action.Kind {
	case types.ActionSkip:
		result.Outcome = types.OutcomeConflict
		result.DestinationPath = dest
		e.report(Event{Level: LevelInfo, Message: "Skipping file: " + action.Reason, PassID: passID, Path: path, Destination: dest, Rule: match.RuleName})
		return result
	case types.ActionOverwrite:
		e.report(Event{Level: LevelWarn, Message: "Overwriting existing file", PassID: passID, Path: path, Destination: dest, Rule: match.RuleName})
	}

	exec := Execute(path, action.Destination, e.dryRun)
	switch exec.Status {
	case types.StatusSimulated:
		result.Outcome = types.OutcomeSimulated
		e.report(Event{Level: LevelInfo, Message: moveMessage(action.Kind, true), PassID: passID, Path: path, Destination: action.Destination, Rule: match.RuleName})
	case types.StatusMoved:
		result.Outcome = types.OutcomeMoved
		e.report(Event{Level: LevelInfo, Message: moveMessage(action.Kind, false), PassID: passID, Path: path, Destination: action.Destination, Rule: match.RuleName})
	default:
		result.Outcome = types.OutcomeFailed
		result.Error = exec.Err
		e.report(Event{Level: LevelError, Message: "Failed to move file", PassID: passID, Path: path, Destination: action.Destination, Rule: match.RuleName, Err: exec.Err})
	}
	return result
}

func (e *Engine) report(ev Event) {
	e.reporter.Report(ev)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func moveMessage(k types.ActionKind, dryRun bool) string {
	var msg string
	switch k {
	case types.ActionRename:
		msg = "Moved file with new name"
	case types.ActionOverwrite:
		msg = "Moved file over existing file"
	default:
		msg = "Moved file"
	}
	if dryRun {
		return "[DRY RUN] " + msg
	}
	return msg
}
