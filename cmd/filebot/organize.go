package main

import (
	"context"
	"fmt"
	"io"

	"filebot/internal/config"
	"filebot/internal/errors"
	"filebot/internal/log"
	"filebot/internal/organize"
	"filebot/internal/tui"
	"filebot/internal/watch"
	"filebot/pkg/types"
)

// newOrganizer builds the organizer for cfg through the current factory.
func newOrganizer(cfg *config.Config, dryRun bool) (organize.Organizer, error) {
	return organize.CurrentOrganizerFactory(cfg, organize.WithDryRun(dryRun))
}

// runPass performs one pass and returns its summary.
func runPass(ctx context.Context, cfg *config.Config, dryRun bool) (types.Summary, error) {
	organizer, err := newOrganizer(cfg, dryRun)
	if err != nil {
		return types.Summary{}, err
	}
	return organizer.Run(ctx)
}

// runOnce performs a single pass and prints its summary to out.
func runOnce(ctx context.Context, out io.Writer, cfg *config.Config, dryRun bool) error {
	if dryRun {
		fmt.Fprintln(out, infoText("Dry run: planning organization for "+cfg.TargetDirectory))
	} else {
		fmt.Fprintln(out, infoText("Organizing "+cfg.TargetDirectory))
	}

	summary, err := runPass(ctx, cfg, dryRun)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(out, warningText("Interrupted."))
			fmt.Fprintln(out, tui.RenderSummary(summary))
			return nil
		}
		if errors.IsTargetMissing(err) {
			fmt.Fprintln(out, warningText("Check target_directory in "+cfg.Path()))
		}
		return err
	}

	fmt.Fprintln(out, tui.RenderSummary(summary))
	if dryRun {
		fmt.Fprintln(out, infoText("Dry run complete. No files were moved."))
	}
	return nil
}

// runSchedule runs a pass every cfg.Schedule.Interval until ctx ends.
func runSchedule(ctx context.Context, cfg *config.Config, dryRun bool) error {
	organizer, err := newOrganizer(cfg, dryRun)
	if err != nil {
		return err
	}

	runner := watch.NewRunner(organizer)
	runner.OnFinish(watch.LogPassResult)

	scheduler, err := watch.NewScheduler(runner, cfg.Schedule.Interval, false)
	if err != nil {
		return err
	}
	return scheduler.Run(ctx)
}

// runMenu shows the interactive menu. Log lines go to the log file only so
// they do not tear the menu.
func runMenu(ctx context.Context, cfg *config.Config, verbose bool) error {
	level := "info"
	if verbose {
		level = "debug"
	}
	log.Configure(log.WithOutput(io.Discard), log.WithFile(cfg.LogFile), log.WithLevel(level))

	return tui.Run(ctx, cfg.TargetDirectory, func(ctx context.Context, dryRun bool) (types.Summary, error) {
		return runPass(ctx, cfg, dryRun)
	})
}
