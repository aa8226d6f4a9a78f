package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"filebot/internal/watch"
)

// NewWatchCmd creates the watch command
func NewWatchCmd(opts *rootOptions) *cobra.Command {
	var withSchedule bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Organize whenever new files appear in the target directory",
		Long: `Watch the target directory and run a pass once new files stop arriving
for watch.debounce. With --schedule, passes also run every schedule.interval.
Passes never overlap.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			dryRun := opts.effectiveDryRun()

			organizer, err := newOrganizer(cfg, dryRun)
			if err != nil {
				return err
			}
			runner := watch.NewRunner(organizer)
			runner.OnFinish(watch.LogPassResult)

			daemon, err := watch.NewDaemon(runner, cfg.TargetDirectory, cfg.Watch.Debounce)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, infoText("Watching "+cfg.TargetDirectory))
			if dryRun {
				fmt.Fprintln(out, warningText("Running in dry-run mode"))
			}

			var wg sync.WaitGroup
			if withSchedule {
				scheduler, err := watch.NewScheduler(runner, cfg.Schedule.Interval, false)
				if err != nil {
					return err
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = scheduler.Run(ctx)
				}()
			}

			err = daemon.Run(ctx)
			stop()
			wg.Wait()
			if err != nil {
				return err
			}

			status := daemon.Status()
			fmt.Fprintf(out, "%s %d passes, %d files processed\n",
				successText("Stopped watching."), status.Passes, status.FilesProcessed)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&withSchedule, "schedule", "s", false, "also run a pass every schedule.interval")
	return cmd
}
