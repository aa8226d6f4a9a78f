// Command filebotd is the headless form of 'filebot watch --schedule', meant
// to run under a service manager. The config path comes from FILEBOT_CONFIG
// or the default search locations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"filebot/internal/config"
	"filebot/internal/log"
	"filebot/internal/organize"
	"filebot/internal/watch"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "filebotd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("FILEBOT_CONFIG"))
	if err != nil {
		return err
	}
	defer log.Setup(cfg.LogFile, os.Getenv("FILEBOT_DEBUG") != "").Close()

	organizer, err := organize.CurrentOrganizerFactory(cfg)
	if err != nil {
		return err
	}

	runner := watch.NewRunner(organizer)
	runner.OnFinish(watch.LogPassResult)

	daemon, err := watch.NewDaemon(runner, cfg.TargetDirectory, cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	scheduler, err := watch.NewScheduler(runner, cfg.Schedule.Interval, true)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.LogWithFields(
		log.F("target", cfg.TargetDirectory),
		log.F("interval", cfg.Schedule.Interval.String()),
		log.F("dry_run", organizer.DryRun()),
	).Info("Starting filebot daemon")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = scheduler.Run(ctx)
	}()

	err = daemon.Run(ctx)
	stop()
	wg.Wait()
	if err != nil {
		return err
	}

	status := daemon.Status()
	log.LogWithFields(log.F("passes", status.Passes), log.F("files_processed", status.FilesProcessed)).Info("Daemon stopped")
	return nil
}
