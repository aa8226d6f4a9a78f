package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"filebot/internal/errors"
	"filebot/internal/log"
)

// DaemonStatus represents the current status of the daemon
type DaemonStatus struct {
	Running        bool      // Whether the daemon is currently active
	Directory      string    // Directory being watched
	LastActivity   time.Time // Time of last file activity
	Passes         int       // Passes triggered by file activity
	FilesProcessed int       // Files moved or simulated by those passes
}

// Daemon runs an organization pass whenever files appear in the target
// directory. Bursts of events are debounced into a single pass, and passes
// go through the shared Runner so they never overlap with scheduled ones.
type Daemon struct {
	runner    *Runner
	watcher   *Watcher
	debouncer *Debouncer
	dir       string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.RWMutex
	running      bool
	lastActivity time.Time
	passes       int
	processed    int
}

// NewDaemon creates a daemon watching dir. A pass starts once no new event
// has arrived for the debounce period.
func NewDaemon(runner *Runner, dir string, debounce time.Duration) (*Daemon, error) {
	watcher, err := NewWatcher()
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		runner:  runner,
		watcher: watcher,
		dir:     dir,
	}
	d.debouncer = NewDebouncer(debounce, d.organize)
	return d, nil
}

// Start initiates the daemon process
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return fmt.Errorf("daemon is already running")
	}

	if err := d.watcher.AddDirectory(d.dir); err != nil {
		d.watcher.Stop()
		return errors.NewFileError("cannot watch target directory", d.dir, errors.TargetMissing, err)
	}
	if err := d.watcher.Start(); err != nil {
		return fmt.Errorf("error starting watcher: %w", err)
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.running = true

	d.wg.Add(1)
	go d.processEvents()
	return nil
}

// Stop halts the daemon process and waits for an in-flight pass to finish.
func (d *Daemon) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.cancel()
	d.mu.Unlock()

	d.debouncer.CancelAll()
	d.watcher.Stop()
	d.wg.Wait()
}

// Run starts the daemon and blocks until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	log.LogWithFields(log.F("directory", d.dir)).Info("Watching for new files. Press Ctrl+C to exit.")
	<-ctx.Done()
	d.Stop()
	return nil
}

// Status returns the current status of the daemon
func (d *Daemon) Status() DaemonStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return DaemonStatus{
		Running:        d.running,
		Directory:      d.dir,
		LastActivity:   d.lastActivity,
		Passes:         d.passes,
		FilesProcessed: d.processed,
	}
}

// processEvents handles file events from the watcher
func (d *Daemon) processEvents() {
	defer d.wg.Done()
	for ev := range d.watcher.Events() {
		d.mu.Lock()
		d.lastActivity = ev.Timestamp
		d.mu.Unlock()

		log.LogWithFields(log.F("file", ev.Path), log.F("op", ev.Op.String())).Debug("File activity")
		d.debouncer.Add(d.dir)
	}
}

// organize runs a pass once activity has settled.
func (d *Daemon) organize(string) {
	d.mu.Lock()
	if !d.running || d.ctx.Err() != nil {
		d.mu.Unlock()
		return
	}
	ctx := d.ctx
	d.wg.Add(1)
	d.mu.Unlock()
	defer d.wg.Done()

	summary, err := d.runner.Trigger(ctx, "watch")
	switch {
	case errors.Is(err, ErrPassRunning):
		// Files that arrived during the running pass may not be in its
		// snapshot, so try again after another quiet period.
		d.debouncer.Add(d.dir)
		return
	case err != nil:
		if ctx.Err() == nil {
			log.LogWithError(err).Error("Error during watch-triggered organization")
		}
		return
	}

	d.mu.Lock()
	d.passes++
	d.processed += summary.Processed
	d.mu.Unlock()
}
