package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"filebot/internal/log"
)

// FileEvent is a file that appeared or changed in a watched directory.
type FileEvent struct {
	Path      string
	Info      os.FileInfo
	Timestamp time.Time
	Op        fsnotify.Op
}

// Watcher monitors directories for new or changed files using fsnotify.
// Only the directories themselves are watched, not their subdirectories.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	events    chan FileEvent
	stop      chan struct{}
	done      chan struct{}

	mu          sync.Mutex
	directories []string
	running     bool
	stopped     bool
}

// NewWatcher creates a directory watcher.
func NewWatcher() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		events:    make(chan FileEvent, 64),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// AddDirectory starts watching dir.
func (w *Watcher) AddDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, existing := range w.directories {
		if existing == dir {
			return nil
		}
	}
	w.directories = append(w.directories, dir)
	log.LogWithFields(log.F("directory", dir)).Info("Watching directory")
	return nil
}

// Directories returns the watched directories.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.directories))
	copy(out, w.directories)
	return out
}

// Events delivers file events. It is closed once the watcher stops.
func (w *Watcher) Events() <-chan FileEvent {
	return w.events
}

// Start begins delivering events. A watcher can be started once.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}
	if w.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	w.running = true

	go w.loop()
	log.Debug("Watcher started")
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.events)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	// Rename and Remove report the old name; only new content is interesting.
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		if !os.IsNotExist(err) {
			log.LogWithFields(log.F("file", event.Name), log.F("error", err)).Warn("Error stating file")
		}
		return
	}
	if info.IsDir() {
		return
	}

	fe := FileEvent{
		Path:      filepath.Clean(event.Name),
		Info:      info,
		Timestamp: time.Now(),
		Op:        event.Op,
	}

	select {
	case w.events <- fe:
	case <-w.stop:
	default:
		log.LogWithFields(log.F("file", event.Name)).Warn("Event channel is full, dropped event")
	}
}

// Stop halts the watcher and waits for its event loop to exit. It is safe to
// call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	wasRunning := w.running
	w.running = false
	close(w.stop)
	w.mu.Unlock()

	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	if wasRunning {
		<-w.done
	} else {
		close(w.events)
	}
	log.Debug("Watcher stopped")
}
