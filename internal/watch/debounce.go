package watch

import (
	"sync"
	"time"
)

// Debouncer delays a callback until events for a key stop arriving.
// Each new event for a pending key restarts its timer, so a burst of writes
// to one file produces a single callback.
type Debouncer struct {
	delay    time.Duration
	callback func(key string)

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewDebouncer creates a Debouncer that calls callback delay after the last
// event for a key.
func NewDebouncer(delay time.Duration, callback func(key string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
		pending:  make(map[string]*time.Timer),
	}
}

// Add records an event for key and (re)starts its timer.
func (d *Debouncer) Add(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.pending[key]; ok {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A newer Add replaced this timer; let that one fire instead.
		if d.pending[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()

		if d.callback != nil {
			d.callback(key)
		}
	})
	d.pending[key] = timer
}

// Cancel forgets a pending key. It is a no-op for unknown keys.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.pending[key]; ok {
		timer.Stop()
		delete(d.pending, key)
	}
}

// CancelAll forgets every pending key.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, timer := range d.pending {
		timer.Stop()
		delete(d.pending, key)
	}
}

// Pending returns the number of keys waiting for their timer.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// IsPending reports whether key is waiting for its timer.
func (d *Debouncer) IsPending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}
