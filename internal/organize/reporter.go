package organize

import (
	"sync"

	"filebot/internal/log"
)

// Level is the severity of an Event.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one observable step of an organization pass.
type Event struct {
	Level       Level
	Message     string
	PassID      string
	Path        string
	Destination string
	Rule        string
	Err         error
}

// Reporter receives the events of a pass. The engine never logs on its own;
// everything observable goes through its Reporter.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// Discard drops every event.
var Discard Reporter = ReporterFunc(func(Event) {})

// LogReporter writes events to a structured logger.
type LogReporter struct {
	logger *log.Logger
}

// NewLogReporter returns a reporter for l, or for the package logger when l is nil.
func NewLogReporter(l *log.Logger) *LogReporter {
	return &LogReporter{logger: l}
}

// Report implements Reporter.
func (r *LogReporter) Report(e Event) {
	l := r.logger
	if l == nil {
		l = log.Default()
	}

	var fields []log.Field
	if e.PassID != "" {
		fields = append(fields, log.F("pass", e.PassID))
	}
	if e.Path != "" {
		fields = append(fields, log.F("file", e.Path))
	}
	if e.Destination != "" {
		fields = append(fields, log.F("destination", e.Destination))
	}
	if e.Rule != "" {
		fields = append(fields, log.F("rule", e.Rule))
	}
	entry := l.With(fields...)
	if e.Err != nil {
		entry = entry.WithError(e.Err)
	}

	switch e.Level {
	case LevelDebug:
		entry.Debug(e.Message)
	case LevelWarn:
		entry.Warn(e.Message)
	case LevelError:
		entry.Error(e.Message)
	default:
		entry.Info(e.Message)
	}
}

// Recorder keeps every event in memory, in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Report implements Reporter.
func (r *Recorder) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// AtLevel returns the recorded events of the given level.
func (r *Recorder) AtLevel(level Level) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
