// Package log wraps logrus with the small structured-logging API used across
// filebot: field helpers, error-aware entries and a configurable package logger.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"filebot/internal/errors"
)

var logger = NewLogger()

// Field is a single structured key/value attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger is a logrus entry plus the file handle it may own.
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

type options struct {
	out   io.Writer
	file  string
	json  bool
	level logrus.Level
}

// Option configures a Logger.
type Option func(*options)

// WithOutput sends log lines to w.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithFile appends log lines to path in addition to the output writer.
// Parent directories are created as needed.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithJSON switches to one JSON object per line.
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithLevel sets the minimum level ("debug", "info", "warn", "error").
// Unknown names leave the default in place.
func WithLevel(level string) Option {
	return func(o *options) {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			o.level = lvl
		}
	}
}

// NewLogger creates a logger writing text lines to stderr at info level unless
// options say otherwise. If a log file cannot be opened, the logger falls back
// to the output writer alone and reports the problem there.
func NewLogger(opts ...Option) *Logger {
	o := options{out: os.Stderr, level: logrus.InfoLevel}
	for _, opt := range opts {
		opt(&o)
	}

	base := logrus.New()
	base.SetLevel(o.level)
	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   true,
		})
	}

	l := &Logger{}
	out := o.out
	var fileErr error
	if o.file != "" {
		l.file, fileErr = openLogFile(o.file)
		if fileErr == nil {
			out = io.MultiWriter(o.out, l.file)
		}
	}
	base.SetOutput(out)
	l.entry = logrus.NewEntry(base)

	if fileErr != nil {
		l.With(F("path", o.file), F("error", fileErr)).Warn("Failed to open log file, logging to console only")
	}
	return l
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// Close releases the log file, if the logger owns one.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// With returns a child logger carrying the given fields.
func (l *Logger) With(fields ...Field) *Logger {
	lf := make(logrus.Fields, len(fields))
	for _, f := range fields {
		lf[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(lf), file: l.file}
}

// WithError returns a child logger describing err, including its kind and the
// path, parameter or rule name carried by application errors.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l.With(F("error", "<nil>"))
	}

	fields := []Field{F("error", err.Error()), F("error_kind", int(errors.KindOf(err)))}

	var fileErr *errors.FileError
	var configErr *errors.ConfigError
	var ruleErr *errors.RuleError
	switch {
	case errors.As(err, &fileErr) && fileErr.Path() != "":
		fields = append(fields, F("path", fileErr.Path()))
	case errors.As(err, &configErr) && configErr.Param() != "":
		fields = append(fields, F("param", configErr.Param()))
	case errors.As(err, &ruleErr) && ruleErr.RuleName() != "":
		fields = append(fields, F("rule_name", ruleErr.RuleName()))
	}
	return l.With(fields...)
}

// IsDebug reports whether debug lines are emitted.
func (l *Logger) IsDebug() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.DebugLevel)
}

func (l *Logger) Debug(msg string)                      { l.entry.Debug(msg) }
func (l *Logger) Debugf(format string, a ...interface{}) { l.entry.Debugf(format, a...) }
func (l *Logger) Info(msg string)                       { l.entry.Info(msg) }
func (l *Logger) Infof(format string, a ...interface{})  { l.entry.Infof(format, a...) }
func (l *Logger) Warn(msg string)                       { l.entry.Warn(msg) }
func (l *Logger) Warnf(format string, a ...interface{})  { l.entry.Warnf(format, a...) }
func (l *Logger) Error(msg string)                      { l.entry.Error(msg) }
func (l *Logger) Errorf(format string, a ...interface{}) { l.entry.Errorf(format, a...) }

// Configure replaces the package logger.
func Configure(opts ...Option) {
	old := logger
	logger = NewLogger(opts...)
	_ = old.Close()
}

// Default returns the package logger.
func Default() *Logger {
	return logger
}

// SetDebug toggles debug output on the package logger.
func SetDebug(debug bool) {
	if debug {
		logger.entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.entry.Logger.SetLevel(logrus.InfoLevel)
	}
}

// Setup builds the run logger from the config's log file and the verbosity
// flag, and installs it as the package logger.
func Setup(logFile string, verbose bool) *Logger {
	level := "info"
	if verbose {
		level = "debug"
	}
	opts := []Option{WithOutput(os.Stderr), WithLevel(level)}
	if logFile != "" {
		opts = append(opts, WithFile(logFile))
	}
	Configure(opts...)
	return logger
}

// LogWithFields returns the package logger with fields attached.
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the package logger describing err.
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

// LogError logs err at error level with msg.
func LogError(err error, msg string) {
	logger.WithError(err).Error(msg)
}

func Debug(msg string)                      { logger.Debug(msg) }
func Debugf(format string, a ...interface{}) { logger.Debugf(format, a...) }
func Info(msg string)                       { logger.Info(msg) }
func Infof(format string, a ...interface{})  { logger.Infof(format, a...) }
func Warn(msg string)                       { logger.Warn(msg) }
func Warnf(format string, a ...interface{})  { logger.Warnf(format, a...) }
func Error(msg string)                      { logger.Error(msg) }
func Errorf(format string, a ...interface{}) { logger.Errorf(format, a...) }
