// Package logger provides structured logging for the FireWorld backend.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// LoggingConfig controls logger construction.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
	Output io.Writer
}

// Logger wraps zerolog with a field-accumulating API.
type Logger struct {
	zl     zerolog.Logger
	fields map[string]interface{}
	err    error
}

// New builds a logger from configuration.
func New(cfg LoggingConfig) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out}
	}

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil && cfg.Level != "" {
		level = parsed
	}

	zl := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// NewDefault returns an info-level JSON logger tagged with a component name.
func NewDefault(component string) *Logger {
	l := New(LoggingConfig{Level: "info"})
	return l.WithField("component", component)
}

// WithField returns a logger carrying an additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a logger carrying additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{zl: l.zl, fields: merged, err: l.err}
}

// WithError returns a logger carrying an error.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl, fields: l.fields, err: err}
}

func (l *Logger) event(ev *zerolog.Event) *zerolog.Event {
	for k, v := range l.fields {
		ev = ev.Interface(k, v)
	}
	if l.err != nil {
		ev = ev.Err(l.err)
	}
	return ev
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string) { l.event(l.zl.Debug()).Msg(msg) }

// Info logs a message at info level.
func (l *Logger) Info(msg string) { l.event(l.zl.Info()).Msg(msg) }

// Warn logs a message at warn level.
func (l *Logger) Warn(msg string) { l.event(l.zl.Warn()).Msg(msg) }

// Error logs a message at error level.
func (l *Logger) Error(msg string) { l.event(l.zl.Error()).Msg(msg) }

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) { l.event(l.zl.Debug()).Msgf(format, args...) }

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...interface{}) { l.event(l.zl.Info()).Msgf(format, args...) }

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...interface{}) { l.event(l.zl.Warn()).Msgf(format, args...) }

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...interface{}) { l.event(l.zl.Error()).Msgf(format, args...) }

// Fatalf logs a formatted message and exits.
func (l *Logger) Fatalf(format string, args ...interface{}) { l.event(l.zl.Fatal()).Msgf(format, args...) }
