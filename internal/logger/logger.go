// Package logger provides the run logger for lia-sync.
// Messages are printf-formatted and written as structured slog records,
// so cron output can be grepped by level and run id. Debug messages are
// only emitted when debug mode is enabled via the --debug flag.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger is a levelled printf logger. A nil *Logger discards everything.
type Logger struct {
	slog  *slog.Logger
	level *slog.LevelVar
}

// New creates a logger writing text records to w.
func New(w io.Writer, debug bool) *Logger {
	if w == nil {
		w = os.Stderr
	}
	level := new(slog.LevelVar)
	l := &Logger{
		slog:  slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
		level: level,
	}
	l.SetDebug(debug)
	return l
}

// Nop returns a logger that discards all output. Useful for testing.
func Nop() *Logger {
	return New(io.Discard, false)
}

// SetDebug enables or disables debug messages.
func (l *Logger) SetDebug(debug bool) {
	if l == nil {
		return
	}
	if debug {
		l.level.Set(slog.LevelDebug)
	} else {
		l.level.Set(slog.LevelInfo)
	}
}

// IsDebug returns true if debug messages are emitted.
func (l *Logger) IsDebug() bool {
	return l != nil && l.level.Level() <= slog.LevelDebug
}

// With returns a logger that adds the given attributes to every record.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{slog: l.slog.With(args...), level: l.level}
}

// Debug prints a message if debug mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	l.log(slog.LevelDebug, format, args)
}

// Info prints an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.log(slog.LevelInfo, format, args)
}

// Warn prints a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.log(slog.LevelWarn, format, args)
}

// Error prints an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(slog.LevelError, format, args)
}

// Section marks the start of a pipeline phase.
func (l *Logger) Section(name string) {
	if l == nil {
		return
	}
	l.slog.Info("=== "+name+" ===", "phase", name)
}

func (l *Logger) log(level slog.Level, format string, args []any) {
	if l == nil {
		return
	}
	ctx := context.Background()
	if !l.slog.Enabled(ctx, level) {
		return
	}
	l.slog.Log(ctx, level, fmt.Sprintf(format, args...))
}
