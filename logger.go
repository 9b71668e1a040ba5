package bitwalk

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the default logger. Accessed atomically so that
// SetLogger can be called concurrently with engines being constructed.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the default logger for engines constructed after
// the call. By default bitwalk produces no log output. Pass nil to restore
// the silent default. A single engine can be given its own logger with
// WithLogger.
//
// Log levels used by bitwalk:
//   - [slog.LevelDebug]: passes, ticks, tile creation and eviction
//   - [slog.LevelWarn]: non-fatal issues (closing an evicted surface failed)
//   - [slog.LevelError]: a pass failed and the engine halted
//
// Example:
//
//	bitwalk.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current default logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
