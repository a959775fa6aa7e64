package mandelbench

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

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for mandelbench and its sub-packages.
// By default no log output is produced. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by mandelbench:
//   - [slog.LevelDebug]: internal diagnostics (buffer sizes, dispatch shapes)
//   - [slog.LevelInfo]: lifecycle events (GPU adapter selected, render done)
//   - [slog.LevelWarn]: non-fatal issues (offload failure, resource release)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// Propagate to the device offloader if it supports logging.
	offloadMu.RLock()
	o := offloader
	offloadMu.RUnlock()
	if o != nil {
		propagateLogger(o, l)
	}
}

// Logger returns the current logger used by mandelbench.
// Sub-packages (gpu/, internal/gpu/) call this to share the same logger
// configuration without introducing import cycles.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by offloaders that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to an offloader if it implements the
// loggerSetter interface. Called from both SetLogger and RegisterOffloader
// so the offloader always has the current logger.
func propagateLogger(o Offloader, l *slog.Logger) {
	if ls, ok := o.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
