// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package microcompute

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

// SetLogger configures the logger for microcompute.
// By default, microcompute produces no log output. Call SetLogger to
// enable logging. Debug reports are mirrored to the logger regardless
// of the per-context debug callback:
//   - [slog.LevelDebug]: DebugLevelInfo reports (driver diagnostics)
//   - [slog.LevelInfo]: DebugLevelLow reports (lifecycle events)
//   - [slog.LevelWarn]: DebugLevelMedium reports
//   - [slog.LevelError]: DebugLevelHigh reports (operation failures)
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically. Pass nil to disable logging (restore default silent
// behavior).
//
// Example:
//
//	// Enable info-level logging to stderr:
//	microcompute.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	microcompute.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by microcompute.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
