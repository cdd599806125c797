// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package microcompute

import (
	"fmt"
	"log/slog"
)

// DebugLevel is the severity of a debug report.
type DebugLevel int32

// Debug severity levels, in increasing order.
const (
	// DebugLevelInfo is verbose driver diagnostics.
	DebugLevelInfo DebugLevel = iota
	// DebugLevelLow is routine lifecycle information.
	DebugLevelLow
	// DebugLevelMedium is a non-fatal problem.
	DebugLevelMedium
	// DebugLevelHigh is an operation failure.
	DebugLevelHigh
)

// String returns the level name.
func (l DebugLevel) String() string {
	switch l {
	case DebugLevelInfo:
		return "INFO"
	case DebugLevelLow:
		return "LOW"
	case DebugLevelMedium:
		return "MEDIUM"
	case DebugLevelHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("DebugLevel(%d)", int32(l))
	}
}

// DebugCallback receives debug reports from a Context. It is invoked
// synchronously on the goroutine performing the failing operation, with
// the arg passed to SetDebugCallback. The message must not be retained
// past the call.
type DebugCallback func(level DebugLevel, message string, arg any)

// DefaultDebugCallback prints reports to stdout. If arg is a
// *DebugLevel it acts as a threshold: only reports at or above it are
// printed. A nil arg prints everything.
func DefaultDebugCallback(level DebugLevel, message string, arg any) {
	if min, ok := arg.(*DebugLevel); ok && min != nil && level < *min {
		return
	}
	fmt.Printf("%s: %s\n", level, message)
}

// slogLevel maps a debug severity to the mirrored slog level.
func (l DebugLevel) slogLevel() slog.Level {
	switch l {
	case DebugLevelInfo:
		return slog.LevelDebug
	case DebugLevelLow:
		return slog.LevelInfo
	case DebugLevelMedium:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
