// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import "errors"

// Common driver errors.
var (
	// ErrNotAvailable is returned when a requested driver is not available.
	ErrNotAvailable = errors.New("driver: not available")

	// ErrNotInitialized is returned when operations are called before Open.
	ErrNotInitialized = errors.New("driver: not initialized")

	// ErrNoDevice is returned when no adapter matches the device selector.
	ErrNoDevice = errors.New("driver: no matching compute device")

	// ErrNotSupported is returned for operations the driver cannot
	// perform (e.g. kernel execution on the software driver).
	ErrNotSupported = errors.New("driver: operation not supported")
)
