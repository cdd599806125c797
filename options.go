// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package microcompute

import "github.com/gogpu/microcompute/driver"

// ContextOption configures a Context during creation.
// Use functional options to customize Context behavior.
//
// Example:
//
//	// Default driver selection (registry priority)
//	ctx, err := microcompute.NewContext("")
//
//	// Explicit driver (dependency injection)
//	ctx, err := microcompute.NewContext("", microcompute.WithDriver(myDriver))
type ContextOption func(*contextOptions)

// contextOptions holds optional configuration for Context creation.
type contextOptions struct {
	driver driver.Driver
	cb     DebugCallback
	cbArg  any
}

// defaultOptions returns the default context options.
func defaultOptions() contextOptions {
	return contextOptions{
		driver: nil, // Will be set from the registry if nil
	}
}

// WithDriver sets an explicit compute driver for the Context, bypassing
// registry priority selection. Use this for dependency injection of a
// specific or custom driver.
//
// Example:
//
//	d := driver.Get(driver.Software)
//	ctx, err := microcompute.NewContext("", microcompute.WithDriver(d))
func WithDriver(d driver.Driver) ContextOption {
	return func(o *contextOptions) {
		o.driver = d
	}
}

// WithDebugCallback installs the debug callback before the device is
// opened, so initialization failures are reported through it. The same
// pair can be changed later with SetDebugCallback.
//
// Example:
//
//	threshold := microcompute.DebugLevelMedium
//	ctx, err := microcompute.NewContext("",
//	    microcompute.WithDebugCallback(microcompute.DefaultDebugCallback, &threshold))
func WithDebugCallback(cb DebugCallback, arg any) ContextOption {
	return func(o *contextOptions) {
		o.cb = cb
		o.cbArg = arg
	}
}
