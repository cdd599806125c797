// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package microcompute

import (
	ctxpkg "context"
	"fmt"

	"github.com/gogpu/microcompute/driver"

	// The software driver is always available as the last-resort
	// fallback; hardware drivers are opt-in via their own imports.
	_ "github.com/gogpu/microcompute/driver/software"
)

// Context owns a connection to one compute device and the slot binding
// table shared by its Programs and Buffers.
//
// A Context and the resources created from it are intended for a single
// controlling goroutine; the public layer does no locking. Release the
// Context exactly once, after every Program and Buffer created from it
// has been released.
type Context struct {
	drv driver.Driver

	cb    DebugCallback
	cbArg any

	// bindings maps storage slots to the buffer most recently bound
	// there. Last writer wins.
	bindings map[uint32]driver.BufferID

	released bool
}

// NewContext selects a compute driver and opens the named device.
//
// The driver comes from WithDriver when given, otherwise from the
// registry in priority order (rust > native > software). The device
// string selects a physical adapter: empty or "auto" prefers discrete
// over integrated hardware, a decimal number selects by enumeration
// index, anything else is matched case-insensitively against the
// adapter name.
//
// On failure the error is also reported at DebugLevelHigh (install the
// callback with WithDebugCallback to observe it) and no device handle
// is leaked.
func NewContext(device string, opts ...ContextOption) (*Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Context{
		cb:       o.cb,
		cbArg:    o.cbArg,
		bindings: make(map[uint32]driver.BufferID),
	}

	drv := o.driver
	if drv == nil {
		drv = driver.Default()
	}
	if drv == nil {
		c.report(DebugLevelHigh, "no compute driver registered")
		return nil, driver.ErrNotAvailable
	}
	if err := drv.Open(device); err != nil {
		c.report(DebugLevelHigh, "device init failed: %v", err)
		return nil, err
	}
	c.drv = drv
	c.report(DebugLevelLow, "context ready: driver %s", drv.Name())
	return c, nil
}

// Release closes the device connection. Call exactly once, after all
// Programs and Buffers created from this Context have been released.
func (c *Context) Release() {
	if c == nil || c.released {
		return
	}
	c.drv.Close()
	c.bindings = nil
	c.released = true
}

// SetDebugCallback replaces the debug callback and its argument.
// Last writer wins; pass nil to silence callback reporting (slog
// mirroring is unaffected).
func (c *Context) SetDebugCallback(cb DebugCallback, arg any) {
	c.cb = cb
	c.cbArg = arg
}

// Capabilities reports what the open device can do. When Compute is
// false (software driver), Dispatch validates but does not execute.
func (c *Context) Capabilities() driver.Capabilities {
	return c.drv.Capabilities()
}

// DriverName returns the name of the driver backing this context.
func (c *Context) DriverName() string {
	return c.drv.Name()
}

// report delivers a debug message to the context callback and mirrors
// it to the package logger.
func (c *Context) report(level DebugLevel, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	Logger().Log(ctxpkg.Background(), level.slogLevel(), msg)
	if c.cb == nil {
		return
	}
	// A panicking callback must not abort the reporting operation.
	defer func() { _ = recover() }()
	c.cb(level, msg, c.cbArg)
}
