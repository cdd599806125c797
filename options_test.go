// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package microcompute

import (
	"errors"
	"testing"
)

func TestWithDriver(t *testing.T) {
	drv := newMockDriver()
	ctx, err := NewContext("", WithDriver(drv))
	if err != nil {
		t.Fatalf("NewContext() error: %v", err)
	}
	defer ctx.Release()
	if ctx.DriverName() != "mock" {
		t.Errorf("DriverName() = %q, want mock", ctx.DriverName())
	}
}

func TestWithDebugCallbackSeesInitReports(t *testing.T) {
	// The callback is installed before Open, so the failure to open is
	// observable.
	drv := newMockDriver()
	drv.openErr = errors.New("mock: init refused")
	rec := &reportRecorder{}
	if _, err := NewContext("", WithDriver(drv), WithDebugCallback(rec.callback, nil)); err == nil {
		t.Fatal("NewContext succeeded with a failing Open")
	}
	if rec.count(DebugLevelHigh) == 0 {
		t.Error("init failure did not reach the callback")
	}
}

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.driver != nil || o.cb != nil || o.cbArg != nil {
		t.Errorf("defaultOptions() = %+v, want zero values", o)
	}
}
