//go:build !rust

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rust

import "github.com/gogpu/microcompute/driver"

// init registers a nil-returning factory when the rust tag is not set.
// This allows code to compile without wgpu-native while still letting
// driver.Get(driver.Rust) return nil gracefully; driver.Default skips
// nil factories and falls through to the native driver.
func init() {
	driver.Register(driver.Rust, func() driver.Driver {
		return nil
	})
}
