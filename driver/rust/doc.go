// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rust provides a compute driver backed by wgpu-native through
// the go-webgpu/webgpu FFI bindings.
//
// The driver is only built with the "rust" build tag:
//
//	go build -tags rust
//
// Without the tag a stub registers a nil factory so the registry falls
// through to the Pure Go native driver. With the tag, the wgpu_native
// shared library must be present at runtime; Open returns an error if
// it cannot be loaded.
package rust
