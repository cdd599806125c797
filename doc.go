// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package microcompute is a minimal GPU general-purpose-compute library
// for Go.
//
// # Overview
//
// microcompute opens a compute device, compiles WGSL compute kernels,
// binds typed uniform values and storage buffers at numeric slots,
// dispatches 3-D workgroup grids, and transfers buffer memory with
// bounds checking. It is built on the GoGPU ecosystem: the default
// driver runs on gogpu/wgpu (Pure Go WebGPU over Vulkan), with a
// wgpu-native FFI driver behind the "rust" build tag and a CPU
// fallback for machines without a usable GPU.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/microcompute"
//	    _ "github.com/gogpu/microcompute/driver/native"
//	)
//
//	ctx, err := microcompute.NewContext("")
//	if err != nil { ... }
//	defer ctx.Release()
//
//	prog, err := ctx.NewProgram(kernelSource)
//	if err != nil { ... }
//	defer prog.Release()
//
//	buf, _ := ctx.NewBuffer(0, 4096)
//	defer buf.Release()
//	buf.Write(0, data)
//	prog.SetFloat("scale", 2.0)
//	prog.Dispatch(microcompute.IVec3{X: 10, Y: 1, Z: 1})
//	buf.Read(0, out) // blocks until the dispatch completes
//
// # Kernel conventions
//
// Kernels are WGSL. Storage buffers are declared at @group(0) with
// @binding(slot), where slot is the Buffer's binding number. Each
// uniform is a single var<uniform> declaration at @group(1), set by
// name through the Program setters. The entry point is "main" (or the
// first @compute function when no "main" exists).
//
// # Diagnostics
//
// Failures are reported through the per-context debug callback at
// severity levels Info through High, and mirrored to a package-level
// log/slog logger that is silent by default (see SetLogger). Failing
// operations additionally return false, nil, or 0 per their signature.
//
// # Drivers
//
// Drivers register themselves on import and are picked by priority
// (rust > native > software) unless WithDriver overrides the choice.
// The software driver validates kernels and moves memory but cannot
// execute; check Context.Capabilities().Compute before relying on
// Dispatch results.
package microcompute

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
