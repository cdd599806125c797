// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software provides the CPU fallback compute driver.
//
// Buffers live in host memory, kernels are compiled with naga (so
// compile diagnostics are real) and reflected for uniform resolution,
// but Dispatch does not execute: Capabilities().Compute is false and
// Dispatch fails with driver.ErrNotSupported after validating the
// pipeline state. The driver exists so that resource management, the
// uniform surface, and bounds-checked transfers remain usable and
// testable on machines with no working GPU.
package software

import (
	"fmt"
	"sync"

	"github.com/gogpu/naga"

	"github.com/gogpu/microcompute/driver"
	"github.com/gogpu/microcompute/internal/wgsl"
)

// maxBufferSize mirrors the default storage binding limit of WebGPU
// implementations; the host could allocate more, but exceeding the
// limit here would only defer the failure to a real driver.
const maxBufferSize = 1 << 30

// init registers the software driver on package import.
func init() {
	driver.Register(driver.Software, func() driver.Driver {
		return New()
	})
}

type program struct {
	module   *wgsl.Module
	uniforms [][]byte // by location, WGSL uniform layout
}

type buffer struct {
	data []byte
}

// SoftwareDriver is the CPU fallback implementation of driver.Driver.
type SoftwareDriver struct {
	mu          sync.Mutex
	initialized bool
	nextID      uint64
	programs    map[driver.ProgramID]*program
	buffers     map[driver.BufferID]*buffer
}

// New creates an unopened software driver.
func New() *SoftwareDriver {
	return &SoftwareDriver{}
}

// Name returns the driver identifier.
func (d *SoftwareDriver) Name() string { return driver.Software }

// Open accepts any device selector; there is no hardware to match.
func (d *SoftwareDriver) Open(device string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return nil
	}
	d.nextID = 1
	d.programs = make(map[driver.ProgramID]*program)
	d.buffers = make(map[driver.BufferID]*buffer)
	d.initialized = true
	return nil
}

// Close releases all resources.
func (d *SoftwareDriver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.programs = nil
	d.buffers = nil
	d.initialized = false
}

// Capabilities reports transfer-only capabilities.
func (d *SoftwareDriver) Capabilities() driver.Capabilities {
	return driver.Capabilities{
		Compute:                   false,
		MaxWorkgroup:              [3]uint32{256, 256, 64},
		MaxWorkgroupsPerDimension: 65535,
		MaxBufferSize:             maxBufferSize,
	}
}

// CompileProgram compiles the kernel with naga and reflects its
// binding interface. The naga error text is the compiler log.
func (d *SoftwareDriver) CompileProgram(source string) (driver.ProgramID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return driver.InvalidID, driver.ErrNotInitialized
	}

	if _, err := naga.Compile(source); err != nil {
		return driver.InvalidID, fmt.Errorf("software: compile failed: %w", err)
	}
	module, err := wgsl.Reflect(source)
	if err != nil {
		return driver.InvalidID, fmt.Errorf("software: %w", err)
	}
	if len(module.EntryPoints) == 0 {
		return driver.InvalidID, fmt.Errorf("software: no @compute entry point")
	}

	p := &program{
		module:   module,
		uniforms: make([][]byte, len(module.Uniforms)),
	}
	id := driver.ProgramID(d.nextID)
	d.nextID++
	d.programs[id] = p
	return id, nil
}

// DestroyProgram releases a compiled kernel.
func (d *SoftwareDriver) DestroyProgram(id driver.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.programs, id)
}

// UniformLocation resolves a uniform name to its table index.
func (d *SoftwareDriver) UniformLocation(id driver.ProgramID, name string) (driver.UniformLocation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[id]
	if !ok {
		return driver.InvalidLocation, false
	}
	for i, u := range p.module.Uniforms {
		if u.Name == name {
			return driver.UniformLocation(i), true
		}
	}
	return driver.InvalidLocation, false
}

// SetUniform validates the value against the declared type and stores
// its WGSL-layout bytes.
func (d *SoftwareDriver) SetUniform(id driver.ProgramID, loc driver.UniformLocation, value driver.Uniform) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[id]
	if !ok {
		return fmt.Errorf("software: program %d not found", id)
	}
	if loc < 0 || int(loc) >= len(p.module.Uniforms) {
		return fmt.Errorf("software: invalid uniform location %d", loc)
	}
	decl := p.module.Uniforms[loc]
	cols, rows := value.Format.Dims()
	if uint8(cols) != decl.Type.Cols || uint8(rows) != decl.Type.Rows {
		return fmt.Errorf("software: uniform %q is %dx%d, value is %dx%d",
			decl.Name, decl.Type.Cols, decl.Type.Rows, cols, rows)
	}
	if kind := value.Format.ScalarKind(); kind != decl.Type.Scalar {
		return fmt.Errorf("software: uniform %q is %s, value is %s",
			decl.Name, decl.Type.Scalar, kind)
	}
	data := value.ColumnMajor()
	if uint32(len(data)) != decl.Type.DenseSize() {
		return fmt.Errorf("software: uniform %q needs %d bytes, got %d",
			decl.Name, decl.Type.DenseSize(), len(data))
	}
	p.uniforms[loc] = decl.Type.UniformLayout(data)
	return nil
}

// CreateBuffer allocates host memory.
func (d *SoftwareDriver) CreateBuffer(size uint64) (driver.BufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return driver.InvalidID, driver.ErrNotInitialized
	}
	if size == 0 || size > maxBufferSize {
		return driver.InvalidID, fmt.Errorf("software: invalid buffer size %d", size)
	}
	id := driver.BufferID(d.nextID)
	d.nextID++
	d.buffers[id] = &buffer{data: make([]byte, size)}
	return id, nil
}

// DestroyBuffer releases a buffer.
func (d *SoftwareDriver) DestroyBuffer(id driver.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.buffers, id)
}

// ResizeBuffer reallocates; contents are invalidated.
func (d *SoftwareDriver) ResizeBuffer(id driver.BufferID, size uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("software: buffer %d not found", id)
	}
	if size == 0 || size > maxBufferSize {
		return fmt.Errorf("software: invalid buffer size %d", size)
	}
	b.data = make([]byte, size)
	return nil
}

// WriteBuffer copies into host storage.
func (d *SoftwareDriver) WriteBuffer(id driver.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("software: buffer %d not found", id)
	}
	if offset+uint64(len(data)) > uint64(len(b.data)) {
		return fmt.Errorf("software: write of %d bytes at %d exceeds buffer size %d",
			len(data), offset, len(b.data))
	}
	copy(b.data[offset:], data)
	return nil
}

// ReadBuffer copies out of host storage.
func (d *SoftwareDriver) ReadBuffer(id driver.BufferID, offset uint64, dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("software: buffer %d not found", id)
	}
	if offset+uint64(len(dst)) > uint64(len(b.data)) {
		return fmt.Errorf("software: read of %d bytes at %d exceeds buffer size %d",
			len(dst), offset, len(b.data))
	}
	copy(dst, b.data[offset:])
	return nil
}

// Dispatch validates the pipeline state, then reports that the software
// driver cannot execute kernels.
func (d *SoftwareDriver) Dispatch(id driver.ProgramID, bindings map[uint32]driver.BufferID, x, y, z uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[id]
	if !ok {
		return fmt.Errorf("software: program %d not found", id)
	}
	for _, sv := range p.module.Storage {
		bid, bound := bindings[sv.Binding]
		if !bound {
			return fmt.Errorf("software: no buffer bound at slot %d (%s)", sv.Binding, sv.Name)
		}
		if _, live := d.buffers[bid]; !live {
			return fmt.Errorf("software: buffer at slot %d is destroyed", sv.Binding)
		}
	}
	return fmt.Errorf("software: kernel execution: %w", driver.ErrNotSupported)
}
