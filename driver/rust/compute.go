//go:build rust

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rust

import (
	"fmt"
	"time"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"

	"github.com/gogpu/microcompute/driver"
	"github.com/gogpu/microcompute/internal/wgsl"
)

const mapTimeout = 5 * time.Second

// program holds the per-kernel pipeline state. Pipelines use wgpu's
// automatic layout; the uniform bind group (group 1) is built once from
// GetBindGroupLayout(1), the storage group is rebuilt per dispatch.
type program struct {
	module *wgsl.Module
	entry  string

	shader   *wgpu.ShaderModule
	pipeline *wgpu.ComputePipeline

	uniformBufs  []*wgpu.Buffer // by location (reflection order)
	uniformGroup *wgpu.BindGroup
}

func (p *program) release() {
	if p.uniformGroup != nil {
		p.uniformGroup.Release()
	}
	for _, ub := range p.uniformBufs {
		ub.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.shader != nil {
		p.shader.Release()
	}
}

type buffer struct {
	buf  *wgpu.Buffer
	size uint64
}

// CompileProgram checks the source with naga (for a portable compiler
// log), reflects its binding interface, and builds the pipeline.
func (d *RustDriver) CompileProgram(source string) (driver.ProgramID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return driver.InvalidID, driver.ErrNotInitialized
	}

	if _, err := naga.Compile(source); err != nil {
		return driver.InvalidID, fmt.Errorf("rust: compile failed: %w", err)
	}
	module, err := wgsl.Reflect(source)
	if err != nil {
		return driver.InvalidID, fmt.Errorf("rust: %w", err)
	}
	if len(module.EntryPoints) == 0 {
		return driver.InvalidID, fmt.Errorf("rust: no @compute entry point")
	}
	entry := module.EntryPoints[0].Name
	if _, ok := module.EntryPoint("main"); ok {
		entry = "main"
	}

	p := &program{module: module, entry: entry}
	shader, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "mc_kernel",
		WGSL:  source,
	})
	if err != nil {
		return driver.InvalidID, fmt.Errorf("rust: create shader module: %w", err)
	}
	p.shader = shader

	pipeline, err := d.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:   "mc_pipeline",
		Compute: wgpu.ComputeState{Module: shader, EntryPoint: entry},
	})
	if err != nil {
		p.release()
		return driver.InvalidID, fmt.Errorf("rust: create compute pipeline: %w", err)
	}
	p.pipeline = pipeline

	if len(module.Uniforms) > 0 {
		if err := d.buildUniformGroup(p); err != nil {
			p.release()
			return driver.InvalidID, err
		}
	}

	d.nextID++
	id := driver.ProgramID(d.nextID)
	d.programs[id] = p
	return id, nil
}

func (d *RustDriver) buildUniformGroup(p *program) error {
	entries := make([]wgpu.BindGroupEntry, 0, len(p.module.Uniforms))
	for _, u := range p.module.Uniforms {
		size := uint64(u.Type.UniformSize())
		ub := d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "mc_uniform",
			Size:  size,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if ub == nil {
			return fmt.Errorf("rust: create uniform buffer %q failed", u.Name)
		}
		p.uniformBufs = append(p.uniformBufs, ub)
		// Uniforms read as zero until first set.
		d.queue.WriteBuffer(ub, 0, make([]byte, size))
		entries = append(entries, wgpu.BufferBindingEntry(u.Binding, ub, 0, size))
	}
	group := d.device.CreateBindGroupSimple(p.pipeline.GetBindGroupLayout(1), entries)
	if group == nil {
		return fmt.Errorf("rust: create uniform bind group failed")
	}
	p.uniformGroup = group
	return nil
}

// DestroyProgram releases a compiled kernel and its uniform buffers.
func (d *RustDriver) DestroyProgram(id driver.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[id]
	if !ok {
		return
	}
	p.release()
	delete(d.programs, id)
}

// UniformLocation resolves a uniform name to its reflection index.
func (d *RustDriver) UniformLocation(id driver.ProgramID, name string) (driver.UniformLocation, bool) {
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

// SetUniform writes the laid-out value into the uniform's backing buffer.
func (d *RustDriver) SetUniform(id driver.ProgramID, loc driver.UniformLocation, value driver.Uniform) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[id]
	if !ok {
		return fmt.Errorf("rust: program %d not found", id)
	}
	if loc < 0 || int(loc) >= len(p.module.Uniforms) {
		return fmt.Errorf("rust: invalid uniform location %d", loc)
	}
	decl := p.module.Uniforms[loc]
	cols, rows := value.Format.Dims()
	if uint8(cols) != decl.Type.Cols || uint8(rows) != decl.Type.Rows {
		return fmt.Errorf("rust: uniform %q is %dx%d, value is %dx%d",
			decl.Name, decl.Type.Cols, decl.Type.Rows, cols, rows)
	}
	if kind := value.Format.ScalarKind(); kind != decl.Type.Scalar {
		return fmt.Errorf("rust: uniform %q is %s, value is %s",
			decl.Name, decl.Type.Scalar, kind)
	}
	data := value.ColumnMajor()
	if uint32(len(data)) != decl.Type.DenseSize() {
		return fmt.Errorf("rust: uniform %q needs %d bytes, got %d",
			decl.Name, decl.Type.DenseSize(), len(data))
	}
	d.queue.WriteBuffer(p.uniformBufs[loc], 0, decl.Type.UniformLayout(data))
	return nil
}

// CreateBuffer allocates device storage usable as a compute binding and
// as a copy source/target.
func (d *RustDriver) CreateBuffer(size uint64) (driver.BufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return driver.InvalidID, driver.ErrNotInitialized
	}
	buf, err := d.createStorageLocked(size)
	if err != nil {
		return driver.InvalidID, err
	}
	d.nextID++
	id := driver.BufferID(d.nextID)
	d.buffers[id] = &buffer{buf: buf, size: size}
	return id, nil
}

func (d *RustDriver) createStorageLocked(size uint64) (*wgpu.Buffer, error) {
	if size == 0 || size > d.Capabilities().MaxBufferSize {
		return nil, fmt.Errorf("rust: invalid buffer size %d", size)
	}
	buf := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "mc_storage",
		Size:  size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc,
	})
	if buf == nil {
		return nil, fmt.Errorf("rust: create buffer failed")
	}
	return buf, nil
}

// DestroyBuffer releases a buffer.
func (d *RustDriver) DestroyBuffer(id driver.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return
	}
	b.buf.Release()
	delete(d.buffers, id)
}

// ResizeBuffer replaces the backing allocation; contents are invalidated.
func (d *RustDriver) ResizeBuffer(id driver.BufferID, size uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("rust: buffer %d not found", id)
	}
	buf, err := d.createStorageLocked(size)
	if err != nil {
		return err
	}
	b.buf.Release()
	b.buf = buf
	b.size = size
	return nil
}

// WriteBuffer uploads via the queue.
func (d *RustDriver) WriteBuffer(id driver.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("rust: buffer %d not found", id)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("rust: write of %d bytes at %d exceeds buffer size %d",
			len(data), offset, b.size)
	}
	d.queue.WriteBuffer(b.buf, offset, data)
	return nil
}

// ReadBuffer copies the range into a mappable staging buffer, maps it,
// and copies the bytes out. The map wait drains previously submitted
// work, so reads observe every prior dispatch.
func (d *RustDriver) ReadBuffer(id driver.BufferID, offset uint64, dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("rust: buffer %d not found", id)
	}
	size := uint64(len(dst))
	if offset+size > b.size {
		return fmt.Errorf("rust: read of %d bytes at %d exceeds buffer size %d",
			size, offset, b.size)
	}
	if size == 0 {
		return nil
	}

	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "mc_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if staging == nil {
		return fmt.Errorf("rust: create staging buffer failed")
	}
	defer staging.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(b.buf, offset, staging, 0, size)
	d.queue.Submit(encoder.Finish(nil))

	done := make(chan struct{})
	var mapErr error
	err := staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			mapErr = fmt.Errorf("rust: map failed: %v", status)
		}
		close(done)
	})
	if err != nil {
		return fmt.Errorf("rust: map async: %w", err)
	}

	deadline := time.After(mapTimeout)
	for {
		d.device.Poll(false, nil)
		select {
		case <-done:
			if mapErr != nil {
				return mapErr
			}
			mapped := staging.GetMappedRange(0, uint(size))
			if mapped == nil {
				staging.Unmap()
				return fmt.Errorf("rust: get mapped range failed")
			}
			copy(dst, mapped)
			staging.Unmap()
			return nil
		case <-deadline:
			return fmt.Errorf("rust: readback timed out after %v", mapTimeout)
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

// Dispatch binds the storage buffers named by the kernel, runs one
// compute pass, and blocks until the device finishes.
func (d *RustDriver) Dispatch(id driver.ProgramID, bindings map[uint32]driver.BufferID, x, y, z uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[id]
	if !ok {
		return fmt.Errorf("rust: program %d not found", id)
	}
	caps := d.Capabilities()
	if x == 0 || y == 0 || z == 0 {
		return fmt.Errorf("rust: workgroup count must be positive, got %dx%dx%d", x, y, z)
	}
	if x > caps.MaxWorkgroupsPerDimension || y > caps.MaxWorkgroupsPerDimension || z > caps.MaxWorkgroupsPerDimension {
		return fmt.Errorf("rust: workgroup count %dx%dx%d exceeds limit %d",
			x, y, z, caps.MaxWorkgroupsPerDimension)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(p.module.Storage))
	for _, sv := range p.module.Storage {
		bid, bound := bindings[sv.Binding]
		if !bound {
			return fmt.Errorf("rust: no buffer bound at slot %d (%s)", sv.Binding, sv.Name)
		}
		b, live := d.buffers[bid]
		if !live {
			return fmt.Errorf("rust: buffer at slot %d is destroyed", sv.Binding)
		}
		entries = append(entries, wgpu.BufferBindingEntry(sv.Binding, b.buf, 0, b.size))
	}
	storageGroup := d.device.CreateBindGroupSimple(p.pipeline.GetBindGroupLayout(0), entries)
	if storageGroup == nil {
		return fmt.Errorf("rust: create storage bind group failed")
	}
	defer storageGroup.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, storageGroup, nil)
	if p.uniformGroup != nil {
		pass.SetBindGroup(1, p.uniformGroup, nil)
	}
	pass.DispatchWorkgroups(x, y, z)
	pass.End()
	d.queue.Submit(encoder.Finish(nil))

	// Drain the queue so a following read observes the results.
	d.device.Poll(true, nil)
	return nil
}
