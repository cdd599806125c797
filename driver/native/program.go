// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/microcompute/driver"
	"github.com/gogpu/microcompute/internal/wgsl"
)

// program holds the per-kernel pipeline state.
//
// The storage bind group (group 0) is rebuilt on every dispatch because
// buffers rebind and resize; the uniform bind group (group 1) is built
// once here since uniform backing buffers never move.
type program struct {
	module *wgsl.Module
	entry  string

	shader     hal.ShaderModule
	layouts    []hal.BindGroupLayout // group 0 (+ group 1 when uniforms exist)
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	uniformBufs  []hal.Buffer // by location (reflection order)
	uniformGroup hal.BindGroup
}

// CompileProgram checks the source with naga, reflects its binding
// interface, and builds the full compute pipeline.
func (d *NativeDriver) CompileProgram(source string) (driver.ProgramID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return driver.InvalidID, driver.ErrNotInitialized
	}

	// naga first: its error text is the compiler log, and reflection
	// only has to handle sources that compile.
	if _, err := naga.Compile(source); err != nil {
		return driver.InvalidID, fmt.Errorf("native: compile failed: %w", err)
	}
	module, err := wgsl.Reflect(source)
	if err != nil {
		return driver.InvalidID, fmt.Errorf("native: %w", err)
	}
	if len(module.EntryPoints) == 0 {
		return driver.InvalidID, fmt.Errorf("native: no @compute entry point")
	}
	entry := module.EntryPoints[0].Name
	if _, ok := module.EntryPoint("main"); ok {
		entry = "main"
	}

	p := &program{module: module, entry: entry}
	if err := d.buildPipeline(p, source); err != nil {
		d.destroyProgramLocked(p)
		return driver.InvalidID, err
	}

	id := driver.ProgramID(d.nextID.Add(1))
	d.programs[id] = p
	return id, nil
}

func (d *NativeDriver) buildPipeline(p *program, source string) error {
	shader, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "mc_kernel",
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return fmt.Errorf("native: create shader module: %w", err)
	}
	p.shader = shader

	// Group 0: storage buffers, binding index = public slot number.
	storageEntries := make([]gputypes.BindGroupLayoutEntry, 0, len(p.module.Storage))
	for _, sv := range p.module.Storage {
		typ := gputypes.BufferBindingTypeStorage
		if sv.ReadOnly {
			typ = gputypes.BufferBindingTypeReadOnlyStorage
		}
		storageEntries = append(storageEntries, gputypes.BindGroupLayoutEntry{
			Binding:    sv.Binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: typ},
		})
	}
	storageLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "mc_storage_layout",
		Entries: storageEntries,
	})
	if err != nil {
		return fmt.Errorf("native: create storage bind group layout: %w", err)
	}
	p.layouts = append(p.layouts, storageLayout)

	// Group 1: one uniform buffer per reflected uniform variable.
	if len(p.module.Uniforms) > 0 {
		if err := d.buildUniformGroup(p); err != nil {
			return err
		}
	}

	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "mc_pipe_layout",
		BindGroupLayouts: p.layouts,
	})
	if err != nil {
		return fmt.Errorf("native: create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "mc_pipeline",
		Layout:  p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: p.entry},
	})
	if err != nil {
		return fmt.Errorf("native: create compute pipeline: %w", err)
	}
	p.pipeline = pipeline
	return nil
}

func (d *NativeDriver) buildUniformGroup(p *program) error {
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(p.module.Uniforms))
	for _, u := range p.module.Uniforms {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    u.Binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}
	layout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "mc_uniform_layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("native: create uniform bind group layout: %w", err)
	}
	p.layouts = append(p.layouts, layout)

	bgEntries := make([]gputypes.BindGroupEntry, 0, len(p.module.Uniforms))
	for _, u := range p.module.Uniforms {
		size := uint64(u.Type.UniformSize())
		ub, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "mc_uniform",
			Size:  size,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("native: create uniform buffer %q: %w", u.Name, err)
		}
		p.uniformBufs = append(p.uniformBufs, ub)
		// Uniforms read as zero until first set.
		d.queue.WriteBuffer(ub, 0, make([]byte, size))
		bgEntries = append(bgEntries, gputypes.BindGroupEntry{
			Binding:  u.Binding,
			Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: size},
		})
	}
	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "mc_uniform_bind",
		Layout:  layout,
		Entries: bgEntries,
	})
	if err != nil {
		return fmt.Errorf("native: create uniform bind group: %w", err)
	}
	p.uniformGroup = group
	return nil
}

// DestroyProgram releases a compiled kernel and its uniform buffers.
func (d *NativeDriver) DestroyProgram(id driver.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[id]
	if !ok {
		return
	}
	d.destroyProgramLocked(p)
	delete(d.programs, id)
}

func (d *NativeDriver) destroyProgramLocked(p *program) {
	if p.uniformGroup != nil {
		d.device.DestroyBindGroup(p.uniformGroup)
	}
	for _, ub := range p.uniformBufs {
		d.device.DestroyBuffer(ub)
	}
	if p.pipeline != nil {
		d.device.DestroyComputePipeline(p.pipeline)
	}
	if p.pipeLayout != nil {
		d.device.DestroyPipelineLayout(p.pipeLayout)
	}
	for _, l := range p.layouts {
		d.device.DestroyBindGroupLayout(l)
	}
	if p.shader != nil {
		d.device.DestroyShaderModule(p.shader)
	}
}

// UniformLocation resolves a uniform name to its reflection index.
func (d *NativeDriver) UniformLocation(id driver.ProgramID, name string) (driver.UniformLocation, bool) {
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

// SetUniform validates the value shape against the declaration and
// writes the laid-out bytes into the uniform's backing buffer.
func (d *NativeDriver) SetUniform(id driver.ProgramID, loc driver.UniformLocation, value driver.Uniform) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[id]
	if !ok {
		return fmt.Errorf("native: program %d not found", id)
	}
	if loc < 0 || int(loc) >= len(p.module.Uniforms) {
		return fmt.Errorf("native: invalid uniform location %d", loc)
	}
	decl := p.module.Uniforms[loc]
	cols, rows := value.Format.Dims()
	if uint8(cols) != decl.Type.Cols || uint8(rows) != decl.Type.Rows {
		return fmt.Errorf("native: uniform %q is %dx%d, value is %dx%d",
			decl.Name, decl.Type.Cols, decl.Type.Rows, cols, rows)
	}
	if kind := value.Format.ScalarKind(); kind != decl.Type.Scalar {
		return fmt.Errorf("native: uniform %q is %s, value is %s",
			decl.Name, decl.Type.Scalar, kind)
	}
	data := value.ColumnMajor()
	if uint32(len(data)) != decl.Type.DenseSize() {
		return fmt.Errorf("native: uniform %q needs %d bytes, got %d",
			decl.Name, decl.Type.DenseSize(), len(data))
	}
	d.queue.WriteBuffer(p.uniformBufs[loc], 0, decl.Type.UniformLayout(data))
	return nil
}
