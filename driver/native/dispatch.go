// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/microcompute/driver"
)

// Dispatch binds the storage buffers named by the kernel, runs one
// compute pass over the workgroup grid, and blocks until the device
// signals completion.
func (d *NativeDriver) Dispatch(id driver.ProgramID, bindings map[uint32]driver.BufferID, x, y, z uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.programs[id]
	if !ok {
		return fmt.Errorf("native: program %d not found", id)
	}
	caps := d.Capabilities()
	if x == 0 || y == 0 || z == 0 {
		return fmt.Errorf("native: workgroup count must be positive, got %dx%dx%d", x, y, z)
	}
	if x > caps.MaxWorkgroupsPerDimension || y > caps.MaxWorkgroupsPerDimension || z > caps.MaxWorkgroupsPerDimension {
		return fmt.Errorf("native: workgroup count %dx%dx%d exceeds limit %d",
			x, y, z, caps.MaxWorkgroupsPerDimension)
	}

	storageGroup, err := d.buildStorageGroupLocked(p, bindings)
	if err != nil {
		return err
	}
	defer d.device.DestroyBindGroup(storageGroup)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "mc_dispatch_encoder"})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("mc_dispatch"); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "mc_pass"})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, storageGroup, nil)
	if p.uniformGroup != nil {
		pass.SetBindGroup(1, p.uniformGroup, nil)
	}
	pass.Dispatch(x, y, z)
	pass.End()
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	return d.submitAndWaitLocked(cmdBuf)
}

// buildStorageGroupLocked creates the group-0 bind group from the
// current slot bindings. It is rebuilt on every dispatch so that
// rebinds and resizes between dispatches take effect.
func (d *NativeDriver) buildStorageGroupLocked(p *program, bindings map[uint32]driver.BufferID) (hal.BindGroup, error) {
	entries := make([]gputypes.BindGroupEntry, 0, len(p.module.Storage))
	for _, sv := range p.module.Storage {
		bid, bound := bindings[sv.Binding]
		if !bound {
			return nil, fmt.Errorf("native: no buffer bound at slot %d (%s)", sv.Binding, sv.Name)
		}
		b, live := d.buffers[bid]
		if !live {
			return nil, fmt.Errorf("native: buffer at slot %d is destroyed", sv.Binding)
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  sv.Binding,
			Resource: gputypes.BufferBinding{Buffer: b.buf.NativeHandle(), Offset: 0, Size: b.size},
		})
	}
	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "mc_storage_bind",
		Layout:  p.layouts[0],
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create storage bind group: %w", err)
	}
	return group, nil
}
