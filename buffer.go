// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package microcompute

import (
	"errors"

	"github.com/gogpu/microcompute/driver"
)

var errNegativeBinding = errors.New("microcompute: negative binding slot")

// Buffer is device-resident storage bound at a numeric slot. Kernels
// see it as the var<storage> declaration at @group(0) @binding(slot).
//
// Binding a second buffer at an occupied slot replaces the first for
// future dispatches (last writer wins); keeping slots unique among
// simultaneously dispatched buffers is the caller's responsibility.
type Buffer struct {
	ctx     *Context
	id      driver.BufferID
	binding int
	size    int
}

// NewBuffer allocates size bytes of device storage and binds it at the
// slot. Allocation failure is reported at DebugLevelHigh and returns no
// handle.
func (c *Context) NewBuffer(binding, size int) (*Buffer, error) {
	if binding < 0 {
		c.report(DebugLevelHigh, "buffer create failed: %v", errNegativeBinding)
		return nil, errNegativeBinding
	}
	id, err := c.drv.CreateBuffer(uint64(size))
	if err != nil {
		c.report(DebugLevelHigh, "buffer create failed: %v", err)
		return nil, err
	}
	c.bindings[uint32(binding)] = id
	return &Buffer{ctx: c, id: id, binding: binding, size: size}, nil
}

// Release frees the buffer and removes it from its slot. Safe on a nil
// receiver.
func (b *Buffer) Release() {
	if b == nil {
		return
	}
	if cur, ok := b.ctx.bindings[uint32(b.binding)]; ok && cur == b.id {
		delete(b.ctx.bindings, uint32(b.binding))
	}
	b.ctx.drv.DestroyBuffer(b.id)
}

// Binding returns the buffer's current slot.
func (b *Buffer) Binding() int { return b.binding }

// Size returns the buffer's size in bytes.
func (b *Buffer) Size() int { return b.size }

// Rebind moves the buffer to a different slot. The old slot is freed
// unless another buffer has since been bound there.
func (b *Buffer) Rebind(binding int) {
	if binding < 0 {
		b.ctx.report(DebugLevelHigh, "buffer rebind failed: %v", errNegativeBinding)
		return
	}
	if cur, ok := b.ctx.bindings[uint32(b.binding)]; ok && cur == b.id {
		delete(b.ctx.bindings, uint32(b.binding))
	}
	b.binding = binding
	b.ctx.bindings[uint32(binding)] = b.id
}

// Resize reallocates the buffer's storage. Contents are invalidated;
// the slot binding is unchanged.
func (b *Buffer) Resize(size int) error {
	if err := b.ctx.drv.ResizeBuffer(b.id, uint64(size)); err != nil {
		b.ctx.report(DebugLevelHigh, "buffer resize failed: %v", err)
		return err
	}
	b.size = size
	return nil
}

// Write copies data into the buffer at offset and returns the number of
// bytes written. A transfer that would cross the buffer end is rejected
// whole: nothing is written, the failure is reported at DebugLevelHigh,
// and Write returns 0.
func (b *Buffer) Write(offset int, data []byte) int {
	if offset < 0 || offset+len(data) > b.size {
		b.ctx.report(DebugLevelHigh,
			"buffer write out of bounds: offset %d size %d buffer %d", offset, len(data), b.size)
		return 0
	}
	if err := b.ctx.drv.WriteBuffer(b.id, uint64(offset), data); err != nil {
		b.ctx.report(DebugLevelHigh, "buffer write failed: %v", err)
		return 0
	}
	return len(data)
}

// Read copies len(dst) bytes from the buffer at offset into dst and
// returns the number of bytes read. It blocks until previously
// dispatched kernels have completed, so reads are the synchronization
// points after Dispatch. Out-of-bounds reads are rejected whole:
// nothing is read, the failure is reported at DebugLevelHigh, and Read
// returns 0.
func (b *Buffer) Read(offset int, dst []byte) int {
	if offset < 0 || offset+len(dst) > b.size {
		b.ctx.report(DebugLevelHigh,
			"buffer read out of bounds: offset %d size %d buffer %d", offset, len(dst), b.size)
		return 0
	}
	if err := b.ctx.drv.ReadBuffer(b.id, uint64(offset), dst); err != nil {
		b.ctx.report(DebugLevelHigh, "buffer read failed: %v", err)
		return 0
	}
	return len(dst)
}
