// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/microcompute/driver"
)

// gpuTimeout bounds every fence wait. A kernel that runs longer than
// this is treated as hung.
const gpuTimeout = 5 * time.Second

type buffer struct {
	buf  hal.Buffer
	size uint64
}

// CreateBuffer allocates device-resident storage usable as a compute
// binding and as a copy source/target for transfers.
func (d *NativeDriver) CreateBuffer(size uint64) (driver.BufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return driver.InvalidID, driver.ErrNotInitialized
	}
	buf, err := d.createStorageLocked(size)
	if err != nil {
		return driver.InvalidID, err
	}
	id := driver.BufferID(d.nextID.Add(1))
	d.buffers[id] = &buffer{buf: buf, size: size}
	return id, nil
}

func (d *NativeDriver) createStorageLocked(size uint64) (hal.Buffer, error) {
	if size == 0 || size > d.Capabilities().MaxBufferSize {
		return nil, fmt.Errorf("native: invalid buffer size %d", size)
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mc_storage",
		Size:  size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create buffer: %w", err)
	}
	return buf, nil
}

// DestroyBuffer releases a buffer.
func (d *NativeDriver) DestroyBuffer(id driver.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return
	}
	d.device.DestroyBuffer(b.buf)
	delete(d.buffers, id)
}

// ResizeBuffer replaces the backing allocation. Contents are not
// preserved; the ID stays valid.
func (d *NativeDriver) ResizeBuffer(id driver.BufferID, size uint64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("native: buffer %d not found", id)
	}
	buf, err := d.createStorageLocked(size)
	if err != nil {
		return err
	}
	d.device.DestroyBuffer(b.buf)
	b.buf = buf
	b.size = size
	return nil
}

// WriteBuffer uploads via the queue; the write is ordered before any
// later dispatch.
func (d *NativeDriver) WriteBuffer(id driver.BufferID, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("native: buffer %d not found", id)
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("native: write of %d bytes at %d exceeds buffer size %d",
			len(data), offset, b.size)
	}
	d.queue.WriteBuffer(b.buf, offset, data)
	return nil
}

// ReadBuffer copies the range into a mappable staging buffer, waits for
// the copy (and everything submitted before it) to complete, and reads
// the staging memory back. Dispatches are fence-waited at submit time,
// so a read observes every previously dispatched kernel.
func (d *NativeDriver) ReadBuffer(id driver.BufferID, offset uint64, dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[id]
	if !ok {
		return fmt.Errorf("native: buffer %d not found", id)
	}
	size := uint64(len(dst))
	if offset+size > b.size {
		return fmt.Errorf("native: read of %d bytes at %d exceeds buffer size %d",
			size, offset, b.size)
	}
	if size == 0 {
		return nil
	}

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "mc_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("native: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "mc_read_encoder"})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("mc_read"); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(b.buf, staging, []hal.BufferCopy{
		{SrcOffset: offset, DstOffset: 0, Size: size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if err := d.submitAndWaitLocked(cmdBuf); err != nil {
		return err
	}
	if err := d.queue.ReadBuffer(staging, 0, dst); err != nil {
		return fmt.Errorf("native: readback: %w", err)
	}
	return nil
}

// submitAndWaitLocked submits one command buffer and blocks until its
// fence signals.
func (d *NativeDriver) submitAndWaitLocked(cmdBuf hal.CommandBuffer) error {
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("native: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)
	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	fenceOK, err := d.device.Wait(fence, 1, gpuTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("native: wait for device: ok=%v err=%w", fenceOK, err)
	}
	return nil
}
