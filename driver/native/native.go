// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native implements the compute driver on the Pure Go WebGPU
// stack (gogpu/wgpu hal over Vulkan).
//
// Kernels are WGSL, pre-checked with naga so compile errors carry the
// compiler log, then handed to the HAL shader module path. Storage
// buffers live at @group(0) with the binding index as the slot number;
// every uniform variable gets its own backing buffer at its @group(1)
// binding, so uniform updates are plain queue writes that never touch
// the pipeline.
//
// Importing this package registers the driver:
//
//	import _ "github.com/gogpu/microcompute/driver/native"
package native

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/microcompute/driver"
)

func init() {
	driver.Register(driver.Native, func() driver.Driver {
		return New()
	})
}

// NativeDriver is the hal-backed implementation of driver.Driver.
type NativeDriver struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	adapterName string
	initialized bool

	nextID   atomic.Uint64
	programs map[driver.ProgramID]*program
	buffers  map[driver.BufferID]*buffer
}

// New creates an unopened native driver.
func New() *NativeDriver {
	return &NativeDriver{}
}

// Name returns the driver identifier.
func (d *NativeDriver) Name() string { return driver.Native }

// AdapterName returns the name of the selected adapter, for logging.
// Empty before Open.
func (d *NativeDriver) AdapterName() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.adapterName
}

// Open creates the hal instance, selects an adapter per the device
// string, and opens a device with default limits.
func (d *NativeDriver) Open(device string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return nil
	}

	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("native: vulkan backend not available: %w", driver.ErrNotAvailable)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("native: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return fmt.Errorf("native: no adapters found: %w", driver.ErrNoDevice)
	}
	selected := selectAdapter(adapters, device)
	if selected == nil {
		instance.Destroy()
		return fmt.Errorf("native: no adapter matches %q: %w", device, driver.ErrNoDevice)
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("native: open device: %w", err)
	}

	d.instance = instance
	d.device = openDev.Device
	d.queue = openDev.Queue
	d.adapterName = selected.Info.Name
	d.programs = make(map[driver.ProgramID]*program)
	d.buffers = make(map[driver.BufferID]*buffer)
	d.initialized = true
	return nil
}

// selectAdapter resolves the device selector against the enumerated
// adapters. Empty or "auto" prefers discrete over integrated hardware,
// a decimal number selects by enumeration index, and anything else is
// matched case-insensitively against the adapter name.
func selectAdapter(adapters []hal.ExposedAdapter, device string) *hal.ExposedAdapter {
	switch device {
	case "", "auto":
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
				return &adapters[i]
			}
		}
		for i := range adapters {
			if adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
				return &adapters[i]
			}
		}
		return &adapters[0]
	}
	if idx, err := strconv.Atoi(device); err == nil {
		if idx < 0 || idx >= len(adapters) {
			return nil
		}
		return &adapters[idx]
	}
	want := strings.ToLower(device)
	for i := range adapters {
		if strings.Contains(strings.ToLower(adapters[i].Info.Name), want) {
			return &adapters[i]
		}
	}
	return nil
}

// Close destroys every live resource, then the device and instance.
func (d *NativeDriver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return
	}
	for id, p := range d.programs {
		d.destroyProgramLocked(p)
		delete(d.programs, id)
	}
	for id, b := range d.buffers {
		d.device.DestroyBuffer(b.buf)
		delete(d.buffers, id)
	}
	d.device.Destroy()
	d.instance.Destroy()
	d.device = nil
	d.queue = nil
	d.instance = nil
	d.initialized = false
}

// Capabilities reports the open device's limits.
//
// The HAL opens devices at gputypes.DefaultLimits, which follow the
// WebGPU defaults, so the same values are reported here.
func (d *NativeDriver) Capabilities() driver.Capabilities {
	return driver.Capabilities{
		Compute:                   true,
		MaxWorkgroup:              [3]uint32{256, 256, 64},
		MaxWorkgroupsPerDimension: 65535,
		MaxBufferSize:             1 << 30,
	}
}
