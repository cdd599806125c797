//go:build rust

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rust

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/gogpu/microcompute/driver"
)

// init registers the rust driver on package import.
func init() {
	driver.Register(driver.Rust, func() driver.Driver {
		return New()
	})
}

// RustDriver implements driver.Driver on wgpu-native via FFI
// (go-webgpu/webgpu). It needs the wgpu_native shared library at
// runtime; Open fails cleanly when the library is missing so the
// registry can fall through to the native driver.
type RustDriver struct {
	mu sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	adapterName string
	initialized bool

	nextID   uint64
	programs map[driver.ProgramID]*program
	buffers  map[driver.BufferID]*buffer
}

// New creates an unopened rust driver.
func New() *RustDriver {
	return &RustDriver{}
}

// Name returns the driver identifier.
func (d *RustDriver) Name() string { return driver.Rust }

// Open loads wgpu-native, requests an adapter per the device selector,
// and creates a device and queue.
func (d *RustDriver) Open(device string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return nil
	}

	if err := wgpu.Init(); err != nil {
		return fmt.Errorf("rust: wgpu-native not available: %w", err)
	}
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return fmt.Errorf("rust: create instance: %w", err)
	}

	adapter, err := d.requestAdapter(instance, device)
	if err != nil {
		instance.Release()
		return err
	}

	dev, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return fmt.Errorf("rust: request device: %w", err)
	}
	queue := dev.GetQueue()
	if queue == nil {
		dev.Release()
		adapter.Release()
		instance.Release()
		return fmt.Errorf("rust: queue retrieval failed")
	}

	d.instance = instance
	d.adapter = adapter
	d.device = dev
	d.queue = queue
	d.nextID = 0
	d.programs = make(map[driver.ProgramID]*program)
	d.buffers = make(map[driver.BufferID]*buffer)
	d.initialized = true
	return nil
}

// requestAdapter resolves the device selector. wgpu-native exposes only
// power-preference selection, so "" and "auto" request the
// high-performance adapter and anything else is checked against the
// returned adapter's description after the fact. A bare index selects
// nothing special beyond index 0; wgpu-native does not enumerate.
func (d *RustDriver) requestAdapter(instance *wgpu.Instance, device string) (*wgpu.Adapter, error) {
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("rust: request adapter: %w", driver.ErrNoDevice)
	}

	switch device {
	case "", "auto":
		d.adapterName = adapterName(adapter)
		return adapter, nil
	}
	if idx, errc := strconv.Atoi(device); errc == nil {
		if idx != 0 {
			adapter.Release()
			return nil, fmt.Errorf("rust: adapter index %d: %w", idx, driver.ErrNoDevice)
		}
		d.adapterName = adapterName(adapter)
		return adapter, nil
	}
	name := adapterName(adapter)
	if !strings.Contains(strings.ToLower(name), strings.ToLower(device)) {
		adapter.Release()
		return nil, fmt.Errorf("rust: no adapter matches %q: %w", device, driver.ErrNoDevice)
	}
	d.adapterName = name
	return adapter, nil
}

func adapterName(adapter *wgpu.Adapter) string {
	info, err := adapter.GetInfo()
	if err != nil {
		return ""
	}
	return info.Device
}

// AdapterName returns the name of the selected adapter, for logging.
func (d *RustDriver) AdapterName() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.adapterName
}

// Close releases all resources in reverse order of creation.
func (d *RustDriver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return
	}
	for id, p := range d.programs {
		p.release()
		delete(d.programs, id)
	}
	for id, b := range d.buffers {
		b.buf.Release()
		delete(d.buffers, id)
	}
	d.queue.Release()
	d.queue = nil
	d.device.Release()
	d.device = nil
	d.adapter.Release()
	d.adapter = nil
	d.instance.Release()
	d.instance = nil
	d.initialized = false
}

// Capabilities reports the WebGPU default limits wgpu-native guarantees
// without an explicit limits request.
func (d *RustDriver) Capabilities() driver.Capabilities {
	return driver.Capabilities{
		Compute:                   true,
		MaxWorkgroup:              [3]uint32{256, 256, 64},
		MaxWorkgroupsPerDimension: 65535,
		MaxBufferSize:             1 << 30,
	}
}
