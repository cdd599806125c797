// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package driver defines the capability-provider interface between the
// microcompute public API and a concrete compute backend.
//
// A Driver owns the connection to one compute device and exposes the
// primitive operations the library is built from: kernel compilation,
// buffer allocation and transfer, uniform updates, and workgroup
// dispatch. Resources cross the boundary as opaque uint64 IDs; each
// driver maintains the mapping between IDs and its backend objects.
//
// Drivers self-register in init() via Register and are selected through
// Default (priority order) or Get (by name).
package driver

// ProgramID is an opaque handle to a compiled compute kernel.
type ProgramID uint64

// BufferID is an opaque handle to a device-resident buffer.
type BufferID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// UniformLocation identifies a resolved uniform variable within a
// program. Its meaning is driver-internal (typically an index into the
// program's reflected uniform table). A negative value is unresolved.
type UniformLocation int32

// InvalidLocation is returned for names that do not resolve.
const InvalidLocation UniformLocation = -1

// UniformFormat enumerates the value shapes a uniform can carry.
// The set mirrors the public setter surface exactly: three scalar
// types, their 2-4 component vectors, and the nine f32 matrix shapes.
type UniformFormat uint32

// Uniform value formats.
const (
	FormatFloat UniformFormat = iota + 1
	FormatVec2
	FormatVec3
	FormatVec4
	FormatInt
	FormatIVec2
	FormatIVec3
	FormatIVec4
	FormatUint
	FormatUVec2
	FormatUVec3
	FormatUVec4
	FormatMat2x2
	FormatMat3x3
	FormatMat4x4
	FormatMat2x3
	FormatMat3x2
	FormatMat2x4
	FormatMat4x2
	FormatMat3x4
	FormatMat4x3
)

// Uniform is a raw uniform value crossing the driver boundary.
type Uniform struct {
	Format UniformFormat

	// Transpose is set when Data is in row-major order. Drivers for
	// column-major targets transpose before upload.
	Transpose bool

	// Data is the tightly packed component data, 4 bytes per component,
	// column-major unless Transpose is set.
	Data []byte
}

// Capabilities describes what an open driver can do.
type Capabilities struct {
	// Compute is true when Dispatch actually executes kernels.
	// The software driver validates and transfers but does not execute.
	Compute bool

	// MaxWorkgroup is the maximum workgroup size per dimension.
	MaxWorkgroup [3]uint32

	// MaxWorkgroupsPerDimension limits the dispatch grid per axis.
	MaxWorkgroupsPerDimension uint32

	// MaxBufferSize is the maximum buffer allocation in bytes.
	MaxBufferSize uint64
}

// Driver is a connection to one compute device.
//
// All methods except Open require a successful Open first. Drivers are
// safe for use from a single goroutine; implementations may lock their
// internal resource maps but callers must not rely on it.
type Driver interface {
	// Name returns the driver identifier (e.g. "native", "software").
	Name() string

	// Open establishes the device connection. The device string selects
	// a physical adapter: "" or "auto" picks the best available, a
	// decimal index picks by enumeration order, anything else matches
	// the adapter name case-insensitively.
	Open(device string) error

	// Close releases the device connection and every resource still
	// alive. The driver must not be used after Close.
	Close()

	// Capabilities reports the open device's limits.
	Capabilities() Capabilities

	// CompileProgram compiles WGSL kernel source. On failure the
	// returned error carries the compiler log.
	CompileProgram(source string) (ProgramID, error)

	// DestroyProgram releases a compiled kernel. Unknown IDs are ignored.
	DestroyProgram(id ProgramID)

	// UniformLocation resolves a uniform name within a program.
	UniformLocation(id ProgramID, name string) (UniformLocation, bool)

	// SetUniform pushes a value into a program's kernel state.
	// The location must come from UniformLocation on the same program.
	SetUniform(id ProgramID, loc UniformLocation, value Uniform) error

	// CreateBuffer allocates size bytes of device-resident storage.
	CreateBuffer(size uint64) (BufferID, error)

	// DestroyBuffer releases a buffer. Unknown IDs are ignored.
	DestroyBuffer(id BufferID)

	// ResizeBuffer reallocates a buffer's storage. Contents are not
	// preserved.
	ResizeBuffer(id BufferID, size uint64) error

	// WriteBuffer copies data into the buffer at offset. The caller has
	// already bounds-checked the transfer against its own size record;
	// drivers still reject ranges beyond the actual allocation.
	WriteBuffer(id BufferID, offset uint64, data []byte) error

	// ReadBuffer copies len(dst) bytes from the buffer at offset.
	// It blocks until previously dispatched kernels affecting the
	// buffer have completed.
	ReadBuffer(id BufferID, offset uint64, dst []byte) error

	// Dispatch submits a kernel over an x*y*z workgroup grid. bindings
	// maps storage binding slots to the buffers currently bound there.
	Dispatch(id ProgramID, bindings map[uint32]BufferID, x, y, z uint32) error
}
