// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package microcompute

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/microcompute/driver"
)

// UniformValue is the sealed union of the value shapes a uniform can
// carry: Float, Int, Uint, their 2-4 component vectors, and the nine
// f32 matrix shapes. Program.Set dispatches on the concrete type; the
// typed setters wrap it.
type UniformValue interface {
	uniform() driver.Uniform
}

// Float is a scalar f32 uniform value.
type Float float32

// Int is a scalar i32 uniform value.
type Int int32

// Uint is a scalar u32 uniform value.
type Uint uint32

// Vec2 is a two-component f32 vector.
type Vec2 struct{ X, Y float32 }

// Vec3 is a three-component f32 vector.
type Vec3 struct{ X, Y, Z float32 }

// Vec4 is a four-component f32 vector.
type Vec4 struct{ X, Y, Z, W float32 }

// IVec2 is a two-component i32 vector.
type IVec2 struct{ X, Y int32 }

// IVec3 is a three-component i32 vector. It doubles as the workgroup
// grid argument of Program.Dispatch.
type IVec3 struct{ X, Y, Z int32 }

// IVec4 is a four-component i32 vector.
type IVec4 struct{ X, Y, Z, W int32 }

// UVec2 is a two-component u32 vector.
type UVec2 struct{ X, Y uint32 }

// UVec3 is a three-component u32 vector.
type UVec3 struct{ X, Y, Z uint32 }

// UVec4 is a four-component u32 vector.
type UVec4 struct{ X, Y, Z, W uint32 }

// Matrix shapes follow the WGSL matCxR convention: C columns of R rows.
// V holds the elements in column-major order unless Transpose is set,
// in which case V is row-major and is transposed before upload.
type (
	// Mat2x2 is a 2-column, 2-row f32 matrix.
	Mat2x2 struct {
		V         [4]float32
		Transpose bool
	}
	// Mat3x3 is a 3-column, 3-row f32 matrix.
	Mat3x3 struct {
		V         [9]float32
		Transpose bool
	}
	// Mat4x4 is a 4-column, 4-row f32 matrix.
	Mat4x4 struct {
		V         [16]float32
		Transpose bool
	}
	// Mat2x3 is a 2-column, 3-row f32 matrix.
	Mat2x3 struct {
		V         [6]float32
		Transpose bool
	}
	// Mat3x2 is a 3-column, 2-row f32 matrix.
	Mat3x2 struct {
		V         [6]float32
		Transpose bool
	}
	// Mat2x4 is a 2-column, 4-row f32 matrix.
	Mat2x4 struct {
		V         [8]float32
		Transpose bool
	}
	// Mat4x2 is a 4-column, 2-row f32 matrix.
	Mat4x2 struct {
		V         [8]float32
		Transpose bool
	}
	// Mat3x4 is a 3-column, 4-row f32 matrix.
	Mat3x4 struct {
		V         [12]float32
		Transpose bool
	}
	// Mat4x3 is a 4-column, 3-row f32 matrix.
	Mat4x3 struct {
		V         [12]float32
		Transpose bool
	}
)

func putF32(b []byte, i int, v float32) {
	binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
}

func putU32(b []byte, i int, v uint32) {
	binary.LittleEndian.PutUint32(b[i*4:], v)
}

func f32Uniform(f driver.UniformFormat, vals ...float32) driver.Uniform {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		putF32(b, i, v)
	}
	return driver.Uniform{Format: f, Data: b}
}

func u32Uniform(f driver.UniformFormat, vals ...uint32) driver.Uniform {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		putU32(b, i, v)
	}
	return driver.Uniform{Format: f, Data: b}
}

func matUniform(f driver.UniformFormat, vals []float32, transpose bool) driver.Uniform {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		putF32(b, i, v)
	}
	return driver.Uniform{Format: f, Transpose: transpose, Data: b}
}

func (v Float) uniform() driver.Uniform {
	return f32Uniform(driver.FormatFloat, float32(v))
}

func (v Int) uniform() driver.Uniform {
	return u32Uniform(driver.FormatInt, uint32(v))
}

func (v Uint) uniform() driver.Uniform {
	return u32Uniform(driver.FormatUint, uint32(v))
}

func (v Vec2) uniform() driver.Uniform {
	return f32Uniform(driver.FormatVec2, v.X, v.Y)
}

func (v Vec3) uniform() driver.Uniform {
	return f32Uniform(driver.FormatVec3, v.X, v.Y, v.Z)
}

func (v Vec4) uniform() driver.Uniform {
	return f32Uniform(driver.FormatVec4, v.X, v.Y, v.Z, v.W)
}

func (v IVec2) uniform() driver.Uniform {
	return u32Uniform(driver.FormatIVec2, uint32(v.X), uint32(v.Y))
}

func (v IVec3) uniform() driver.Uniform {
	return u32Uniform(driver.FormatIVec3, uint32(v.X), uint32(v.Y), uint32(v.Z))
}

func (v IVec4) uniform() driver.Uniform {
	return u32Uniform(driver.FormatIVec4, uint32(v.X), uint32(v.Y), uint32(v.Z), uint32(v.W))
}

func (v UVec2) uniform() driver.Uniform {
	return u32Uniform(driver.FormatUVec2, v.X, v.Y)
}

func (v UVec3) uniform() driver.Uniform {
	return u32Uniform(driver.FormatUVec3, v.X, v.Y, v.Z)
}

func (v UVec4) uniform() driver.Uniform {
	return u32Uniform(driver.FormatUVec4, v.X, v.Y, v.Z, v.W)
}

func (m Mat2x2) uniform() driver.Uniform {
	return matUniform(driver.FormatMat2x2, m.V[:], m.Transpose)
}

func (m Mat3x3) uniform() driver.Uniform {
	return matUniform(driver.FormatMat3x3, m.V[:], m.Transpose)
}

func (m Mat4x4) uniform() driver.Uniform {
	return matUniform(driver.FormatMat4x4, m.V[:], m.Transpose)
}

func (m Mat2x3) uniform() driver.Uniform {
	return matUniform(driver.FormatMat2x3, m.V[:], m.Transpose)
}

func (m Mat3x2) uniform() driver.Uniform {
	return matUniform(driver.FormatMat3x2, m.V[:], m.Transpose)
}

func (m Mat2x4) uniform() driver.Uniform {
	return matUniform(driver.FormatMat2x4, m.V[:], m.Transpose)
}

func (m Mat4x2) uniform() driver.Uniform {
	return matUniform(driver.FormatMat4x2, m.V[:], m.Transpose)
}

func (m Mat3x4) uniform() driver.Uniform {
	return matUniform(driver.FormatMat3x4, m.V[:], m.Transpose)
}

func (m Mat4x3) uniform() driver.Uniform {
	return matUniform(driver.FormatMat4x3, m.V[:], m.Transpose)
}
