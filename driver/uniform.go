// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import "github.com/gogpu/microcompute/internal/wgsl"

// formatDims maps each uniform format to its column/row shape.
// Scalars are 1x1, vectors 1xN, matrices CxR (WGSL matCxR convention).
var formatDims = map[UniformFormat][2]uint8{
	FormatFloat:  {1, 1},
	FormatVec2:   {1, 2},
	FormatVec3:   {1, 3},
	FormatVec4:   {1, 4},
	FormatInt:    {1, 1},
	FormatIVec2:  {1, 2},
	FormatIVec3:  {1, 3},
	FormatIVec4:  {1, 4},
	FormatUint:   {1, 1},
	FormatUVec2:  {1, 2},
	FormatUVec3:  {1, 3},
	FormatUVec4:  {1, 4},
	FormatMat2x2: {2, 2},
	FormatMat3x3: {3, 3},
	FormatMat4x4: {4, 4},
	FormatMat2x3: {2, 3},
	FormatMat3x2: {3, 2},
	FormatMat2x4: {2, 4},
	FormatMat4x2: {4, 2},
	FormatMat3x4: {3, 4},
	FormatMat4x3: {4, 3},
}

// Dims returns the column and row counts of the format.
func (f UniformFormat) Dims() (cols, rows int) {
	d := formatDims[f]
	return int(d[0]), int(d[1])
}

// ScalarKind returns the component scalar type of the format. Matrices
// are always f32, matching WGSL.
func (f UniformFormat) ScalarKind() wgsl.Scalar {
	switch f {
	case FormatInt, FormatIVec2, FormatIVec3, FormatIVec4:
		return wgsl.I32
	case FormatUint, FormatUVec2, FormatUVec3, FormatUVec4:
		return wgsl.U32
	default:
		return wgsl.F32
	}
}

// Components returns the number of scalar components of the format.
func (f UniformFormat) Components() int {
	c, r := f.Dims()
	return c * r
}

// IsMatrix reports whether the format is one of the nine matrix shapes.
func (f UniformFormat) IsMatrix() bool {
	c, _ := f.Dims()
	return c > 1
}

// ColumnMajor returns the value's component data in column-major order,
// applying the Transpose flag for matrix formats. The result aliases
// u.Data when no transposition is needed.
func (u Uniform) ColumnMajor() []byte {
	if !u.Transpose || !u.Format.IsMatrix() {
		return u.Data
	}
	cols, rows := u.Format.Dims()
	out := make([]byte, len(u.Data))
	// Row-major data: element (r,c) at index r*cols+c.
	// Column-major: element (r,c) at index c*rows+r.
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			src := (r*cols + c) * 4
			dst := (c*rows + r) * 4
			copy(out[dst:dst+4], u.Data[src:src+4])
		}
	}
	return out
}
