// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgsl

import "strings"

// Scalar is the component type of a WGSL value.
type Scalar uint8

// Scalar component types.
const (
	F32 Scalar = iota
	I32
	U32
)

// String returns the WGSL spelling of the scalar type.
func (s Scalar) String() string {
	switch s {
	case I32:
		return "i32"
	case U32:
		return "u32"
	default:
		return "f32"
	}
}

// Type describes a WGSL scalar, vector, or matrix type.
//
// Cols/Rows follow the WGSL matCxR convention: a scalar is 1x1, a vector
// vecN is 1xN, and a matrix matCxR has C columns of R rows. Matrices are
// always f32 in WGSL.
type Type struct {
	Scalar Scalar
	Cols   uint8
	Rows   uint8
}

// IsMatrix reports whether the type has more than one column.
func (t Type) IsMatrix() bool { return t.Cols > 1 }

// Components returns the number of scalar components.
func (t Type) Components() uint32 { return uint32(t.Cols) * uint32(t.Rows) }

// DenseSize returns the tightly packed byte size (4 bytes per component).
func (t Type) DenseSize() uint32 { return 4 * t.Components() }

// columnStride returns the byte stride of one column (or of the whole
// vector for non-matrix types) under WGSL uniform buffer layout rules:
// two-component columns stride 8 bytes, three- and four-component
// columns 16.
func (t Type) columnStride() uint32 {
	switch t.Rows {
	case 1:
		return 4
	case 2:
		return 8
	default:
		return 16
	}
}

// UniformSize returns the byte size of the type's backing uniform buffer
// under WGSL layout rules. Three-component columns are padded to 16
// bytes; everything else is tight.
func (t Type) UniformSize() uint32 {
	if t.Cols == 1 && t.Rows == 3 {
		// A lone vec3 occupies 12 bytes; the buffer is still created at
		// the 16-byte alignment size so drivers can write a padded copy.
		return 16
	}
	return uint32(t.Cols) * t.columnStride()
}

// UniformLayout writes the dense column-major data into a fresh slice
// laid out per WGSL uniform rules (columns padded to columnStride).
// data must hold DenseSize bytes.
func (t Type) UniformLayout(data []byte) []byte {
	stride := t.columnStride()
	rowBytes := uint32(t.Rows) * 4
	if stride == rowBytes {
		out := make([]byte, t.UniformSize())
		copy(out, data)
		return out
	}
	out := make([]byte, uint32(t.Cols)*stride)
	for c := uint32(0); c < uint32(t.Cols); c++ {
		copy(out[c*stride:], data[c*rowBytes:(c+1)*rowBytes])
	}
	return out
}

// ParseType parses a WGSL type string as produced by the scanner
// (whitespace-free, e.g. "f32", "vec3<u32>", "mat4x3<f32>").
func ParseType(s string) (Type, bool) {
	switch s {
	case "f32":
		return Type{F32, 1, 1}, true
	case "i32":
		return Type{I32, 1, 1}, true
	case "u32":
		return Type{U32, 1, 1}, true
	}

	base := s
	scalar := F32
	if i := strings.IndexByte(s, '<'); i >= 0 {
		base = s[:i]
		arg := strings.TrimSuffix(s[i+1:], ">")
		switch arg {
		case "f32":
			scalar = F32
		case "i32":
			scalar = I32
		case "u32":
			scalar = U32
		default:
			return Type{}, false
		}
	}

	// Predeclared aliases (vec3f, vec4u, ...) use a trailing letter.
	if len(base) == 5 && strings.HasPrefix(base, "vec") {
		switch base[4] {
		case 'f':
			scalar = F32
		case 'i':
			scalar = I32
		case 'u':
			scalar = U32
		default:
			return Type{}, false
		}
		base = base[:4]
	}

	if len(base) == 7 && strings.HasPrefix(base, "mat") && base[6] == 'f' {
		base = base[:6]
	}

	switch {
	case strings.HasPrefix(base, "vec") && len(base) == 4:
		n := base[3] - '0'
		if n < 2 || n > 4 {
			return Type{}, false
		}
		return Type{scalar, 1, n}, true
	case strings.HasPrefix(base, "mat") && len(base) == 6 && base[4] == 'x':
		if scalar != F32 {
			return Type{}, false
		}
		c, r := base[3]-'0', base[5]-'0'
		if c < 2 || c > 4 || r < 2 || r > 4 {
			return Type{}, false
		}
		return Type{F32, c, r}, true
	}
	return Type{}, false
}
