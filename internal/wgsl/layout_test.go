// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgsl

import (
	"bytes"
	"testing"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
		ok   bool
	}{
		{"f32", Type{F32, 1, 1}, true},
		{"i32", Type{I32, 1, 1}, true},
		{"u32", Type{U32, 1, 1}, true},
		{"vec2<f32>", Type{F32, 1, 2}, true},
		{"vec3<i32>", Type{I32, 1, 3}, true},
		{"vec4<u32>", Type{U32, 1, 4}, true},
		{"vec3f", Type{F32, 1, 3}, true},
		{"vec2u", Type{U32, 1, 2}, true},
		{"vec4i", Type{I32, 1, 4}, true},
		{"mat2x2<f32>", Type{F32, 2, 2}, true},
		{"mat4x3<f32>", Type{F32, 4, 3}, true},
		{"mat3x4", Type{F32, 3, 4}, true},
		{"mat2x4f", Type{F32, 2, 4}, true},
		{"f16", Type{}, false},
		{"vec5<f32>", Type{}, false},
		{"mat2x2<i32>", Type{}, false},
		{"array<f32>", Type{}, false},
		{"MyStruct", Type{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseType(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseType(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestUniformSize(t *testing.T) {
	tests := []struct {
		typ  Type
		want uint32
	}{
		{Type{F32, 1, 1}, 4},   // f32
		{Type{F32, 1, 2}, 8},   // vec2
		{Type{F32, 1, 3}, 16},  // vec3 pads to 16
		{Type{F32, 1, 4}, 16},  // vec4
		{Type{F32, 2, 2}, 16},  // mat2x2: 2 cols * 8
		{Type{F32, 3, 3}, 48},  // mat3x3: 3 cols * 16
		{Type{F32, 4, 4}, 64},  // mat4x4: 4 cols * 16
		{Type{F32, 2, 3}, 32},  // mat2x3: 2 cols * 16
		{Type{F32, 3, 2}, 24},  // mat3x2: 3 cols * 8
		{Type{F32, 4, 3}, 64},  // mat4x3: 4 cols * 16
	}
	for _, tt := range tests {
		if got := tt.typ.UniformSize(); got != tt.want {
			t.Errorf("UniformSize(%+v) = %d, want %d", tt.typ, got, tt.want)
		}
	}
}

func TestUniformLayoutTight(t *testing.T) {
	// vec4 needs no padding; the layout is a plain copy.
	typ := Type{F32, 1, 4}
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	got := typ.UniformLayout(data)
	if !bytes.Equal(got, data) {
		t.Errorf("UniformLayout = %v, want %v", got, data)
	}
}

func TestUniformLayoutVec3Padding(t *testing.T) {
	typ := Type{F32, 1, 3}
	data := []byte{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3}
	got := typ.UniformLayout(data)
	if len(got) != 16 {
		t.Fatalf("len = %d, want 16", len(got))
	}
	if !bytes.Equal(got[:12], data) {
		t.Errorf("payload = %v, want %v", got[:12], data)
	}
	if !bytes.Equal(got[12:], []byte{0, 0, 0, 0}) {
		t.Errorf("padding = %v, want zeros", got[12:])
	}
}

func TestUniformLayoutMat2x3ColumnStride(t *testing.T) {
	// mat2x3: two 12-byte columns, each padded to a 16-byte stride.
	typ := Type{F32, 2, 3}
	data := make([]byte, 24)
	for i := range data {
		data[i] = byte(i + 1)
	}
	got := typ.UniformLayout(data)
	if len(got) != 32 {
		t.Fatalf("len = %d, want 32", len(got))
	}
	if !bytes.Equal(got[0:12], data[0:12]) {
		t.Errorf("column 0 = %v, want %v", got[0:12], data[0:12])
	}
	if !bytes.Equal(got[16:28], data[12:24]) {
		t.Errorf("column 1 = %v, want %v", got[16:28], data[12:24])
	}
	for _, i := range []int{12, 13, 14, 15, 28, 29, 30, 31} {
		if got[i] != 0 {
			t.Errorf("byte %d = %d, want 0 (column padding)", i, got[i])
		}
	}
}
