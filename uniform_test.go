// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package microcompute

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/microcompute/driver"
)

func f32At(t *testing.T, data []byte, i int) float32 {
	t.Helper()
	if len(data) < (i+1)*4 {
		t.Fatalf("data too short: %d bytes, need element %d", len(data), i)
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
}

func TestScalarUniforms(t *testing.T) {
	u := Float(2.5).uniform()
	if u.Format != driver.FormatFloat || len(u.Data) != 4 {
		t.Fatalf("Float uniform = %+v", u)
	}
	if got := f32At(t, u.Data, 0); got != 2.5 {
		t.Errorf("Float payload = %v, want 2.5", got)
	}

	u = Int(-7).uniform()
	if u.Format != driver.FormatInt {
		t.Errorf("Int format = %v", u.Format)
	}
	if got := int32(binary.LittleEndian.Uint32(u.Data)); got != -7 {
		t.Errorf("Int payload = %d, want -7", got)
	}

	u = Uint(9).uniform()
	if u.Format != driver.FormatUint || binary.LittleEndian.Uint32(u.Data) != 9 {
		t.Errorf("Uint uniform = %+v", u)
	}
}

func TestVectorUniforms(t *testing.T) {
	u := Vec3{X: 1, Y: 2, Z: 3}.uniform()
	if u.Format != driver.FormatVec3 || len(u.Data) != 12 {
		t.Fatalf("Vec3 uniform = %+v", u)
	}
	for i, want := range []float32{1, 2, 3} {
		if got := f32At(t, u.Data, i); got != want {
			t.Errorf("Vec3[%d] = %v, want %v", i, got, want)
		}
	}

	u = IVec4{X: -1, Y: 2, Z: -3, W: 4}.uniform()
	if u.Format != driver.FormatIVec4 || len(u.Data) != 16 {
		t.Fatalf("IVec4 uniform = %+v", u)
	}
	if got := int32(binary.LittleEndian.Uint32(u.Data[8:])); got != -3 {
		t.Errorf("IVec4.Z = %d, want -3", got)
	}

	u = UVec2{X: 5, Y: 6}.uniform()
	if u.Format != driver.FormatUVec2 || len(u.Data) != 8 {
		t.Fatalf("UVec2 uniform = %+v", u)
	}
}

func TestMatrixUniformTransposeFlag(t *testing.T) {
	m := Mat2x3{V: [6]float32{1, 2, 3, 4, 5, 6}}
	u := m.uniform()
	if u.Format != driver.FormatMat2x3 || u.Transpose || len(u.Data) != 24 {
		t.Fatalf("Mat2x3 uniform = %+v", u)
	}

	m.Transpose = true
	u = m.uniform()
	if !u.Transpose {
		t.Error("Transpose flag not carried into the driver uniform")
	}
	// The payload itself is untouched; normalization happens in the
	// driver layer.
	for i, want := range []float32{1, 2, 3, 4, 5, 6} {
		if got := f32At(t, u.Data, i); got != want {
			t.Errorf("payload[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestMatrixUniformSizes(t *testing.T) {
	tests := []struct {
		v      UniformValue
		format driver.UniformFormat
		bytes  int
	}{
		{Mat2x2{}, driver.FormatMat2x2, 16},
		{Mat3x3{}, driver.FormatMat3x3, 36},
		{Mat4x4{}, driver.FormatMat4x4, 64},
		{Mat3x2{}, driver.FormatMat3x2, 24},
		{Mat2x4{}, driver.FormatMat2x4, 32},
		{Mat4x2{}, driver.FormatMat4x2, 32},
		{Mat3x4{}, driver.FormatMat3x4, 48},
		{Mat4x3{}, driver.FormatMat4x3, 48},
	}
	for _, tt := range tests {
		u := tt.v.uniform()
		if u.Format != tt.format || len(u.Data) != tt.bytes {
			t.Errorf("%T uniform = format %v, %d bytes; want %v, %d",
				tt.v, u.Format, len(u.Data), tt.format, tt.bytes)
		}
	}
}
