// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgsl

import "testing"

const kernelSource = `
// Doubles every element.
@group(0) @binding(0) var<storage, read_write> data: array<f32>;
@group(0) @binding(2) var<storage, read> lookup: array<u32>;

@group(1) @binding(0) var<uniform> scale: f32;
@group(1) @binding(1) var<uniform> offset: vec3<f32>;
@group(1) @binding(2) var<uniform> transform: mat4x4<f32>;

@compute @workgroup_size(8, 8)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    data[gid.x] = data[gid.x] * scale;
}
`

func TestReflectKernel(t *testing.T) {
	m, err := Reflect(kernelSource)
	if err != nil {
		t.Fatalf("Reflect() error: %v", err)
	}

	if len(m.Storage) != 2 {
		t.Fatalf("got %d storage vars, want 2", len(m.Storage))
	}
	if m.Storage[0].Name != "data" || m.Storage[0].Binding != 0 || m.Storage[0].ReadOnly {
		t.Errorf("storage[0] = %+v, want data at binding 0, read_write", m.Storage[0])
	}
	if m.Storage[1].Name != "lookup" || m.Storage[1].Binding != 2 || !m.Storage[1].ReadOnly {
		t.Errorf("storage[1] = %+v, want lookup at binding 2, read-only", m.Storage[1])
	}

	if len(m.Uniforms) != 3 {
		t.Fatalf("got %d uniforms, want 3", len(m.Uniforms))
	}
	scale, ok := m.Uniform("scale")
	if !ok || scale.Group != 1 || scale.Binding != 0 || scale.Type != (Type{F32, 1, 1}) {
		t.Errorf("scale = %+v ok=%v", scale, ok)
	}
	offset, ok := m.Uniform("offset")
	if !ok || offset.Binding != 1 || offset.Type != (Type{F32, 1, 3}) {
		t.Errorf("offset = %+v ok=%v", offset, ok)
	}
	transform, ok := m.Uniform("transform")
	if !ok || transform.Binding != 2 || transform.Type != (Type{F32, 4, 4}) {
		t.Errorf("transform = %+v ok=%v", transform, ok)
	}

	ep, ok := m.EntryPoint("main")
	if !ok {
		t.Fatal("entry point main not found")
	}
	if ep.WorkgroupSize != [3]uint32{8, 8, 1} {
		t.Errorf("workgroup size = %v, want [8 8 1]", ep.WorkgroupSize)
	}
}

func TestReflectTypeAliases(t *testing.T) {
	src := `
@group(1) @binding(0) var<uniform> a: vec2f;
@group(1) @binding(1) var<uniform> b: vec4u;
@group(1) @binding(2) var<uniform> c: mat2x3f;
@compute @workgroup_size(1) fn main() {}
`
	m, err := Reflect(src)
	if err != nil {
		t.Fatalf("Reflect() error: %v", err)
	}
	want := map[string]Type{
		"a": {F32, 1, 2},
		"b": {U32, 1, 4},
		"c": {F32, 2, 3},
	}
	for name, typ := range want {
		u, ok := m.Uniform(name)
		if !ok || u.Type != typ {
			t.Errorf("uniform %q = %+v ok=%v, want type %+v", name, u, ok, typ)
		}
	}
}

func TestReflectUnsupportedUniformType(t *testing.T) {
	src := `
struct Params { n: u32 }
@group(1) @binding(0) var<uniform> params: Params;
@compute @workgroup_size(1) fn main() {}
`
	if _, err := Reflect(src); err == nil {
		t.Fatal("Reflect() accepted a struct uniform, want error")
	}
}

func TestReflectIgnoresComments(t *testing.T) {
	src := `
// @group(9) @binding(9) var<uniform> ghost: f32;
/* block with nesting /* @compute fn bogus() {} */ still comment */
@group(1) @binding(0) var<uniform> real: f32;
@compute @workgroup_size(1) fn main() {}
`
	m, err := Reflect(src)
	if err != nil {
		t.Fatalf("Reflect() error: %v", err)
	}
	if len(m.Uniforms) != 1 || m.Uniforms[0].Name != "real" {
		t.Errorf("uniforms = %+v, want only real", m.Uniforms)
	}
	if len(m.EntryPoints) != 1 || m.EntryPoints[0].Name != "main" {
		t.Errorf("entry points = %+v, want only main", m.EntryPoints)
	}
}

func TestReflectNonComputeFunctions(t *testing.T) {
	src := `
fn helper(x: f32) -> f32 { return x * 2.0; }
@compute @workgroup_size(64)
fn run() { let y = helper(1.0); }
`
	m, err := Reflect(src)
	if err != nil {
		t.Fatalf("Reflect() error: %v", err)
	}
	if len(m.EntryPoints) != 1 || m.EntryPoints[0].Name != "run" {
		t.Fatalf("entry points = %+v, want only run", m.EntryPoints)
	}
	if m.EntryPoints[0].WorkgroupSize != [3]uint32{64, 1, 1} {
		t.Errorf("workgroup size = %v, want [64 1 1]", m.EntryPoints[0].WorkgroupSize)
	}
}

func TestReflectVarWithoutBinding(t *testing.T) {
	src := `
var<private> counter: u32;
@compute @workgroup_size(1) fn main() {}
`
	m, err := Reflect(src)
	if err != nil {
		t.Fatalf("Reflect() error: %v", err)
	}
	if len(m.Uniforms) != 0 || len(m.Storage) != 0 {
		t.Errorf("got uniforms=%v storage=%v, want none", m.Uniforms, m.Storage)
	}
}
