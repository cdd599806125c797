// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package microcompute

import (
	"fmt"
	"os"

	"github.com/gogpu/microcompute/driver"
)

// Program is a compiled WGSL compute kernel together with its uniform
// state. Programs are compiled eagerly by NewProgram; changing the
// source means Release and compile again.
type Program struct {
	ctx *Context
	id  driver.ProgramID

	// locations caches resolved uniform names. A failed lookup is not
	// cached, so a name that appears in a later kernel revision still
	// resolves.
	locations map[string]driver.UniformLocation
}

// NewProgram compiles WGSL kernel source. On failure the compiler log
// is reported at DebugLevelHigh and no program handle is left behind.
func (c *Context) NewProgram(source string) (*Program, error) {
	id, err := c.drv.CompileProgram(source)
	if err != nil {
		c.report(DebugLevelHigh, "program compile failed: %v", err)
		return nil, err
	}
	return &Program{
		ctx:       c,
		id:        id,
		locations: make(map[string]driver.UniformLocation),
	}, nil
}

// NewProgramFromFile reads the file fully and compiles it as NewProgram.
func (c *Context) NewProgramFromFile(path string) (*Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		c.report(DebugLevelHigh, "program load failed: %v", err)
		return nil, err
	}
	return c.NewProgram(string(source))
}

// Release frees the compiled kernel. Safe on a nil receiver.
// Dispatching a released program is undefined.
func (p *Program) Release() {
	if p == nil {
		return
	}
	p.ctx.drv.DestroyProgram(p.id)
	p.locations = nil
}

// Set resolves the named uniform and pushes the value. It returns false
// and reports at DebugLevelHigh when the name does not resolve or the
// value shape does not match the declaration; other uniforms and their
// cached locations are unaffected.
func (p *Program) Set(name string, v UniformValue) bool {
	loc, ok := p.locations[name]
	if !ok {
		loc, ok = p.ctx.drv.UniformLocation(p.id, name)
		if !ok {
			p.ctx.report(DebugLevelHigh, "uniform %q not found", name)
			return false
		}
		p.locations[name] = loc
	}
	if err := p.ctx.drv.SetUniform(p.id, loc, v.uniform()); err != nil {
		p.ctx.report(DebugLevelHigh, "set uniform %q: %v", name, err)
		return false
	}
	return true
}

// SetFloat sets a scalar f32 uniform.
func (p *Program) SetFloat(name string, v float32) bool { return p.Set(name, Float(v)) }

// SetVec2 sets a vec2<f32> uniform.
func (p *Program) SetVec2(name string, v Vec2) bool { return p.Set(name, v) }

// SetVec3 sets a vec3<f32> uniform.
func (p *Program) SetVec3(name string, v Vec3) bool { return p.Set(name, v) }

// SetVec4 sets a vec4<f32> uniform.
func (p *Program) SetVec4(name string, v Vec4) bool { return p.Set(name, v) }

// SetInt sets a scalar i32 uniform.
func (p *Program) SetInt(name string, v int32) bool { return p.Set(name, Int(v)) }

// SetIVec2 sets a vec2<i32> uniform.
func (p *Program) SetIVec2(name string, v IVec2) bool { return p.Set(name, v) }

// SetIVec3 sets a vec3<i32> uniform.
func (p *Program) SetIVec3(name string, v IVec3) bool { return p.Set(name, v) }

// SetIVec4 sets a vec4<i32> uniform.
func (p *Program) SetIVec4(name string, v IVec4) bool { return p.Set(name, v) }

// SetUint sets a scalar u32 uniform.
func (p *Program) SetUint(name string, v uint32) bool { return p.Set(name, Uint(v)) }

// SetUVec2 sets a vec2<u32> uniform.
func (p *Program) SetUVec2(name string, v UVec2) bool { return p.Set(name, v) }

// SetUVec3 sets a vec3<u32> uniform.
func (p *Program) SetUVec3(name string, v UVec3) bool { return p.Set(name, v) }

// SetUVec4 sets a vec4<u32> uniform.
func (p *Program) SetUVec4(name string, v UVec4) bool { return p.Set(name, v) }

// SetMat2x2 sets a mat2x2<f32> uniform.
func (p *Program) SetMat2x2(name string, m Mat2x2) bool { return p.Set(name, m) }

// SetMat3x3 sets a mat3x3<f32> uniform.
func (p *Program) SetMat3x3(name string, m Mat3x3) bool { return p.Set(name, m) }

// SetMat4x4 sets a mat4x4<f32> uniform.
func (p *Program) SetMat4x4(name string, m Mat4x4) bool { return p.Set(name, m) }

// SetMat2x3 sets a mat2x3<f32> uniform.
func (p *Program) SetMat2x3(name string, m Mat2x3) bool { return p.Set(name, m) }

// SetMat3x2 sets a mat3x2<f32> uniform.
func (p *Program) SetMat3x2(name string, m Mat3x2) bool { return p.Set(name, m) }

// SetMat2x4 sets a mat2x4<f32> uniform.
func (p *Program) SetMat2x4(name string, m Mat2x4) bool { return p.Set(name, m) }

// SetMat4x2 sets a mat4x2<f32> uniform.
func (p *Program) SetMat4x2(name string, m Mat4x2) bool { return p.Set(name, m) }

// SetMat3x4 sets a mat3x4<f32> uniform.
func (p *Program) SetMat3x4(name string, m Mat3x4) bool { return p.Set(name, m) }

// SetMat4x3 sets a mat4x3<f32> uniform.
func (p *Program) SetMat4x3(name string, m Mat4x3) bool { return p.Set(name, m) }

// Dispatch submits the kernel over a groups.X by groups.Y by groups.Z
// workgroup grid, against the buffers currently bound at their slots
// and the last-set uniform values. Workgroup counts must be positive.
//
// Completion is asynchronous: the call may return before the kernel
// finishes. A subsequent Buffer.Read observes the completed results.
func (p *Program) Dispatch(groups IVec3) error {
	if groups.X <= 0 || groups.Y <= 0 || groups.Z <= 0 {
		err := fmt.Errorf("microcompute: workgroup counts must be positive, got %dx%dx%d",
			groups.X, groups.Y, groups.Z)
		p.ctx.report(DebugLevelHigh, "%v", err)
		return err
	}
	err := p.ctx.drv.Dispatch(p.id, p.ctx.bindings,
		uint32(groups.X), uint32(groups.Y), uint32(groups.Z))
	if err != nil {
		p.ctx.report(DebugLevelHigh, "dispatch failed: %v", err)
		return err
	}
	return nil
}
