// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgsl extracts the binding interface of a WGSL compute kernel:
// uniform variables, storage buffer bindings, and compute entry points.
//
// It is a declaration scanner, not a validator. Full syntax and semantic
// checking is naga's job; callers compile with naga first and only reflect
// sources that compiled. The scanner tolerates anything it does not
// recognize and reports only declarations it can attribute to a
// @group/@binding pair.
package wgsl

import (
	"fmt"
	"strconv"
	"strings"
)

// UniformVar describes a single var<uniform> declaration.
type UniformVar struct {
	// Name is the declaration identifier, used for set-by-name lookup.
	Name string

	// Group and Binding locate the variable in the pipeline layout.
	Group   uint32
	Binding uint32

	// Type is the parsed value type (scalar, vector, or matrix).
	Type Type
}

// StorageVar describes a var<storage> buffer declaration.
type StorageVar struct {
	Name    string
	Group   uint32
	Binding uint32

	// ReadOnly is true for var<storage, read> declarations.
	ReadOnly bool
}

// EntryPoint describes a @compute entry function.
type EntryPoint struct {
	Name string

	// WorkgroupSize holds the @workgroup_size attribute values.
	// Unspecified trailing dimensions default to 1.
	WorkgroupSize [3]uint32
}

// Module is the reflected binding interface of a kernel.
type Module struct {
	Uniforms    []UniformVar
	Storage     []StorageVar
	EntryPoints []EntryPoint
}

// Uniform returns the uniform with the given name, if declared.
func (m *Module) Uniform(name string) (UniformVar, bool) {
	for _, u := range m.Uniforms {
		if u.Name == name {
			return u, true
		}
	}
	return UniformVar{}, false
}

// EntryPoint returns the entry point with the given name, if present.
func (m *Module) EntryPoint(name string) (EntryPoint, bool) {
	for _, e := range m.EntryPoints {
		if e.Name == name {
			return e, true
		}
	}
	return EntryPoint{}, false
}

// Reflect scans WGSL source and returns its binding interface.
// It returns an error only for declarations it recognizes but cannot
// parse (e.g. a var<uniform> with an unsupported type).
func Reflect(source string) (*Module, error) {
	s := newScanner(stripComments(source))
	m := &Module{}

	// Attributes seen since the last declaration.
	var (
		group, binding       int64 = -1, -1
		isCompute            bool
		wgSize               = [3]uint32{1, 1, 1}
		haveWG               bool
	)
	resetAttrs := func() {
		group, binding = -1, -1
		isCompute = false
		wgSize = [3]uint32{1, 1, 1}
		haveWG = false
	}

	for {
		tok, ok := s.next()
		if !ok {
			break
		}
		switch tok {
		case "@":
			name, _ := s.next()
			switch name {
			case "group", "binding":
				args, err := s.parenArgs()
				if err != nil || len(args) != 1 {
					resetAttrs()
					continue
				}
				v, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil || v < 0 {
					resetAttrs()
					continue
				}
				if name == "group" {
					group = v
				} else {
					binding = v
				}
			case "compute":
				isCompute = true
			case "workgroup_size":
				args, err := s.parenArgs()
				if err != nil {
					continue
				}
				wgSize = [3]uint32{1, 1, 1}
				for i, a := range args {
					if i >= 3 {
						break
					}
					// Sizes given via override/const expressions are
					// left at 1; only literals are reflected.
					if v, err := strconv.ParseUint(a, 10, 32); err == nil {
						wgSize[i] = uint32(v)
					}
				}
				haveWG = true
			default:
				// Unrelated attribute (@builtin, @location, ...): the
				// attribute itself never carries binding state, so the
				// pending group/binding pair stays valid.
				if p, _ := s.peek(); p == "(" {
					s.parenArgs() //nolint:errcheck // skipping args
				}
			}

		case "var":
			addr, access := s.templateArgs()
			nameTok, ok := s.next()
			if !ok {
				break
			}
			if nameTok == ":" || group < 0 || binding < 0 {
				resetAttrs()
				continue
			}
			switch addr {
			case "uniform":
				typeStr := s.declType()
				typ, ok := ParseType(typeStr)
				if !ok {
					return nil, fmt.Errorf("wgsl: uniform %q has unsupported type %q", nameTok, typeStr)
				}
				m.Uniforms = append(m.Uniforms, UniformVar{
					Name:    nameTok,
					Group:   uint32(group),
					Binding: uint32(binding),
					Type:    typ,
				})
			case "storage":
				s.declType() // type is opaque to the binding layer
				m.Storage = append(m.Storage, StorageVar{
					Name:     nameTok,
					Group:    uint32(group),
					Binding:  uint32(binding),
					ReadOnly: access == "read",
				})
			}
			resetAttrs()

		case "fn":
			name, ok := s.next()
			if ok && isCompute {
				ep := EntryPoint{Name: name, WorkgroupSize: [3]uint32{1, 1, 1}}
				if haveWG {
					ep.WorkgroupSize = wgSize
				}
				m.EntryPoints = append(m.EntryPoints, ep)
			}
			resetAttrs()

		case ";", "}", "struct", "const", "let", "override":
			resetAttrs()
		}
	}

	return m, nil
}

// stripComments removes // line comments and (nested) block comments,
// replacing them with spaces so token positions stay separated.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	depth := 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		if depth > 0 {
			if c == '/' && i+1 < len(src) && src[i+1] == '*' {
				depth++
				i++
			} else if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				depth--
				i++
			} else if c == '\n' {
				b.WriteByte('\n')
			}
			continue
		}
		if c == '/' && i+1 < len(src) {
			switch src[i+1] {
			case '/':
				for i < len(src) && src[i] != '\n' {
					i++
				}
				if i < len(src) {
					b.WriteByte('\n')
				}
				continue
			case '*':
				depth = 1
				i++
				b.WriteByte(' ')
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// scanner is a minimal WGSL tokenizer: identifiers, integers, and
// single-character punctuation. Everything else is skipped.
type scanner struct {
	src string
	pos int

	peeked    string
	hasPeeked bool
}

func newScanner(src string) *scanner {
	return &scanner{src: src}
}

func isIdent(c byte, first bool) bool {
	if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return true
	}
	return !first && c >= '0' && c <= '9'
}

func (s *scanner) next() (string, bool) {
	if s.hasPeeked {
		s.hasPeeked = false
		return s.peeked, s.peeked != ""
	}
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case isIdent(c, true) || (c >= '0' && c <= '9'):
			start := s.pos
			for s.pos < len(s.src) && isIdent(s.src[s.pos], false) {
				s.pos++
			}
			return s.src[start:s.pos], true
		default:
			s.pos++
			return string(c), true
		}
	}
	return "", false
}

func (s *scanner) peek() (string, bool) {
	if !s.hasPeeked {
		tok, ok := s.next()
		if !ok {
			s.peeked = ""
			s.hasPeeked = true
			return "", false
		}
		s.peeked = tok
		s.hasPeeked = true
	}
	return s.peeked, s.peeked != ""
}

// parenArgs consumes a balanced "( ... )" group and returns its
// comma-separated arguments as joined token strings.
func (s *scanner) parenArgs() ([]string, error) {
	tok, ok := s.next()
	if !ok || tok != "(" {
		return nil, fmt.Errorf("wgsl: expected '('")
	}
	var args []string
	var cur strings.Builder
	depth := 1
	for depth > 0 {
		tok, ok := s.next()
		if !ok {
			return nil, fmt.Errorf("wgsl: unterminated argument list")
		}
		switch tok {
		case "(":
			depth++
			cur.WriteString(tok)
		case ")":
			depth--
			if depth > 0 {
				cur.WriteString(tok)
			}
		case ",":
			if depth == 1 {
				args = append(args, cur.String())
				cur.Reset()
			} else {
				cur.WriteString(tok)
			}
		default:
			cur.WriteString(tok)
		}
	}
	if cur.Len() > 0 {
		args = append(args, cur.String())
	}
	return args, nil
}

// templateArgs consumes an optional "<addr, access>" group after `var`
// and returns the address space and access mode (either may be empty).
func (s *scanner) templateArgs() (addr, access string) {
	if p, _ := s.peek(); p != "<" {
		return "", ""
	}
	s.next() // consume '<'
	var parts []string
	var cur strings.Builder
	for {
		tok, ok := s.next()
		if !ok || tok == ">" {
			break
		}
		if tok == "," {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteString(tok)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	if len(parts) > 0 {
		addr = parts[0]
	}
	if len(parts) > 1 {
		access = parts[1]
	}
	return addr, access
}

// declType consumes ": type" up to (not including) the terminating ';',
// '=' or end of input and returns the type as a single string.
func (s *scanner) declType() string {
	if p, _ := s.peek(); p != ":" {
		return ""
	}
	s.next() // consume ':'
	var b strings.Builder
	for {
		p, ok := s.peek()
		if !ok || p == ";" || p == "=" {
			break
		}
		s.next()
		b.WriteString(p)
	}
	return b.String()
}
