// Package r3dtest provides an in-memory r3d.Context that records calls.
//
// Shaders are "compiled" by a toy checker: the source must declare a
// #version, define main and keep braces and parentheses balanced.
// Uniform declarations are collected so linked programs expose real
// locations.
package r3dtest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/glapp/r3d"
)

type Shader struct {
	Stage    r3d.ShaderStage
	Source   string
	Compiled bool
	Log      string
	Uniforms []string
}

type Program struct {
	Attached  []uint32
	Linked    bool
	Validated bool
	Log       string
	Uniforms  map[string]int32
}

type VertexArray struct {
	Buffer  uint32
	Attribs map[uint32]Attrib
}

type Attrib struct {
	Size    int32
	Stride  int32
	Enabled bool
}

type Draw struct {
	Program     uint32
	VertexArray uint32
	First       int32
	Count       int32
}

type Upload struct {
	Program  uint32
	Location int32
	Matrix   mgl32.Mat4
}

// Context records GL state. The Fail* fields force driver failures.
type Context struct {
	FailCreateProgram bool
	FailLink          string
	FailValidate      string

	Shaders      map[uint32]*Shader
	Programs     map[uint32]*Program
	VertexArrays map[uint32]*VertexArray
	Buffers      map[uint32][]float32

	CurrentProgram uint32
	BoundArray     uint32
	BoundBuffer    uint32

	Draws     []Draw
	Uploads   []Upload
	Clears    [][4]float32
	Viewports [][4]int32

	// Misuse collects calls that a real driver would flag with GL_INVALID_*.
	Misuse []string

	nextId uint32
}

func New() *Context {
	return &Context{
		Shaders:      make(map[uint32]*Shader),
		Programs:     make(map[uint32]*Program),
		VertexArrays: make(map[uint32]*VertexArray),
		Buffers:      make(map[uint32][]float32),
	}
}

var _ r3d.Context = (*Context)(nil)

// Live returns the number of GL objects not yet deleted.
func (c *Context) Live() int {
	return len(c.Shaders) + len(c.Programs) + len(c.VertexArrays) + len(c.Buffers)
}

func (c *Context) misuse(format string, args ...interface{}) {
	c.Misuse = append(c.Misuse, fmt.Sprintf(format, args...))
}

func (c *Context) id() uint32 {
	c.nextId++
	return c.nextId
}

func (c *Context) CreateShader(stage r3d.ShaderStage) uint32 {
	id := c.id()
	c.Shaders[id] = &Shader{Stage: stage}
	return id
}

func (c *Context) shader(id uint32) *Shader {
	s, ok := c.Shaders[id]
	if !ok {
		c.misuse("unknown shader %d", id)
		return &Shader{}
	}
	return s
}

func (c *Context) ShaderSource(shader uint32, source string) {
	c.shader(shader).Source = source
}

func (c *Context) CompileShader(shader uint32) {
	s := c.shader(shader)
	s.Log = check(s.Source)
	s.Compiled = s.Log == ""
	if s.Compiled {
		s.Uniforms = uniforms(s.Source)
	}
}

func (c *Context) ShaderCompiled(shader uint32) bool { return c.shader(shader).Compiled }
func (c *Context) ShaderInfoLog(shader uint32) string { return c.shader(shader).Log }

func (c *Context) DeleteShader(shader uint32) {
	if _, ok := c.Shaders[shader]; !ok {
		c.misuse("delete unknown shader %d", shader)
	}
	delete(c.Shaders, shader)
}

func (c *Context) CreateProgram() uint32 {
	if c.FailCreateProgram {
		return 0
	}
	id := c.id()
	c.Programs[id] = &Program{Uniforms: make(map[string]int32)}
	return id
}

func (c *Context) program(id uint32) *Program {
	p, ok := c.Programs[id]
	if !ok {
		c.misuse("unknown program %d", id)
		return &Program{Uniforms: make(map[string]int32)}
	}
	return p
}

func (c *Context) AttachShader(program, shader uint32) {
	c.shader(shader)
	p := c.program(program)
	p.Attached = append(p.Attached, shader)
}

func (c *Context) DetachShader(program, shader uint32) {
	p := c.program(program)
	for i, s := range p.Attached {
		if s == shader {
			p.Attached = append(p.Attached[:i], p.Attached[i+1:]...)
			return
		}
	}
	c.misuse("detach shader %d not attached to %d", shader, program)
}

func (c *Context) LinkProgram(program uint32) {
	p := c.program(program)
	p.Linked, p.Log = false, ""

	stages := make(map[r3d.ShaderStage]bool)
	var names []string
	for _, id := range p.Attached {
		s := c.shader(id)
		if !s.Compiled {
			p.Log = fmt.Sprintf("error: %v shader %d is not compiled", s.Stage, id)
			return
		}
		stages[s.Stage] = true
		names = append(names, s.Uniforms...)
	}
	switch {
	case c.FailLink != "":
		p.Log = c.FailLink
		return
	case !stages[r3d.VertexStage]:
		p.Log = "error: no vertex shader attached"
		return
	case !stages[r3d.FragmentStage]:
		p.Log = "error: no fragment shader attached"
		return
	}

	sort.Strings(names)
	for _, name := range names {
		if _, ok := p.Uniforms[name]; !ok {
			p.Uniforms[name] = int32(len(p.Uniforms))
		}
	}
	p.Linked = true
}

func (c *Context) ProgramLinked(program uint32) bool { return c.program(program).Linked }

func (c *Context) ValidateProgram(program uint32) {
	p := c.program(program)
	p.Validated = p.Linked && c.FailValidate == ""
	if !p.Validated {
		p.Log = c.FailValidate
	}
}

func (c *Context) ProgramValidated(program uint32) bool { return c.program(program).Validated }
func (c *Context) ProgramInfoLog(program uint32) string  { return c.program(program).Log }

func (c *Context) DeleteProgram(program uint32) {
	if _, ok := c.Programs[program]; !ok {
		c.misuse("delete unknown program %d", program)
	}
	if c.CurrentProgram == program {
		c.CurrentProgram = 0
	}
	delete(c.Programs, program)
}

func (c *Context) UseProgram(program uint32) {
	if program != 0 && !c.program(program).Linked {
		c.misuse("use of unlinked program %d", program)
	}
	c.CurrentProgram = program
}

func (c *Context) GetUniformLocation(program uint32, name string) int32 {
	if loc, ok := c.program(program).Uniforms[name]; ok {
		return loc
	}
	return -1
}

func (c *Context) UniformMatrix4(location int32, m mgl32.Mat4) {
	if c.CurrentProgram == 0 {
		c.misuse("uniform upload without a program in use")
	}
	c.Uploads = append(c.Uploads, Upload{Program: c.CurrentProgram, Location: location, Matrix: m})
}

func (c *Context) GenVertexArray() uint32 {
	id := c.id()
	c.VertexArrays[id] = &VertexArray{Attribs: make(map[uint32]Attrib)}
	return id
}

func (c *Context) BindVertexArray(vao uint32) {
	if _, ok := c.VertexArrays[vao]; vao != 0 && !ok {
		c.misuse("bind unknown vertex array %d", vao)
	}
	c.BoundArray = vao
}

func (c *Context) DeleteVertexArray(vao uint32) {
	if _, ok := c.VertexArrays[vao]; !ok {
		c.misuse("delete unknown vertex array %d", vao)
	}
	delete(c.VertexArrays, vao)
}

func (c *Context) GenBuffer() uint32 {
	id := c.id()
	c.Buffers[id] = nil
	return id
}

func (c *Context) BindArrayBuffer(vbo uint32) {
	if _, ok := c.Buffers[vbo]; vbo != 0 && !ok {
		c.misuse("bind unknown buffer %d", vbo)
	}
	c.BoundBuffer = vbo
}

func (c *Context) StaticBufferData(data []float32) {
	if c.BoundBuffer == 0 {
		c.misuse("buffer data without a bound buffer")
		return
	}
	c.Buffers[c.BoundBuffer] = append([]float32(nil), data...)
}

func (c *Context) DeleteBuffer(vbo uint32) {
	if _, ok := c.Buffers[vbo]; !ok {
		c.misuse("delete unknown buffer %d", vbo)
	}
	delete(c.Buffers, vbo)
}

func (c *Context) vertexArray() *VertexArray {
	va, ok := c.VertexArrays[c.BoundArray]
	if !ok {
		c.misuse("no vertex array bound")
		return &VertexArray{Attribs: make(map[uint32]Attrib)}
	}
	return va
}

func (c *Context) VertexAttribPointer(index uint32, size int32, stride int32) {
	va := c.vertexArray()
	a := va.Attribs[index]
	a.Size, a.Stride = size, stride
	va.Attribs[index] = a
	va.Buffer = c.BoundBuffer
}

func (c *Context) EnableVertexAttribArray(index uint32) {
	va := c.vertexArray()
	a := va.Attribs[index]
	a.Enabled = true
	va.Attribs[index] = a
}

func (c *Context) DrawTriangles(first, count int32) {
	if c.CurrentProgram == 0 {
		c.misuse("draw without a program in use")
	}
	if c.BoundArray == 0 {
		c.misuse("draw without a vertex array bound")
	}
	c.Draws = append(c.Draws, Draw{
		Program:     c.CurrentProgram,
		VertexArray: c.BoundArray,
		First:       first,
		Count:       count,
	})
}

func (c *Context) Viewport(x, y, width, height int32) {
	c.Viewports = append(c.Viewports, [4]int32{x, y, width, height})
}

func (c *Context) Clear(color [4]float32) {
	c.Clears = append(c.Clears, color)
}

var uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*;`)

func uniforms(source string) []string {
	var names []string
	for _, m := range uniformDecl.FindAllStringSubmatch(source, -1) {
		names = append(names, m[1])
	}
	return names
}

// check returns a driver style log for the first problem found.
func check(source string) string {
	if !strings.Contains(source, "#version") {
		return "0:1(1): error: missing #version directive"
	}
	if !strings.Contains(source, "void main") {
		return "0:1(1): error: main function not defined"
	}
	line := 1
	var open []rune
	for _, r := range source {
		switch r {
		case '\n':
			line++
		case '{', '(':
			open = append(open, r)
		case '}', ')':
			want := '{'
			if r == ')' {
				want = '('
			}
			if len(open) == 0 || open[len(open)-1] != want {
				return fmt.Sprintf("0:%d(1): error: syntax error, unexpected '%c'", line, r)
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) != 0 {
		return fmt.Sprintf("0:%d(1): error: syntax error, unexpected end of file", line)
	}
	return ""
}
