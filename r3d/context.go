package r3d

import "github.com/go-gl/mathgl/mgl32"

// Context is the subset of the OpenGL API used by the renderer.
// Calls are only valid on the thread that owns the GL context.
type Context interface {
	CreateShader(stage ShaderStage) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	ShaderCompiled(shader uint32) bool
	ShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32)
	ProgramLinked(program uint32) bool
	ValidateProgram(program uint32)
	ProgramValidated(program uint32) bool
	ProgramInfoLog(program uint32) string
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	GetUniformLocation(program uint32, name string) int32
	UniformMatrix4(location int32, m mgl32.Mat4)

	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	GenBuffer() uint32
	BindArrayBuffer(vbo uint32)
	StaticBufferData(data []float32)
	DeleteBuffer(vbo uint32)
	VertexAttribPointer(index uint32, size int32, stride int32)
	EnableVertexAttribArray(index uint32)

	DrawTriangles(first, count int32)
	Viewport(x, y, width, height int32)
	Clear(color [4]float32)
}

type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}
