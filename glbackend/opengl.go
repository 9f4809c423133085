// Package glbackend implements r3d.Context on github.com/go-gl/gl (v4.3-core).
package glbackend

import (
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mogaika/glapp/r3d"
)

// Init loads the GL entry points for the current context.
// With debug set, driver messages are routed to the log when the context
// is 4.3 or newer.
func Init(debug bool) error {
	if err := gl.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize OpenGL")
	}
	logrus.Infof("OpenGL version %q, renderer %q",
		gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	if debug {
		var major, minor int32
		gl.GetIntegerv(gl.MAJOR_VERSION, &major)
		gl.GetIntegerv(gl.MINOR_VERSION, &minor)
		if major < 4 || (major == 4 && minor < 3) {
			logrus.Warnf("debug output needs OpenGL 4.3, context is %d.%d", major, minor)
			return nil
		}
		gl.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
		gl.Enable(gl.DEBUG_OUTPUT)
		gl.DebugMessageCallback(openglLogCallback, nil)
	}
	return nil
}

// Context forwards to the GL functions loaded by Init.
type Context struct{}

var _ r3d.Context = Context{}

var shaderTypes = map[r3d.ShaderStage]uint32{
	r3d.VertexStage:   gl.VERTEX_SHADER,
	r3d.FragmentStage: gl.FRAGMENT_SHADER,
}

func (Context) CreateShader(stage r3d.ShaderStage) uint32 {
	return gl.CreateShader(shaderTypes[stage])
}

func (Context) ShaderSource(shader uint32, source string) {
	csource, free := gl.Strs(source + "\x00")
	defer free()

	gl.ShaderSource(shader, 1, csource, nil)
}

func (Context) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (Context) ShaderCompiled(shader uint32) bool {
	var success int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &success)
	return success != gl.FALSE
}

func (Context) ShaderInfoLog(shader uint32) string {
	var logSize int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logSize)
	if logSize == 0 {
		return ""
	}
	buf := make([]uint8, logSize+1)
	gl.GetShaderInfoLog(shader, int32(len(buf)), &logSize, &buf[0])
	return string(buf[:logSize])
}

func (Context) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (Context) CreateProgram() uint32                { return gl.CreateProgram() }
func (Context) AttachShader(program, shader uint32)  { gl.AttachShader(program, shader) }
func (Context) DetachShader(program, shader uint32)  { gl.DetachShader(program, shader) }
func (Context) LinkProgram(program uint32)           { gl.LinkProgram(program) }
func (Context) ValidateProgram(program uint32)       { gl.ValidateProgram(program) }
func (Context) DeleteProgram(program uint32)         { gl.DeleteProgram(program) }
func (Context) UseProgram(program uint32)            { gl.UseProgram(program) }
func (Context) ProgramLinked(program uint32) bool    { return programStatus(program, gl.LINK_STATUS) }
func (Context) ProgramValidated(program uint32) bool { return programStatus(program, gl.VALIDATE_STATUS) }
func (Context) Viewport(x, y, width, height int32)   { gl.Viewport(x, y, width, height) }
func (Context) DrawTriangles(first, count int32)     { gl.DrawArrays(gl.TRIANGLES, first, count) }
func (Context) BindVertexArray(vao uint32)           { gl.BindVertexArray(vao) }
func (Context) BindArrayBuffer(vbo uint32)           { gl.BindBuffer(gl.ARRAY_BUFFER, vbo) }
func (Context) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }
func (Context) UniformMatrix4(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func programStatus(program uint32, pname uint32) bool {
	var status int32
	gl.GetProgramiv(program, pname, &status)
	return status != gl.FALSE
}

func (Context) ProgramInfoLog(program uint32) string {
	var logSize int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logSize)
	if logSize == 0 {
		return ""
	}
	buf := make([]uint8, logSize+1)
	gl.GetProgramInfoLog(program, int32(len(buf)), &logSize, &buf[0])
	return string(buf[:logSize])
}

func (Context) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (Context) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (Context) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (Context) GenBuffer() uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	return vbo
}

func (Context) DeleteBuffer(vbo uint32) { gl.DeleteBuffers(1, &vbo) }

func (Context) StaticBufferData(data []float32) {
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*int(unsafe.Sizeof(float32(0))), gl.Ptr(data), gl.STATIC_DRAW)
}

func (Context) VertexAttribPointer(index uint32, size int32, stride int32) {
	gl.VertexAttribPointerWithOffset(index, size, gl.FLOAT, false, stride, 0)
}

func (Context) Clear(color [4]float32) {
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

var glConstToString = map[uint32]string{
	gl.DEBUG_SOURCE_API:             "API",
	gl.DEBUG_SOURCE_WINDOW_SYSTEM:   "WINDOW SYSTEM",
	gl.DEBUG_SOURCE_SHADER_COMPILER: "SHADER COMPILER",
	gl.DEBUG_SOURCE_THIRD_PARTY:     "THIRD PARTY",
	gl.DEBUG_SOURCE_APPLICATION:     "APPLICATION",
	gl.DEBUG_SOURCE_OTHER:           "OTHER",

	gl.DEBUG_TYPE_ERROR:               "ERROR",
	gl.DEBUG_TYPE_DEPRECATED_BEHAVIOR: "DEPRECATED BEHAVIOR",
	gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR:  "UNDEFINED BEHAVIOR",
	gl.DEBUG_TYPE_PORTABILITY:         "PORTABILITY",
	gl.DEBUG_TYPE_PERFORMANCE:         "PERFORMANCE",
	gl.DEBUG_TYPE_OTHER:               "OTHER",
	gl.DEBUG_TYPE_MARKER:              "MARKER",

	gl.DEBUG_SEVERITY_HIGH:         "HIGH",
	gl.DEBUG_SEVERITY_MEDIUM:       "MEDIUM",
	gl.DEBUG_SEVERITY_LOW:          "LOW",
	gl.DEBUG_SEVERITY_NOTIFICATION: "NOTIFICATION",
}

func openglLogCallback(source uint32, gltype uint32, id uint32,
	severity uint32, length int32, message string, userParam unsafe.Pointer) {

	entry := logrus.WithFields(logrus.Fields{
		"id":       id,
		"severity": glConstToString[severity],
		"source":   glConstToString[source],
		"type":     glConstToString[gltype],
	})
	switch {
	case gltype == gl.DEBUG_TYPE_ERROR:
		entry.Error(message)
	case severity == gl.DEBUG_SEVERITY_NOTIFICATION:
		entry.Debug(message)
	default:
		entry.Warn(message)
	}
}
