package r3d

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type ProgramState int

const (
	Uninitialized ProgramState = iota
	Compiling
	CompileFailed
	Compiled
	Linking
	LinkFailed
	Linked
	Validating
	ValidateFailed
	Ready
	// Released is terminal, reached through Release from any state.
	Released
)

var programStateNames = [...]string{
	Uninitialized:  "uninitialized",
	Compiling:      "compiling",
	CompileFailed:  "compile failed",
	Compiled:       "compiled",
	Linking:        "linking",
	LinkFailed:     "link failed",
	Linked:         "linked",
	Validating:     "validating",
	ValidateFailed: "validate failed",
	Ready:          "ready",
	Released:       "released",
}

func (s ProgramState) String() string {
	if s >= 0 && int(s) < len(programStateNames) {
		return programStateNames[s]
	}
	return fmt.Sprintf("ProgramState(%d)", int(s))
}

// UniformSlot is a uniform location resolved after linking.
type UniformSlot int32

// Unbound is returned for uniforms the linked program does not expose.
// Uploads to it are silently dropped, like glUniform* with location -1.
const Unbound UniformSlot = -1

// Unit is a compiled shader stage.
type Unit struct {
	Stage ShaderStage
	Id    uint32
}

// Sources is the shader text a program is built from.
type Sources struct {
	Vertex   string
	Fragment string
}

type Program struct {
	Id uint32

	ctx      Context
	sources  Sources
	state    ProgramState
	units    []Unit
	uniforms map[string]UniformSlot
	err      error
}

func NewProgram(ctx Context, sources Sources) *Program {
	return &Program{
		ctx:      ctx,
		sources:  sources,
		uniforms: make(map[string]UniformSlot),
	}
}

// LoadProgram creates a program and runs the full build sequence.
// The program is returned even when the build fails, in a non-ready state.
func LoadProgram(ctx Context, sources Sources) (*Program, error) {
	p := NewProgram(ctx, sources)
	return p, p.Build()
}

func (p *Program) State() ProgramState { return p.state }
func (p *Program) Ready() bool         { return p.state == Ready }

// Err returns the failure that stopped the build, if any.
func (p *Program) Err() error { return p.err }

// Log returns the driver diagnostic of the failed stage.
func (p *Program) Log() string {
	var (
		ce *CompileError
		le *LinkError
		ve *ValidateError
	)
	switch {
	case errors.As(p.err, &ce):
		return ce.Log
	case errors.As(p.err, &le):
		return le.Log
	case errors.As(p.err, &ve):
		return ve.Log
	}
	return ""
}

// Build compiles both stages, links and validates them.
// Compilation is attempted once; a failed program stays failed.
func (p *Program) Build() error {
	vs, err := p.CompileUnit(p.sources.Vertex, VertexStage)
	if err != nil {
		return err
	}
	fs, err := p.CompileUnit(p.sources.Fragment, FragmentStage)
	if err != nil {
		return err
	}
	if err := p.Link(vs, fs); err != nil {
		return err
	}
	return p.Validate()
}

func (p *Program) CompileUnit(source string, stage ShaderStage) (Unit, error) {
	if p.state != Uninitialized && p.state != Compiled {
		return Unit{}, errors.Wrapf(ErrInvalidState, "compile %v shader while %v", stage, p.state)
	}
	p.state = Compiling

	shader := p.ctx.CreateShader(stage)
	p.ctx.ShaderSource(shader, source)
	p.ctx.CompileShader(shader)

	if !p.ctx.ShaderCompiled(shader) {
		errString := p.ctx.ShaderInfoLog(shader)
		logrus.WithField("stage", stage).Errorf("failed to compile shader:\n%s", errString)

		p.ctx.DeleteShader(shader)
		p.deleteUnits()
		return Unit{}, p.fail(CompileFailed, &CompileError{Stage: stage, Log: errString})
	}

	u := Unit{Stage: stage, Id: shader}
	p.units = append(p.units, u)
	p.state = Compiled
	return u, nil
}

// Link attaches units to a new program object and links it.
// Without arguments every unit compiled so far is attached.
func (p *Program) Link(units ...Unit) error {
	if p.state != Compiled {
		return errors.Wrapf(ErrInvalidState, "link while %v", p.state)
	}
	p.state = Linking
	if len(units) == 0 {
		units = p.units
	}

	p.Id = p.ctx.CreateProgram()
	if p.Id == 0 {
		logrus.Error("failed to create shader program")
		p.deleteUnits()
		return p.fail(LinkFailed, ErrCreateProgram)
	}

	for _, u := range units {
		p.ctx.AttachShader(p.Id, u.Id)
	}
	p.ctx.LinkProgram(p.Id)

	if !p.ctx.ProgramLinked(p.Id) {
		errString := p.ctx.ProgramInfoLog(p.Id)
		logrus.WithField("program", p.Id).Errorf("failed to link program:\n%s", errString)

		p.deleteProgram()
		return p.fail(LinkFailed, &LinkError{Log: errString})
	}

	p.state = Linked
	return nil
}

func (p *Program) Validate() error {
	if p.state != Linked {
		return errors.Wrapf(ErrInvalidState, "validate while %v", p.state)
	}
	p.state = Validating

	p.ctx.ValidateProgram(p.Id)
	if !p.ctx.ProgramValidated(p.Id) {
		errString := p.ctx.ProgramInfoLog(p.Id)
		logrus.WithField("program", p.Id).Errorf("failed to validate program:\n%s", errString)

		p.deleteProgram()
		return p.fail(ValidateFailed, &ValidateError{Log: errString})
	}

	p.state = Ready
	logrus.WithField("program", p.Id).Debug("shader program ready")
	return nil
}

// ResolveUniform returns the slot of a named uniform, caching the lookup.
func (p *Program) ResolveUniform(name string) UniformSlot {
	if slot, ok := p.uniforms[name]; ok {
		return slot
	}
	if p.state != Linked && p.state != Validating && p.state != Ready {
		return Unbound
	}

	slot := UniformSlot(p.ctx.GetUniformLocation(p.Id, name))
	if slot < 0 {
		logrus.WithField("program", p.Id).Debugf("uniform %q is not active, uploads are ignored", name)
		slot = Unbound
	}
	p.uniforms[name] = slot
	return slot
}

func (p *Program) Use() {
	p.mustBeReady("use")
	p.ctx.UseProgram(p.Id)
}

func (p *Program) Unuse() {
	p.ctx.UseProgram(0)
}

// UploadMatrix sets a mat4 uniform, column-major as mgl32 stores it.
func (p *Program) UploadMatrix(slot UniformSlot, m mgl32.Mat4) {
	p.mustBeReady("upload matrix")
	if slot == Unbound {
		return
	}
	p.ctx.UniformMatrix4(int32(slot), m)
}

// Release deletes every GL object the program owns. Safe to call twice.
func (p *Program) Release() {
	if p.state == Released {
		return
	}
	p.deleteProgram()
	p.uniforms = make(map[string]UniformSlot)
	p.state = Released
}

func (p *Program) mustBeReady(op string) {
	if p.state != Ready {
		panic(fmt.Sprintf("r3d: %s on program %d while %v", op, p.Id, p.state))
	}
}

func (p *Program) fail(state ProgramState, err error) error {
	p.state = state
	p.err = err
	return err
}

func (p *Program) deleteProgram() {
	if p.Id != 0 {
		for _, u := range p.units {
			p.ctx.DetachShader(p.Id, u.Id)
		}
		p.ctx.DeleteProgram(p.Id)
		p.Id = 0
	}
	p.deleteUnits()
}

func (p *Program) deleteUnits() {
	for _, u := range p.units {
		p.ctx.DeleteShader(u.Id)
	}
	p.units = nil
}
