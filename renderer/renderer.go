// Package renderer drives one animated triangle frame by frame.
package renderer

import (
	_ "embed"

	"github.com/sirupsen/logrus"

	"github.com/mogaika/glapp/anim"
	"github.com/mogaika/glapp/r3d"
	"github.com/mogaika/glapp/rendercontext"
	"github.com/mogaika/glapp/utils"
)

//go:embed shaders/triangle.vert
var triangleVertexShader string

//go:embed shaders/triangle.frag
var triangleFragmentShader string

// ModelUniform is the mat4 uniform receiving the model matrix.
const ModelUniform = "model"

// DefaultSources returns the embedded triangle shaders.
func DefaultSources() r3d.Sources {
	return r3d.Sources{Vertex: triangleVertexShader, Fragment: triangleFragmentShader}
}

type Options struct {
	Animation  anim.Config
	Sources    r3d.Sources
	ClearColor [4]float32
}

// State is everything the frame loop owns between frames.
type State struct {
	ctx        r3d.Context
	program    *r3d.Program
	geometry   *r3d.Geometry
	model      r3d.UniformSlot
	animator   *anim.Animator
	clearColor [4]float32
	resources  *rendercontext.Store
	frames     uint64
	draws      uint64
}

// Initialize uploads the geometry and builds the shader program.
// A shader failure is logged and leaves the state unable to draw; frames
// then only show the clear color.
func Initialize(ctx r3d.Context, opts Options) *State {
	s := &State{
		ctx:        ctx,
		animator:   anim.New(opts.Animation),
		clearColor: opts.ClearColor,
		resources:  rendercontext.NewStore(),
		model:      r3d.Unbound,
	}

	s.geometry = r3d.NewTriangle(ctx)
	s.resources.Track(s.geometry)

	program, err := r3d.LoadProgram(ctx, opts.Sources)
	s.program = program
	s.resources.Track(program)
	if err != nil {
		logrus.WithError(err).Warn("shader program unavailable, drawing disabled")
		utils.LogDump("shader sources:", opts.Sources)
		return s
	}

	s.model = program.ResolveUniform(ModelUniform)
	return s
}

func (s *State) Ready() bool                { return s.program.Ready() }
func (s *State) Program() *r3d.Program      { return s.program }
func (s *State) Geometry() *r3d.Geometry    { return s.geometry }
func (s *State) Animator() *anim.Animator   { return s.animator }
func (s *State) ModelSlot() r3d.UniformSlot { return s.model }

// Frames returns how many frames ran, Draws how many of them drew.
func (s *State) Frames() uint64 { return s.frames }
func (s *State) Draws() uint64  { return s.draws }

// RunFrame renders one frame. The host polls input before and swaps
// buffers after it.
func (s *State) RunFrame() {
	s.frames++
	s.ctx.Clear(s.clearColor)

	s.animator.Advance()
	model := s.animator.Matrix()

	if !s.program.Ready() {
		return
	}

	s.program.Use()
	s.program.UploadMatrix(s.model, model)

	s.geometry.Bind()
	s.geometry.Draw()
	s.geometry.Unbind()

	s.program.Unuse()
	s.draws++
}

// Destroy releases the program and geometry. Later calls do nothing.
func (s *State) Destroy() {
	s.resources.ReleaseAll()
}
