package r3d_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/glapp/r3d"
	"github.com/mogaika/glapp/r3d/r3dtest"
)

const vertexSource = `#version 330
layout (location = 0) in vec3 pos;
uniform mat4 model;
void main() {
	gl_Position = model * vec4(pos, 1.0);
}
`

const fragmentSource = `#version 330
out vec4 color;
void main() {
	color = vec4(1.0, 0.0, 0.0, 1.0);
}
`

var sources = r3d.Sources{Vertex: vertexSource, Fragment: fragmentSource}

func TestProgramReady(t *testing.T) {
	ctx := r3dtest.New()
	p, err := r3d.LoadProgram(ctx, sources)
	require.NoError(t, err)

	assert.True(t, p.Ready())
	assert.Equal(t, r3d.Ready, p.State())
	assert.NotZero(t, p.Id)
	assert.NotEqual(t, r3d.Unbound, p.ResolveUniform("model"))
	assert.Equal(t, r3d.Unbound, p.ResolveUniform("view"))
	assert.Empty(t, p.Log())
	assert.Empty(t, ctx.Misuse)
}

func TestProgramFailures(t *testing.T) {
	tests := []struct {
		name    string
		sources r3d.Sources
		setup   func(*r3dtest.Context)
		state   r3d.ProgramState
		noLog   bool
		check   func(t *testing.T, err error)
	}{
		{
			name:    "vertex syntax",
			sources: r3d.Sources{Vertex: "#version 330\nvoid main() {\n", Fragment: fragmentSource},
			state:   r3d.CompileFailed,
			check: func(t *testing.T, err error) {
				var ce *r3d.CompileError
				require.True(t, errors.As(err, &ce))
				assert.Equal(t, r3d.VertexStage, ce.Stage)
			},
		},
		{
			name:    "fragment without main",
			sources: r3d.Sources{Vertex: vertexSource, Fragment: "#version 330\nout vec4 color;\n"},
			state:   r3d.CompileFailed,
			check: func(t *testing.T, err error) {
				var ce *r3d.CompileError
				require.True(t, errors.As(err, &ce))
				assert.Equal(t, r3d.FragmentStage, ce.Stage)
			},
		},
		{
			name:    "link",
			sources: sources,
			setup:   func(c *r3dtest.Context) { c.FailLink = "error: varying mismatch" },
			state:   r3d.LinkFailed,
			check: func(t *testing.T, err error) {
				var le *r3d.LinkError
				require.True(t, errors.As(err, &le))
				assert.Equal(t, "error: varying mismatch", le.Log)
			},
		},
		{
			name:    "create program",
			sources: sources,
			setup:   func(c *r3dtest.Context) { c.FailCreateProgram = true },
			state:   r3d.LinkFailed,
			noLog:   true,
			check: func(t *testing.T, err error) {
				assert.Equal(t, r3d.ErrCreateProgram, errors.Cause(err))
			},
		},
		{
			name:    "validate",
			sources: sources,
			setup:   func(c *r3dtest.Context) { c.FailValidate = "error: sampler mismatch" },
			state:   r3d.ValidateFailed,
			check: func(t *testing.T, err error) {
				var ve *r3d.ValidateError
				require.True(t, errors.As(err, &ve))
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctx := r3dtest.New()
			if test.setup != nil {
				test.setup(ctx)
			}

			p, err := r3d.LoadProgram(ctx, test.sources)
			require.Error(t, err)
			test.check(t, err)

			assert.Equal(t, test.state, p.State())
			assert.False(t, p.Ready())
			assert.Equal(t, err, p.Err())
			assert.Zero(t, p.Id)
			assert.Equal(t, r3d.Unbound, p.ResolveUniform("model"))
			assert.Zero(t, ctx.Live(), "failed build leaked GL objects")
			assert.Empty(t, ctx.Misuse)
			if !test.noLog {
				assert.NotEmpty(t, p.Log())
			}
		})
	}
}

func TestProgramStepwise(t *testing.T) {
	ctx := r3dtest.New()
	p := r3d.NewProgram(ctx, r3d.Sources{})
	assert.Equal(t, r3d.Uninitialized, p.State())

	assert.True(t, errors.Is(p.Link(), r3d.ErrInvalidState))
	assert.True(t, errors.Is(p.Validate(), r3d.ErrInvalidState))

	vs, err := p.CompileUnit(vertexSource, r3d.VertexStage)
	require.NoError(t, err)
	assert.Equal(t, r3d.Compiled, p.State())
	fs, err := p.CompileUnit(fragmentSource, r3d.FragmentStage)
	require.NoError(t, err)

	require.NoError(t, p.Link(vs, fs))
	assert.Equal(t, r3d.Linked, p.State())
	assert.ElementsMatch(t, []uint32{vs.Id, fs.Id}, ctx.Programs[p.Id].Attached)

	_, err = p.CompileUnit(vertexSource, r3d.VertexStage)
	assert.True(t, errors.Is(err, r3d.ErrInvalidState))

	require.NoError(t, p.Validate())
	assert.True(t, p.Ready())
}

func TestProgramUseAndUpload(t *testing.T) {
	ctx := r3dtest.New()
	p, err := r3d.LoadProgram(ctx, sources)
	require.NoError(t, err)
	model := p.ResolveUniform("model")

	p.Use()
	p.Use()
	assert.Equal(t, p.Id, ctx.CurrentProgram)

	m := mgl32.Translate3D(0.5, 0, 0)
	p.UploadMatrix(model, m)
	p.UploadMatrix(p.ResolveUniform("missing"), mgl32.Ident4())

	require.Len(t, ctx.Uploads, 1)
	assert.Equal(t, int32(model), ctx.Uploads[0].Location)
	assert.Equal(t, m, ctx.Uploads[0].Matrix)

	p.Unuse()
	assert.Zero(t, ctx.CurrentProgram)
	assert.Empty(t, ctx.Misuse)
}

func TestProgramNotReadyPanics(t *testing.T) {
	ctx := r3dtest.New()
	p, err := r3d.LoadProgram(ctx, r3d.Sources{Vertex: "void main() {}", Fragment: fragmentSource})
	require.Error(t, err)

	assert.Panics(t, p.Use)
	assert.Panics(t, func() { p.UploadMatrix(0, mgl32.Ident4()) })
}

func TestProgramRelease(t *testing.T) {
	ctx := r3dtest.New()
	p, err := r3d.LoadProgram(ctx, sources)
	require.NoError(t, err)
	require.NotZero(t, ctx.Live())

	p.Release()
	p.Release()

	assert.Equal(t, r3d.Released, p.State())
	assert.Zero(t, ctx.Live())
	assert.Empty(t, ctx.Misuse)
	assert.Panics(t, p.Use)
}

func TestProgramStateString(t *testing.T) {
	assert.Equal(t, "validate failed", r3d.ValidateFailed.String())
	assert.Equal(t, "ProgramState(42)", r3d.ProgramState(42).String())
	assert.Equal(t, "fragment", r3d.FragmentStage.String())
}
