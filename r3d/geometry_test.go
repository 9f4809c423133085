package r3d_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/glapp/r3d"
	"github.com/mogaika/glapp/r3d/r3dtest"
)

func TestTriangleLayout(t *testing.T) {
	ctx := r3dtest.New()
	g := r3d.NewTriangle(ctx)

	assert.EqualValues(t, 3, g.VertexCount())
	assert.Equal(t, r3d.TriangleVertices, ctx.Buffers[g.VBO])

	va := ctx.VertexArrays[g.VAO]
	require.NotNil(t, va)
	assert.Equal(t, g.VBO, va.Buffer)
	assert.Equal(t, map[uint32]r3dtest.Attrib{0: {Size: 3, Stride: 0, Enabled: true}}, va.Attribs)

	assert.Zero(t, ctx.BoundArray)
	assert.Zero(t, ctx.BoundBuffer)
	assert.Empty(t, ctx.Misuse)
}

func TestGeometryDrawAndRelease(t *testing.T) {
	ctx := r3dtest.New()
	p, err := r3d.LoadProgram(ctx, sources)
	require.NoError(t, err)
	g := r3d.NewGeometry(ctx, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0, 0, 1, 0, 1, 0, 0})

	p.Use()
	g.Bind()
	g.Draw()
	g.Unbind()
	p.Unuse()

	require.Len(t, ctx.Draws, 1)
	assert.Equal(t, r3dtest.Draw{Program: p.Id, VertexArray: g.VAO, First: 0, Count: 6}, ctx.Draws[0])

	g.Release()
	g.Release()
	p.Release()
	assert.Zero(t, ctx.Live())
	assert.Empty(t, ctx.Misuse)
}

func TestGeometryRejectsPartialVertex(t *testing.T) {
	assert.Panics(t, func() { r3d.NewGeometry(r3dtest.New(), []float32{1, 2}) })
	assert.Panics(t, func() { r3d.NewGeometry(r3dtest.New(), nil) })
}
