package r3d

import "fmt"

// TriangleVertices is the default shape: left, right and top corners.
var TriangleVertices = []float32{
	-1.0, -1.0, 0.0,
	1.0, -1.0, 0.0,
	0.0, 1.0, 0.0,
}

const (
	positionAttribute  = 0
	floatsPerPosition  = 3
	tightlyPackedArray = 0
)

// Geometry is an immutable vertex buffer with its vertex array.
type Geometry struct {
	VAO, VBO uint32

	ctx      Context
	count    int32
	released bool
}

func NewTriangle(ctx Context) *Geometry {
	return NewGeometry(ctx, TriangleVertices)
}

// NewGeometry uploads xyz positions into a static buffer bound to attribute 0.
func NewGeometry(ctx Context, positions []float32) *Geometry {
	if len(positions) == 0 || len(positions)%floatsPerPosition != 0 {
		panic(fmt.Sprintf("r3d: %d floats is not a list of xyz positions", len(positions)))
	}

	g := &Geometry{
		ctx:   ctx,
		count: int32(len(positions) / floatsPerPosition),
	}

	g.VAO = ctx.GenVertexArray()
	ctx.BindVertexArray(g.VAO)

	g.VBO = ctx.GenBuffer()
	ctx.BindArrayBuffer(g.VBO)
	ctx.StaticBufferData(positions)

	ctx.VertexAttribPointer(positionAttribute, floatsPerPosition, tightlyPackedArray)
	ctx.EnableVertexAttribArray(positionAttribute)

	ctx.BindArrayBuffer(0)
	ctx.BindVertexArray(0)
	return g
}

func (g *Geometry) VertexCount() int32 { return g.count }

func (g *Geometry) Bind()   { g.ctx.BindVertexArray(g.VAO) }
func (g *Geometry) Unbind() { g.ctx.BindVertexArray(0) }

// Draw issues a single non-instanced triangle list draw of the whole buffer.
func (g *Geometry) Draw() {
	g.ctx.DrawTriangles(0, g.count)
}

func (g *Geometry) Release() {
	if g.released {
		return
	}
	g.released = true
	g.ctx.DeleteBuffer(g.VBO)
	g.ctx.DeleteVertexArray(g.VAO)
	g.VBO, g.VAO = 0, 0
}
