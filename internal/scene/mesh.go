package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

// Side identifies one of the six sides of the cubie mesh.
type Side int

const (
	SideFront Side = iota
	SideBack
	SideTop
	SideBottom
	SideRight
	SideLeft
)

// SideCount is the number of sides of a cubie.
const SideCount = 6

// Normal returns the outward unit normal of the side in model space.
func (s Side) Normal() mgl32.Vec3 {
	switch s {
	case SideFront:
		return mgl32.Vec3{0, 0, 1}
	case SideBack:
		return mgl32.Vec3{0, 0, -1}
	case SideTop:
		return mgl32.Vec3{0, 1, 0}
	case SideBottom:
		return mgl32.Vec3{0, -1, 0}
	case SideRight:
		return mgl32.Vec3{1, 0, 0}
	case SideLeft:
		return mgl32.Vec3{-1, 0, 0}
	}
	return mgl32.Vec3{}
}

// String returns the side name.
func (s Side) String() string {
	switch s {
	case SideFront:
		return "front"
	case SideBack:
		return "back"
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	case SideRight:
		return "right"
	case SideLeft:
		return "left"
	}
	return "unknown"
}

// SideColors is the colour of each side, indexed by Side.
var SideColors = [SideCount]colorful.Color{
	{R: 1, G: 1, B: 1},                     // front: white
	{R: 1, G: 0, B: 117.0 / 255},           // back: red
	{R: 0, G: 1, B: 0},                     // top: green
	{R: 0, G: 145.0 / 255, B: 230.0 / 255}, // bottom: blue
	{R: 1, G: 1, B: 0},                     // right: yellow
	{R: 1, G: 0, B: 1},                     // left: purple
}

// Vertex is one corner of a cubie side.
type Vertex struct {
	Position mgl32.Vec3
	Side     Side
}

// Color returns the vertex colour.
func (v Vertex) Color() colorful.Color {
	return SideColors[v.Side]
}

// Vertices lists four corners per side. Each side is wound counter-clockwise
// when seen from outside the cubie.
var Vertices = [SideCount * 4]Vertex{
	{mgl32.Vec3{-1, -1, 1}, SideFront},
	{mgl32.Vec3{1, -1, 1}, SideFront},
	{mgl32.Vec3{1, 1, 1}, SideFront},
	{mgl32.Vec3{-1, 1, 1}, SideFront},

	{mgl32.Vec3{-1, -1, -1}, SideBack},
	{mgl32.Vec3{-1, 1, -1}, SideBack},
	{mgl32.Vec3{1, 1, -1}, SideBack},
	{mgl32.Vec3{1, -1, -1}, SideBack},

	{mgl32.Vec3{-1, 1, -1}, SideTop},
	{mgl32.Vec3{-1, 1, 1}, SideTop},
	{mgl32.Vec3{1, 1, 1}, SideTop},
	{mgl32.Vec3{1, 1, -1}, SideTop},

	{mgl32.Vec3{-1, -1, -1}, SideBottom},
	{mgl32.Vec3{1, -1, -1}, SideBottom},
	{mgl32.Vec3{1, -1, 1}, SideBottom},
	{mgl32.Vec3{-1, -1, 1}, SideBottom},

	{mgl32.Vec3{1, -1, -1}, SideRight},
	{mgl32.Vec3{1, 1, -1}, SideRight},
	{mgl32.Vec3{1, 1, 1}, SideRight},
	{mgl32.Vec3{1, -1, 1}, SideRight},

	{mgl32.Vec3{-1, -1, -1}, SideLeft},
	{mgl32.Vec3{-1, -1, 1}, SideLeft},
	{mgl32.Vec3{-1, 1, 1}, SideLeft},
	{mgl32.Vec3{-1, 1, -1}, SideLeft},
}

// Indices splits every side into two triangles.
var Indices = [SideCount * 6]uint16{
	0, 1, 2, 0, 2, 3,
	4, 5, 6, 4, 6, 7,
	8, 9, 10, 8, 10, 11,
	12, 13, 14, 12, 14, 15,
	16, 17, 18, 16, 18, 19,
	20, 21, 22, 20, 22, 23,
}

// VertexFloats is the number of float32 values per vertex in VertexBuffer:
// three for the position and four for the RGBA colour.
const VertexFloats = 7

// VertexBuffer returns the interleaved position and colour data of the mesh.
func VertexBuffer() []float32 {
	buf := make([]float32, 0, len(Vertices)*VertexFloats)
	for _, v := range Vertices {
		c := v.Color()
		buf = append(buf,
			v.Position.X(), v.Position.Y(), v.Position.Z(),
			float32(c.R), float32(c.G), float32(c.B), 1,
		)
	}
	return buf
}
