package scene

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/SeamusWaldron/cuberender/internal/operation"
)

// Projection parameters.
const (
	FieldOfView = 72.0 // degrees
	Near        = 1.0
	Far         = 100.0
)

// ambient is the share of a side's colour that stays visible when it faces
// away from the light.
const ambient = 0.35

var shadow = colorful.Color{R: 0.02, G: 0.02, B: 0.04}

// Triangle is a screen-space triangle ready to be filled.
type Triangle struct {
	Points [3]mgl32.Vec2
	Depth  float32
	Color  colorful.Color
	Slot   int
	Side   Side
}

// Frame describes one rendered view of the cube.
type Frame struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Eye        mgl32.Vec3
	Width      float32
	Height     float32

	// Orientation turns the whole cube about its centre before viewing.
	// The zero value means no rotation.
	Orientation mgl32.Mat4
}

// NewFrame builds a frame for a camera and a viewport size.
func NewFrame(cam *Camera, width, height int) Frame {
	aspect := float32(1)
	if height > 0 {
		aspect = float32(width) / float32(height)
	}
	return Frame{
		View:       cam.View(mgl32.Vec3{}),
		Projection: mgl32.Perspective(mgl32.DegToRad(FieldOfView), aspect, Near, Far),
		Eye:        cam.Eye(),
		Width:      float32(width),
		Height:     float32(height),

		Orientation: mgl32.Ident4(),
	}
}

// Project transforms every cubie by its matrix and returns the visible
// triangles in back-to-front order, lit from the eye position.
func (f Frame) Project(t operation.Transforms) []Triangle {
	models := InstanceMatrices(t)
	orientation := f.Orientation
	if orientation == (mgl32.Mat4{}) {
		orientation = mgl32.Ident4()
	}
	viewProj := f.Projection.Mul4(f.View)
	light := f.Eye.Normalize()

	tris := make([]Triangle, 0, len(models)*len(Indices)/2)
	for slot, model := range models {
		model = orientation.Mul4(model)
		mvp := viewProj.Mul4(model)

		for i := 0; i < len(Indices); i += 3 {
			tri, ok := f.triangle(mvp, Indices[i:i+3])
			if !ok {
				continue
			}

			side := Vertices[Indices[i]].Side
			normal := model.Mul4x1(side.Normal().Vec4(0)).Vec3()
			tri.Color = shade(SideColors[side], normal.Dot(light))
			tri.Slot = slot
			tri.Side = side
			tris = append(tris, tri)
		}
	}

	sort.SliceStable(tris, func(i, j int) bool {
		return tris[i].Depth > tris[j].Depth
	})
	return tris
}

func (f Frame) triangle(mvp mgl32.Mat4, idx []uint16) (Triangle, bool) {
	var ndc [3]mgl32.Vec3
	for k, vi := range idx {
		clip := mvp.Mul4x1(Vertices[vi].Position.Vec4(1))
		if clip.W() <= 0 {
			return Triangle{}, false
		}
		ndc[k] = clip.Vec3().Mul(1 / clip.W())
	}

	// Counter-clockwise in normalized device space faces the viewer.
	a, b, c := ndc[0], ndc[1], ndc[2]
	if (b.X()-a.X())*(c.Y()-a.Y())-(b.Y()-a.Y())*(c.X()-a.X()) <= 0 {
		return Triangle{}, false
	}

	var tri Triangle
	for k, p := range ndc {
		tri.Points[k] = mgl32.Vec2{
			(p.X() + 1) / 2 * f.Width,
			(1 - p.Y()) / 2 * f.Height,
		}
		tri.Depth += p.Z() / 3
	}
	return tri, true
}

func shade(base colorful.Color, lambert float32) colorful.Color {
	if lambert < 0 {
		lambert = 0
	}
	return shadow.BlendLab(base, ambient+(1-ambient)*float64(lambert)).Clamped()
}
