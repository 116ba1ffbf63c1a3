// Package scene holds the geometry around the transform engine: where each
// slot sits in world space, the orbit camera, the cubie mesh, and the
// per-frame projection used by the window viewer.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/SeamusWaldron/cuberender/internal/operation"
)

// Spacing is the distance between neighbouring slot centres. Cubies have a
// half-size of 1, so a small gap stays visible between them.
const Spacing = 2.01

// Home returns the world-space centre of a slot. Slot s has grid coordinates
// x = s/9, y = (s/3)%3, z = s%3, each mapped to {-Spacing, 0, +Spacing}.
func Home(slot int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(slot/9-1) * Spacing,
		float32((slot/3)%3-1) * Spacing,
		float32(slot%3-1) * Spacing,
	}
}

// SlotAt returns the slot of grid coordinates x, y, z in [0, 3).
func SlotAt(x, y, z int) int {
	return 9*x + 3*y + z
}

// SlotOf returns the slot whose centre is nearest to p, and false when p is
// more than half a spacing away from every slot centre.
func SlotOf(p mgl32.Vec3) (int, bool) {
	var grid [3]int
	for i := 0; i < 3; i++ {
		g := math.Round(float64(p[i]/Spacing)) + 1
		if g < 0 || g > 2 {
			return 0, false
		}
		grid[i] = int(g)
	}
	return SlotAt(grid[0], grid[1], grid[2]), true
}

// InstanceMatrices returns the model matrix of every cubie: its accumulated
// turn matrix applied after the translation to its home slot.
func InstanceMatrices(t operation.Transforms) [operation.SlotCount]mgl32.Mat4 {
	var models [operation.SlotCount]mgl32.Mat4
	for i, m := range t {
		h := Home(i)
		models[i] = m.Mul4(mgl32.Translate3D(h.X(), h.Y(), h.Z()))
	}
	return models
}

// MatrixFloats is the number of float32 values in one 4x4 matrix.
const MatrixFloats = 16

// InstanceBuffer flattens the model matrices into the column-major layout of
// a GPU instance buffer: 27 consecutive blocks of 16 floats.
func InstanceBuffer(t operation.Transforms) []float32 {
	models := InstanceMatrices(t)
	buf := make([]float32, 0, len(models)*MatrixFloats)
	for _, m := range models {
		buf = append(buf, m[:]...)
	}
	return buf
}
