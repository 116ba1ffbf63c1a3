package operation

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/SeamusWaldron/cuberender/pkg/types"
)

// Axis is one of the cube's three principal axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

// quarterTurn describes a clockwise face turn as a signed quarter rotation
// about a principal axis.
type quarterTurn struct {
	axis Axis
	sign float64 // +1 or -1 quarter turns, right-handed
}

// clockwiseTurns holds the canonical clockwise rotation of each face, indexed
// by types.Face.Index(). Seen from outside the cube, looking at the face,
// every one of these turns the face clockwise.
var clockwiseTurns = [len(types.Faces)]quarterTurn{
	{AxisZ, -1}, // F
	{AxisZ, +1}, // B
	{AxisX, +1}, // L
	{AxisX, -1}, // R
	{AxisY, -1}, // U
	{AxisY, +1}, // D
}

// rotate returns the homogeneous rotation by rad radians about axis.
func rotate(axis Axis, rad float32) mgl32.Mat4 {
	switch axis {
	case AxisX:
		return mgl32.HomogRotate3DX(rad)
	case AxisY:
		return mgl32.HomogRotate3DY(rad)
	case AxisZ:
		return mgl32.HomogRotate3DZ(rad)
	default:
		panic(fmt.Sprintf("operation: unknown axis %d", axis))
	}
}

// snap rounds every entry to the nearest integer. Multiples of a quarter turn
// have entries in {-1, 0, 1}; snapping removes the float32 residue of
// cos(pi/2) so that products of turns stay exact.
func snap(m mgl32.Mat4) mgl32.Mat4 {
	for i := range m {
		m[i] = float32(math.Round(float64(m[i])))
		if m[i] == 0 {
			m[i] = 0 // normalise -0
		}
	}
	return m
}

// ClockwiseRotation returns the quarter-turn rotation matrix of a face.
func ClockwiseRotation(face types.Face) (mgl32.Mat4, error) {
	idx := face.Index()
	if idx < 0 {
		return mgl32.Mat4{}, fmt.Errorf("%w: unknown face %q", ErrInvalidOp, face)
	}
	qt := clockwiseTurns[idx]
	return snap(rotate(qt.axis, float32(qt.sign*math.Pi/2))), nil
}

// AxisOf returns the principal axis a face turns about.
func AxisOf(face types.Face) (Axis, bool) {
	idx := face.Index()
	if idx < 0 {
		return 0, false
	}
	return clockwiseTurns[idx].axis, true
}
