package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits the origin. Dragging rotates both the eye position and the
// up direction, so the view can tumble freely over the poles.
type Camera struct {
	originEye mgl32.Vec3
	originUp  mgl32.Vec3

	eye mgl32.Vec3
	up  mgl32.Vec3
}

// NewCamera creates a camera at eye looking at the origin.
func NewCamera(eye, up mgl32.Vec3) *Camera {
	return &Camera{
		originEye: eye,
		originUp:  up,
		eye:       eye,
		up:        up,
	}
}

// DefaultCamera returns the camera used by the viewer on start-up.
func DefaultCamera() *Camera {
	return NewCamera(mgl32.Vec3{10, 9, 14}, mgl32.Vec3{0, 1, 0})
}

// Eye returns the current eye position.
func (c *Camera) Eye() mgl32.Vec3 {
	return c.eye
}

// Up returns the current up direction.
func (c *Camera) Up() mgl32.Vec3 {
	return c.up
}

// Drag orbits the camera by a pointer movement of (dx, dy) pixels, with dy
// growing downwards as in screen coordinates. A drag across the full width
// turns the view by half a revolution.
func (c *Camera) Drag(dx, dy, width float32) {
	if width <= 0 {
		return
	}
	dy = -dy

	angle := float32(math.Hypot(float64(dx), float64(dy))) * math.Pi / width
	if angle == 0 {
		return
	}

	left := c.eye.Cross(c.up)
	if left.Len() == 0 {
		return
	}
	left = left.Normalize()

	axis := left.Mul(dy).Add(c.up.Mul(dx))
	if axis.Len() == 0 {
		return
	}

	rot := mgl32.HomogRotate3D(-angle, axis.Normalize())
	c.eye = rot.Mul4x1(c.eye.Vec4(1)).Vec3()
	c.up = rot.Mul4x1(c.up.Vec4(0)).Vec3()
}

// Reset returns the camera to its initial position.
func (c *Camera) Reset() {
	c.eye = c.originEye
	c.up = c.originUp
}

// View returns the view matrix looking at center.
func (c *Camera) View(center mgl32.Vec3) mgl32.Mat4 {
	return mgl32.LookAtV(c.eye, center, c.up)
}
