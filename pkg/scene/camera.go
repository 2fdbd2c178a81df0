package scene

import (
	"math"

	"github.com/DarkAce65/raytracer/pkg/core"
)

// Default camera parameters
const (
	DefaultFov = 60.0
)

// Camera generates primary rays through normalized device coordinates
type Camera struct {
	Position core.Vec3
	Target   core.Vec3
	Up       core.Vec3
	Fov      float64 // field of view in degrees across the longer image axis

	// orthonormal camera basis; the camera looks along -w
	u, v, w core.Vec3
	tanFov  float64
}

// NewCamera creates a camera looking from position toward target
func NewCamera(position, target, up core.Vec3, fov float64) *Camera {
	w := position.Subtract(target).Normalize()
	u := up.Cross(w).Normalize()
	v := w.Cross(u)

	return &Camera{
		Position: position,
		Target:   target,
		Up:       up,
		Fov:      fov,
		u:        u,
		v:        v,
		w:        w,
		tanFov:   math.Tan(fov * math.Pi / 360.0),
	}
}

// Ray returns the world-space ray through NDC coordinates (s, t) in [0, 1)²,
// with (0, 0) the top-left corner of the image. The longer image axis spans
// the field of view; the shorter one is scaled down by the aspect ratio.
func (c *Camera) Ray(s, t float64, width, height int) core.Ray {
	x := (2.0*s - 1.0) * c.tanFov
	y := (1.0 - 2.0*t) * c.tanFov

	aspect := float64(width) / float64(height)
	if width < height {
		x *= aspect
	} else {
		y /= aspect
	}

	direction := c.u.Multiply(x).
		Add(c.v.Multiply(y)).
		Subtract(c.w).
		Normalize()

	return core.NewRay(c.Position, direction)
}
