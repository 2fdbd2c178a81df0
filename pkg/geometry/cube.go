package geometry

import (
	"math"

	"github.com/DarkAce65/raytracer/pkg/core"
)

// Cube is an axis-aligned box of the given edge length centered at the
// local-space origin
type Cube struct {
	Size      float64
	Transform core.Transform
	Material  core.Material

	bounds core.AABB
}

// NewCube creates a new cube
func NewCube(size float64, transform core.Transform, material core.Material) *Cube {
	half := size / 2.0
	local := core.NewAABB(core.NewVec3All(-half), core.NewVec3All(half))
	return &Cube{
		Size:      size,
		Transform: transform,
		Material:  material,
		bounds:    transform.Bounds(local),
	}
}

// Hit tests if a ray intersects with the cube using the slab method. The hit
// face is the axis whose entry parameter is maximal.
func (c *Cube) Hit(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	local := c.Transform.LocalRay(ray)
	half := c.Size / 2.0

	tNear := math.Inf(-1)
	tFar := math.Inf(1)
	nearAxis, farAxis := 0, 0
	nearSign, farSign := -1.0, 1.0

	for axis := 0; axis < 3; axis++ {
		origin := local.Origin.Axis(axis)
		direction := local.Direction.Axis(axis)

		if math.Abs(direction) < 1e-12 {
			if origin < -half || origin > half {
				return nil, false
			}
			continue
		}

		t1 := (-half - origin) / direction
		t2 := (half - origin) / direction
		sign := -1.0
		if direction < 0 {
			t1, t2 = t2, t1
			sign = 1.0
		}

		if t1 > tNear {
			tNear = t1
			nearAxis = axis
			nearSign = sign
		}
		if t2 < tFar {
			tFar = t2
			farAxis = axis
			farSign = -sign
		}
		if tNear > tFar {
			return nil, false
		}
	}

	// Entry face first, then the exit face for rays starting inside or when
	// the side policy rejects the entry
	candidates := [2]struct {
		t    float64
		axis int
		sign float64
	}{
		{tNear, nearAxis, nearSign},
		{tFar, farAxis, farSign},
	}

	for _, candidate := range candidates {
		if candidate.t < tMin || candidate.t > tMax {
			continue
		}

		outwardNormal := c.Transform.Normal(axisNormal(candidate.axis, candidate.sign))
		if culled(c.Material.MaterialSide(), ray.Direction, outwardNormal) {
			continue
		}

		localPoint := local.At(candidate.t)
		return newHit(ray, candidate.t, outwardNormal, c.uv(localPoint, candidate.axis), c.Material), true
	}

	return nil, false
}

// axisNormal returns the local unit normal along the given axis and sign
func axisNormal(axis int, sign float64) core.Vec3 {
	switch axis {
	case 0:
		return core.NewVec3(sign, 0, 0)
	case 1:
		return core.NewVec3(0, sign, 0)
	default:
		return core.NewVec3(0, 0, sign)
	}
}

// uv remaps the two coordinates of the hit face to [0, 1]
func (c *Cube) uv(localPoint core.Vec3, axis int) core.Vec2 {
	p := localPoint.Multiply(1.0 / c.Size)
	switch axis {
	case 0:
		return core.NewVec2(p.Z+0.5, p.Y+0.5)
	case 1:
		return core.NewVec2(p.X+0.5, p.Z+0.5)
	default:
		return core.NewVec2(p.X+0.5, p.Y+0.5)
	}
}

// BoundingBox returns the world-space bounds of the cube
func (c *Cube) BoundingBox() core.AABB {
	return c.bounds
}
