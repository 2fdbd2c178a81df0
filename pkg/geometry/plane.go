package geometry

import (
	"math"

	"github.com/DarkAce65/raytracer/pkg/core"
)

// Plane is an infinite plane through a local-space point with a local-space
// normal. Planes are unbounded: the scene keeps them out of the BVH and scans
// them linearly.
type Plane struct {
	Normal    core.Vec3 // local-space normal, normalized
	Point     core.Vec3 // local-space point on the plane
	Transform core.Transform
	Material  core.Material

	// local tangent frame for UV projection
	tangent   core.Vec3
	bitangent core.Vec3
}

// NewPlane creates a new plane
func NewPlane(normal, point core.Vec3, transform core.Transform, material core.Material) *Plane {
	n := normal.Normalize()

	// Build an orthonormal tangent frame around the normal
	var helper core.Vec3
	if math.Abs(n.X) > 0.1 {
		helper = core.NewVec3(0, 1, 0)
	} else {
		helper = core.NewVec3(1, 0, 0)
	}
	tangent := helper.Cross(n).Normalize()
	bitangent := n.Cross(tangent)

	return &Plane{
		Normal:    n,
		Point:     point,
		Transform: transform,
		Material:  material,
		tangent:   tangent,
		bitangent: bitangent,
	}
}

// Hit tests if a ray intersects with the plane
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	local := p.Transform.LocalRay(ray)

	denominator := local.Direction.Dot(p.Normal)
	if math.Abs(denominator) < degenerateEpsilon {
		return nil, false
	}

	t := p.Point.Subtract(local.Origin).Dot(p.Normal) / denominator
	if t <= tMin || t > tMax {
		return nil, false
	}

	outwardNormal := p.Transform.Normal(p.Normal)
	if culled(p.Material.MaterialSide(), ray.Direction, outwardNormal) {
		return nil, false
	}

	localPoint := local.At(t)
	return newHit(ray, t, outwardNormal, p.uv(localPoint), p.Material), true
}

// uv projects the hit point onto the plane's tangent frame
func (p *Plane) uv(localPoint core.Vec3) core.Vec2 {
	offset := localPoint.Subtract(p.Point)
	return core.NewVec2(offset.Dot(p.tangent), offset.Dot(p.bitangent))
}

// BoundingBox returns a conservatively large box; planes are unbounded and
// never enter the BVH
func (p *Plane) BoundingBox() core.AABB {
	const largeValue = 1e12
	return core.NewAABB(core.NewVec3All(-largeValue), core.NewVec3All(largeValue))
}
