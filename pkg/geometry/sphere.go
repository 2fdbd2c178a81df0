package geometry

import (
	"math"

	"github.com/DarkAce65/raytracer/pkg/core"
)

// Sphere is a sphere of the given radius centered at the local-space origin
type Sphere struct {
	Radius    float64
	Transform core.Transform
	Material  core.Material

	bounds core.AABB
}

// NewSphere creates a new sphere
func NewSphere(radius float64, transform core.Transform, material core.Material) *Sphere {
	local := core.NewAABB(
		core.NewVec3All(-radius),
		core.NewVec3All(radius),
	)
	return &Sphere{
		Radius:    radius,
		Transform: transform,
		Material:  material,
		bounds:    transform.Bounds(local),
	}
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	local := s.Transform.LocalRay(ray)

	// Quadratic equation coefficients: at² + bt + c = 0
	oc := local.Origin
	a := local.Direction.Dot(local.Direction)
	halfB := oc.Dot(local.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return nil, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the nearer root first, falling back to the farther one when the
	// nearer is out of range or culled by the side policy
	for _, root := range [2]float64{(-halfB - sqrtD) / a, (-halfB + sqrtD) / a} {
		if root < tMin || root > tMax {
			continue
		}

		localPoint := local.At(root)
		outwardNormal := s.Transform.Normal(localPoint.Multiply(1.0 / s.Radius))
		if culled(s.Material.MaterialSide(), ray.Direction, outwardNormal) {
			continue
		}

		return newHit(ray, root, outwardNormal, s.uv(localPoint), s.Material), true
	}

	return nil, false
}

// uv computes the spherical texture coordinate of a local-space point
func (s *Sphere) uv(localPoint core.Vec3) core.Vec2 {
	p := localPoint.Multiply(1.0 / s.Radius)
	y := math.Max(-1, math.Min(1, p.Y))
	return core.NewVec2(
		math.Atan2(p.Z, p.X)/(2.0*math.Pi)+0.5,
		math.Acos(y)/math.Pi,
	)
}

// BoundingBox returns the world-space bounds of the sphere
func (s *Sphere) BoundingBox() core.AABB {
	return s.bounds
}
