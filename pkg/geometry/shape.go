package geometry

import (
	"github.com/DarkAce65/raytracer/pkg/core"
)

// Determinant threshold below which plane and triangle intersections are
// rejected as grazing
const degenerateEpsilon = 1e-9

// culled applies the material side policy to a candidate hit: Front rejects
// hits leaving the surface, Back rejects hits entering it
func culled(side core.MaterialSide, rayDirection, worldNormal core.Vec3) bool {
	d := rayDirection.Dot(worldNormal)
	switch side {
	case core.SideFront:
		return d > 0
	case core.SideBack:
		return d < 0
	}
	return false
}

// newHit assembles a hit record in world space, applying the side policy's
// normal flip for two-sided materials
func newHit(ray core.Ray, t float64, worldNormal core.Vec3, uv core.Vec2, material core.Material) *core.HitRecord {
	hit := &core.HitRecord{
		T:        t,
		Point:    ray.At(t),
		UV:       uv,
		Material: material,
	}
	hit.SetFaceNormal(ray, worldNormal, material.MaterialSide())
	return hit
}
