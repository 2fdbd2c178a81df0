package geometry

import (
	"math"

	"github.com/DarkAce65/raytracer/pkg/core"
)

// Vertex is one corner of a triangle with its optional shading attributes
type Vertex struct {
	Position core.Vec3
	Normal   core.Vec3
	UV       core.Vec2
}

// Triangle is a single triangle in local space. Mesh triangles share one
// transform and material between all faces.
type Triangle struct {
	V0, V1, V2 Vertex
	Transform  *core.Transform
	Material   core.Material

	smooth bool // interpolate vertex normals instead of the face normal
	normal core.Vec3
	bounds core.AABB
}

// NewTriangle creates a triangle from plain positions, shading with the face
// normal and zero UVs
func NewTriangle(v0, v1, v2 core.Vec3, transform *core.Transform, material core.Material) *Triangle {
	t := &Triangle{
		V0:        Vertex{Position: v0},
		V1:        Vertex{Position: v1},
		V2:        Vertex{Position: v2},
		Transform: transform,
		Material:  material,
	}
	t.finish()
	return t
}

// NewTriangleWithVertices creates a triangle with per-vertex normals and UVs
func NewTriangleWithVertices(v0, v1, v2 Vertex, transform *core.Transform, material core.Material) *Triangle {
	t := &Triangle{
		V0:        v0,
		V1:        v1,
		V2:        v2,
		Transform: transform,
		Material:  material,
		smooth:    true,
	}
	t.finish()
	return t
}

func (t *Triangle) finish() {
	edge1 := t.V1.Position.Subtract(t.V0.Position)
	edge2 := t.V2.Position.Subtract(t.V0.Position)
	t.normal = edge1.Cross(edge2).Normalize()
	t.bounds = t.Transform.Bounds(core.NewAABBFromPoints(
		t.V0.Position, t.V1.Position, t.V2.Position,
	))
}

// FaceNormal returns the local-space geometric normal
func (t *Triangle) FaceNormal() core.Vec3 {
	return t.normal
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore
// algorithm
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	local := t.Transform.LocalRay(ray)

	edge1 := t.V1.Position.Subtract(t.V0.Position)
	edge2 := t.V2.Position.Subtract(t.V0.Position)

	h := local.Direction.Cross(edge2)
	det := edge1.Dot(h)
	if math.Abs(det) < degenerateEpsilon {
		return nil, false
	}

	invDet := 1.0 / det
	s := local.Origin.Subtract(t.V0.Position)
	u := invDet * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return nil, false
	}

	q := s.Cross(edge1)
	v := invDet * local.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return nil, false
	}

	tParam := invDet * edge2.Dot(q)
	if tParam < tMin || tParam > tMax {
		return nil, false
	}

	w := 1.0 - u - v
	localNormal := t.normal
	if t.smooth {
		localNormal = t.V0.Normal.Multiply(w).
			Add(t.V1.Normal.Multiply(u)).
			Add(t.V2.Normal.Multiply(v)).
			Normalize()
	}

	outwardNormal := t.Transform.Normal(localNormal)
	if culled(t.Material.MaterialSide(), ray.Direction, outwardNormal) {
		return nil, false
	}

	uv := t.V0.UV.Multiply(w).
		Add(t.V1.UV.Multiply(u)).
		Add(t.V2.UV.Multiply(v))

	return newHit(ray, tParam, outwardNormal, uv, t.Material), true
}

// BoundingBox returns the world-space bounds of the triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bounds
}
