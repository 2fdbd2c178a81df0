package core

// MaterialSide controls which geometric side of a surface accepts hits
type MaterialSide int

// The material side policies. Front rejects hits leaving the surface, Back
// rejects hits entering it, Both accepts either and flips the reported normal
// to oppose the ray.
const (
	SideFront MaterialSide = iota
	SideBack
	SideBoth
)

// Material is the handle primitives carry; the renderer type-switches on the
// concrete material to shade
type Material interface {
	MaterialSide() MaterialSide
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	T         float64  // Parameter t along the ray
	Point     Vec3     // World-space point of intersection
	Normal    Vec3     // World-space surface normal at intersection
	UV        Vec2     // Texture coordinate at intersection
	FrontFace bool     // Whether the ray hit the front face
	Material  Material // Material of the hit object
}

// SetFaceNormal records the outward normal and whether the ray hit the front
// face, honoring the material's side policy: with SideBoth the normal is
// flipped to oppose the ray.
func (h *HitRecord) SetFaceNormal(ray Ray, outwardNormal Vec3, side MaterialSide) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	h.Normal = outwardNormal
	if side == SideBoth && !h.FrontFace {
		h.Normal = outwardNormal.Negate()
	}
}

// Shape is implemented by anything a ray can hit
type Shape interface {
	// Hit reports the nearest intersection with t in (tMin, tMax)
	Hit(ray Ray, tMin, tMax float64) (*HitRecord, bool)
	// BoundingBox returns the world-space bounds of the shape
	BoundingBox() AABB
}
