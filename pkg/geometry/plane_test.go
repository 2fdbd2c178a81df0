package geometry

import (
	"math"
	"testing"

	"github.com/DarkAce65/raytracer/pkg/core"
)

func groundPlane(side core.MaterialSide) *Plane {
	return NewPlane(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 0),
		core.IdentityTransform(), testMaterial(side))
}

func TestPlane_Hit_StraightDown(t *testing.T) {
	plane := groundPlane(core.SideFront)
	ray := core.NewRay(core.NewVec3(0, 10, 0), core.NewVec3(0, -1, 0))

	hit, ok := plane.Hit(ray, core.TMin, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-10) > 1e-9 {
		t.Errorf("Expected t=10, got %f", hit.T)
	}
	if !vecsClose(hit.Normal, core.NewVec3(0, 1, 0), 1e-9) {
		t.Errorf("Expected +y normal, got %v", hit.Normal)
	}
}

func TestPlane_Hit_GrazingRayRejected(t *testing.T) {
	plane := groundPlane(core.SideBoth)

	// Nearly parallel to the surface: |d·n| below the epsilon must not hit
	direction := core.NewVec3(1, 1e-10, 0)
	ray := core.NewRay(core.NewVec3(0, 1, 0), direction)

	if _, ok := plane.Hit(ray, core.TMin, math.Inf(1)); ok {
		t.Error("Expected grazing ray to miss")
	}
}

func TestPlane_Hit_SelfIntersection(t *testing.T) {
	plane := groundPlane(core.SideBoth)

	// Starting exactly on the plane and traveling along it must not hit
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0))
	if _, ok := plane.Hit(ray, core.TMin, math.Inf(1)); ok {
		t.Error("Expected no self-intersection")
	}
}

func TestPlane_SidePolicy(t *testing.T) {
	fromBelow := core.NewRay(core.NewVec3(0, -5, 0), core.NewVec3(0, 1, 0))

	tests := []struct {
		name    string
		side    core.MaterialSide
		wantHit bool
	}{
		{"front culls hits from behind", core.SideFront, false},
		{"back accepts hits from behind", core.SideBack, true},
		{"both accepts hits from behind", core.SideBoth, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plane := groundPlane(tt.side)
			hit, ok := plane.Hit(fromBelow, core.TMin, math.Inf(1))
			if ok != tt.wantHit {
				t.Fatalf("Expected hit=%t, got %t", tt.wantHit, ok)
			}
			if ok && tt.side == core.SideBoth && hit.Normal.Dot(fromBelow.Direction) > 0 {
				t.Errorf("Two-sided hit normal must oppose the ray, got %v", hit.Normal)
			}
		})
	}
}

func TestPlane_DoubleReflectionRestoresRay(t *testing.T) {
	// Reflecting a direction twice about the same plane normal must return
	// the original direction
	normal := core.NewVec3(0, 1, 0)
	direction := core.NewVec3(0.3, -0.8, 0.5).Normalize()

	once := core.Reflect(direction, normal)
	twice := core.Reflect(once, normal)

	if !vecsClose(twice, direction, 1e-12) {
		t.Errorf("Expected %v, got %v", direction, twice)
	}
}

func TestPlane_Transformed(t *testing.T) {
	// Ground plane lifted to y=3
	transform := core.IdentityTransform().Translate(core.NewVec3(0, 3, 0))
	plane := NewPlane(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 0), transform, testMaterial(core.SideFront))

	ray := core.NewRay(core.NewVec3(0, 10, 0), core.NewVec3(0, -1, 0))
	hit, ok := plane.Hit(ray, core.TMin, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-7) > 1e-9 {
		t.Errorf("Expected t=7, got %f", hit.T)
	}
}

func TestPlane_UVTangentProjection(t *testing.T) {
	plane := groundPlane(core.SideFront)

	ray := core.NewRay(core.NewVec3(2, 5, 3), core.NewVec3(0, -1, 0))
	hit, ok := plane.Hit(ray, core.TMin, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit")
	}

	// The UV is the hit offset expressed in the plane's tangent frame, so
	// its magnitude matches the offset from the plane's anchor point
	offset := math.Hypot(hit.UV.X, hit.UV.Y)
	if math.Abs(offset-math.Hypot(2, 3)) > 1e-9 {
		t.Errorf("Expected UV magnitude %f, got %f", math.Hypot(2, 3), offset)
	}
}
