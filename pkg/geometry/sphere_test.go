package geometry

import (
	"math"
	"testing"

	"github.com/DarkAce65/raytracer/pkg/core"
	"github.com/DarkAce65/raytracer/pkg/material"
)

func vecsClose(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) < tolerance &&
		math.Abs(a.Y-b.Y) < tolerance &&
		math.Abs(a.Z-b.Z) < tolerance
}

func testMaterial(side core.MaterialSide) core.Material {
	mat := material.DefaultPhong()
	mat.Side = side
	return mat
}

func TestSphere_Hit_UnitSphere(t *testing.T) {
	sphere := NewSphere(1, core.IdentityTransform(), testMaterial(core.SideFront))
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	hit, ok := sphere.Hit(ray, core.TMin, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit")
	}

	if math.Abs(hit.T-4) > 1e-9 {
		t.Errorf("Expected t=4, got %f", hit.T)
	}
	if !vecsClose(hit.Point, core.NewVec3(0, 0, 1), 1e-9) {
		t.Errorf("Expected point (0, 0, 1), got %v", hit.Point)
	}
	if !vecsClose(hit.Normal, core.NewVec3(0, 0, 1), 1e-9) {
		t.Errorf("Expected normal (0, 0, 1), got %v", hit.Normal)
	}
	if !hit.FrontFace {
		t.Error("Expected front face hit")
	}
}

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(1, core.IdentityTransform(), testMaterial(core.SideBoth))
	ray := core.NewRay(core.NewVec3(2, 0, 5), core.NewVec3(0, 0, -1))

	if _, ok := sphere.Hit(ray, core.TMin, math.Inf(1)); ok {
		t.Error("Expected miss")
	}
}

func TestSphere_Hit_Transformed(t *testing.T) {
	// Sphere scaled by 2 and moved to (5, 0, 0)
	transform := core.IdentityTransform().
		Scale(core.NewVec3All(2)).
		Translate(core.NewVec3(5, 0, 0))
	sphere := NewSphere(1, transform, testMaterial(core.SideFront))

	ray := core.NewRay(core.NewVec3(5, 0, 10), core.NewVec3(0, 0, -1))
	hit, ok := sphere.Hit(ray, core.TMin, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit")
	}

	if math.Abs(hit.T-8) > 1e-9 {
		t.Errorf("Expected t=8, got %f", hit.T)
	}
	if !vecsClose(hit.Point, core.NewVec3(5, 0, 2), 1e-9) {
		t.Errorf("Expected point (5, 0, 2), got %v", hit.Point)
	}
	if math.Abs(hit.Normal.Length()-1) > 1e-5 {
		t.Errorf("Normal not unit length: %v", hit.Normal)
	}
}

func TestSphere_SidePolicy(t *testing.T) {
	// Ray starting inside the sphere only sees the exit surface
	insideRay := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	tests := []struct {
		name    string
		side    core.MaterialSide
		wantHit bool
	}{
		{"front culls the exit hit", core.SideFront, false},
		{"back accepts the exit hit", core.SideBack, true},
		{"both accepts the exit hit", core.SideBoth, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := NewSphere(1, core.IdentityTransform(), testMaterial(tt.side))
			hit, ok := sphere.Hit(insideRay, core.TMin, math.Inf(1))
			if ok != tt.wantHit {
				t.Fatalf("Expected hit=%t, got %t", tt.wantHit, ok)
			}
			if !ok {
				return
			}
			if tt.side == core.SideBoth && hit.Normal.Dot(insideRay.Direction) > 0 {
				t.Errorf("Two-sided hit normal must oppose the ray, got %v", hit.Normal)
			}
		})
	}
}

func TestSphere_SelfIntersectionBias(t *testing.T) {
	sphere := NewSphere(1, core.IdentityTransform(), testMaterial(core.SideFront))

	// A ray starting exactly on the surface, leaving the sphere, must not
	// re-hit the surface it starts on
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1))
	if _, ok := sphere.Hit(ray, core.TMin, math.Inf(1)); ok {
		t.Error("Expected no self-intersection")
	}
}

func TestSphere_UV(t *testing.T) {
	sphere := NewSphere(1, core.IdentityTransform(), testMaterial(core.SideBoth))

	// Hit the north pole: v should be 0
	ray := core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0))
	hit, ok := sphere.Hit(ray, core.TMin, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.UV.Y) > 1e-9 {
		t.Errorf("Expected v=0 at north pole, got %f", hit.UV.Y)
	}

	// Hit the equator on +x: u = atan2(0, 1)/2π + 0.5 = 0.5, v = 0.5
	ray = core.NewRay(core.NewVec3(5, 0, 0), core.NewVec3(-1, 0, 0))
	hit, ok = sphere.Hit(ray, core.TMin, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.UV.X-0.5) > 1e-9 || math.Abs(hit.UV.Y-0.5) > 1e-9 {
		t.Errorf("Expected uv (0.5, 0.5) at +x equator, got %v", hit.UV)
	}
}

func TestSphere_BoundingBox(t *testing.T) {
	transform := core.IdentityTransform().Translate(core.NewVec3(1, 2, 3))
	sphere := NewSphere(2, transform, testMaterial(core.SideFront))

	bounds := sphere.BoundingBox()
	if !vecsClose(bounds.Min, core.NewVec3(-1, 0, 1), 1e-9) ||
		!vecsClose(bounds.Max, core.NewVec3(3, 4, 5), 1e-9) {
		t.Errorf("Unexpected bounds %v", bounds)
	}
}
