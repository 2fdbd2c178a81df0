package core

import (
	"math"
	"math/rand"
	"testing"
)

// boxShape is a test shape whose surface is its own bounding box
type boxShape struct {
	bounds AABB
}

func (b boxShape) Hit(ray Ray, tMin, tMax float64) (*HitRecord, bool) {
	tNear, _, ok := b.bounds.HitRange(ray, tMin, tMax)
	if !ok || tNear <= tMin {
		return nil, false
	}
	return &HitRecord{T: tNear, Point: ray.At(tNear)}, true
}

func (b boxShape) BoundingBox() AABB {
	return b.bounds
}

func randomShapes(count int, random *rand.Rand) []Shape {
	shapes := make([]Shape, count)
	for i := range shapes {
		center := NewVec3(
			random.Float64()*20-10,
			random.Float64()*20-10,
			random.Float64()*20-10,
		)
		half := NewVec3All(random.Float64()*0.9 + 0.1)
		shapes[i] = boxShape{bounds: NewAABB(center.Subtract(half), center.Add(half))}
	}
	return shapes
}

func linearClosest(shapes []Shape, ray Ray, tMin, tMax float64) (*HitRecord, bool) {
	var closest *HitRecord
	closestSoFar := tMax
	for _, shape := range shapes {
		if hit, ok := shape.Hit(ray, tMin, closestSoFar); ok {
			closest = hit
			closestSoFar = hit.T
		}
	}
	return closest, closest != nil
}

func TestBVH_Empty(t *testing.T) {
	bvh := NewBVH(nil)

	ray := NewRay(NewVec3(0, 0, 0), NewVec3(1, 0, 0))
	if _, ok := bvh.Hit(ray, 0.001, 1000); ok {
		t.Error("Expected no hit for empty BVH")
	}
	if _, ok := bvh.AnyHit(ray, 0.001, 1000); ok {
		t.Error("Expected no any-hit for empty BVH")
	}
}

func TestBVH_RootEnclosesAllPrimitives(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	shapes := randomShapes(200, random)

	bvh := NewBVH(shapes)
	root := bvh.Root()

	for i, shape := range shapes {
		if !root.ContainsAABB(shape.BoundingBox()) {
			t.Fatalf("Root bounds %v do not enclose shape %d bounds %v",
				root, i, shape.BoundingBox())
		}
	}
}

func TestBVH_ClosestHitMatchesLinearScan(t *testing.T) {
	random := rand.New(rand.NewSource(42))
	shapes := randomShapes(300, random)
	bvh := NewBVH(shapes)

	for i := 0; i < 500; i++ {
		origin := NewVec3(
			random.Float64()*40-20,
			random.Float64()*40-20,
			random.Float64()*40-20,
		)
		direction := NewVec3(
			random.Float64()*2-1,
			random.Float64()*2-1,
			random.Float64()*2-1,
		).Normalize()
		if direction.Length() < 0.5 {
			continue
		}
		ray := NewRay(origin, direction)

		bvhHit, bvhOK := bvh.Hit(ray, 0.001, 1000)
		linearHit, linearOK := linearClosest(shapes, ray, 0.001, 1000)

		if bvhOK != linearOK {
			t.Fatalf("Ray %d: BVH hit=%t, linear hit=%t", i, bvhOK, linearOK)
		}
		if bvhOK && math.Abs(bvhHit.T-linearHit.T) > 1e-4 {
			t.Fatalf("Ray %d: BVH t=%f, linear t=%f", i, bvhHit.T, linearHit.T)
		}
	}
}

func TestBVH_AnyHitAgreesOnOcclusion(t *testing.T) {
	random := rand.New(rand.NewSource(99))
	shapes := randomShapes(150, random)
	bvh := NewBVH(shapes)

	for i := 0; i < 300; i++ {
		origin := NewVec3(
			random.Float64()*40-20,
			random.Float64()*40-20,
			random.Float64()*40-20,
		)
		direction := NewVec3(
			random.Float64()*2-1,
			random.Float64()*2-1,
			random.Float64()*2-1,
		).Normalize()
		ray := NewRay(origin, direction)
		maxDistance := random.Float64() * 30

		_, linearOK := linearClosest(shapes, ray, 0.001, maxDistance)
		_, anyOK := bvh.AnyHit(ray, 0.001, maxDistance)

		if anyOK != linearOK {
			t.Fatalf("Ray %d: any-hit=%t, linear=%t", i, anyOK, linearOK)
		}
	}
}

func TestBVH_SingleShape(t *testing.T) {
	shape := boxShape{bounds: NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))}
	bvh := NewBVH([]Shape{shape})

	hit, ok := bvh.Hit(NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, -1)), 0.001, 1000)
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-4) > 1e-9 {
		t.Errorf("Expected t=4, got %f", hit.T)
	}
}
