package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestSampleCosineHemisphere_StaysAboveSurface(t *testing.T) {
	random := rand.New(rand.NewSource(3))
	sampler := NewRandomSampler(random)

	normals := []Vec3{
		NewVec3(0, 1, 0),
		NewVec3(1, 0, 0),
		NewVec3(0, 0, -1),
		NewVec3(1, 1, 1).Normalize(),
	}

	for _, normal := range normals {
		for i := 0; i < 1000; i++ {
			direction := SampleCosineHemisphere(normal, sampler.Get2D())

			if math.Abs(direction.Length()-1.0) > 1e-9 {
				t.Fatalf("Sample not unit length: %v", direction)
			}
			if direction.Dot(normal) < 0 {
				t.Fatalf("Sample below surface: %v for normal %v", direction, normal)
			}
		}
	}
}

func TestSampleCone_StaysInsideCone(t *testing.T) {
	random := rand.New(rand.NewSource(17))
	sampler := NewRandomSampler(random)

	direction := NewVec3(0, 0, 1)
	cosWidth := math.Cos(0.3)

	for i := 0; i < 1000; i++ {
		sample := SampleCone(direction, cosWidth, sampler.Get2D())

		if math.Abs(sample.Length()-1.0) > 1e-9 {
			t.Fatalf("Sample not unit length: %v", sample)
		}
		if sample.Dot(direction) < cosWidth-1e-9 {
			t.Fatalf("Sample outside cone: cos=%f, want >= %f",
				sample.Dot(direction), cosWidth)
		}
	}
}

func TestRandomSampler_Range(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(1)))

	for i := 0; i < 1000; i++ {
		v := sampler.Get1D()
		if v < 0 || v >= 1 {
			t.Fatalf("Sample out of [0, 1): %f", v)
		}
	}
}
