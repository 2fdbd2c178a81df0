package material

import (
	"testing"

	"github.com/DarkAce65/raytracer/pkg/core"
)

// checkerboard returns a 2x2 texture: white in the top-left and bottom-right
func checkerboard() *Texture {
	white := core.NewVec3(1, 1, 1)
	black := core.NewVec3(0, 0, 0)
	return NewTexture(2, 2, []core.Vec3{
		white, black, // image top row
		black, white, // image bottom row
	})
}

func TestTexture_SampleTexelCenters(t *testing.T) {
	texture := checkerboard()

	tests := []struct {
		name string
		uv   core.Vec2
		want core.Vec3
	}{
		// V=0 is the bottom of the image
		{"bottom left", core.NewVec2(0.25, 0.25), core.NewVec3(0, 0, 0)},
		{"bottom right", core.NewVec2(0.75, 0.25), core.NewVec3(1, 1, 1)},
		{"top left", core.NewVec2(0.25, 0.75), core.NewVec3(1, 1, 1)},
		{"top right", core.NewVec2(0.75, 0.75), core.NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := texture.Sample(tt.uv); !vecsClose(got, tt.want, 1e-9) {
				t.Errorf("Sample(%v) = %v, want %v", tt.uv, got, tt.want)
			}
		})
	}
}

func TestTexture_BilinearMidpoint(t *testing.T) {
	texture := checkerboard()

	// Dead center blends all four texels equally
	center := texture.Sample(core.NewVec2(0.5, 0.5))
	if !vecsClose(center, core.NewVec3(0.5, 0.5, 0.5), 1e-9) {
		t.Errorf("Expected 0.5 gray at center, got %v", center)
	}
}

func TestTexture_WrapsUVs(t *testing.T) {
	texture := checkerboard()

	base := texture.Sample(core.NewVec2(0.25, 0.25))
	for _, uv := range []core.Vec2{
		core.NewVec2(1.25, 0.25),
		core.NewVec2(0.25, -0.75),
		core.NewVec2(-1.75, 2.25),
	} {
		if got := texture.Sample(uv); !vecsClose(got, base, 1e-9) {
			t.Errorf("Sample(%v) = %v, want wrapped value %v", uv, got, base)
		}
	}
}

func TestMaterial_AlbedoModulatesTexture(t *testing.T) {
	mat := DefaultPhong()
	mat.Color = core.NewVec3(0.5, 1, 0.25)
	mat.Texture = NewTexture(1, 1, []core.Vec3{{X: 1, Y: 0.5, Z: 1}})

	got := mat.Albedo(core.NewVec2(0.5, 0.5))
	want := core.NewVec3(0.5, 0.5, 0.25)
	if !vecsClose(got, want, 1e-9) {
		t.Errorf("Albedo = %v, want %v", got, want)
	}
}

func TestMaterial_AlbedoWithoutTexture(t *testing.T) {
	mat := DefaultPhysical()
	mat.Color = core.NewVec3(0.1, 0.2, 0.3)

	if got := mat.Albedo(core.NewVec2(0, 0)); got != mat.Color {
		t.Errorf("Albedo = %v, want %v", got, mat.Color)
	}
}
