package material

import (
	"github.com/DarkAce65/raytracer/pkg/core"
)

// Phong is the classical Blinn-Phong material with optional perfect
// reflection and refraction
type Phong struct {
	Side            core.MaterialSide
	Color           core.Vec3
	Specular        core.Vec3
	Shininess       float64
	Emissive        core.Vec3
	Reflectivity    float64 // [0, 1], fraction of shading taken by the mirror term
	Opacity         float64 // [0, 1], below 1 the surface transmits
	RefractiveIndex float64
	Texture         *Texture // optional albedo texture
}

// DefaultPhong returns a Phong material with the standard defaults
func DefaultPhong() *Phong {
	return &Phong{
		Side:            core.SideFront,
		Shininess:       30,
		Opacity:         1,
		RefractiveIndex: 1,
	}
}

// MaterialSide implements core.Material
func (m *Phong) MaterialSide() core.MaterialSide { return m.Side }

// Albedo returns the material color modulated by the albedo texture, if any
func (m *Phong) Albedo(uv core.Vec2) core.Vec3 {
	if m.Texture == nil {
		return m.Color
	}
	return m.Color.MultiplyVec(m.Texture.Sample(uv))
}

// Physical is the metallic-roughness material shaded with the Cook-Torrance
// microfacet model
type Physical struct {
	Side              core.MaterialSide
	Color             core.Vec3 // albedo
	Metalness         float64   // [0, 1]
	Roughness         float64   // [0, 1]
	Emissive          core.Vec3
	EmissiveIntensity float64
	Opacity           float64 // [0, 1], below 1 the surface transmits
	RefractiveIndex   float64
	Texture           *Texture // optional albedo texture
}

// DefaultPhysical returns a Physical material with the standard defaults
func DefaultPhysical() *Physical {
	return &Physical{
		Side:              core.SideFront,
		Roughness:         0.5,
		EmissiveIntensity: 1,
		Opacity:           1,
		RefractiveIndex:   1,
	}
}

// MaterialSide implements core.Material
func (m *Physical) MaterialSide() core.MaterialSide { return m.Side }

// Albedo returns the material color modulated by the albedo texture, if any
func (m *Physical) Albedo(uv core.Vec2) core.Vec3 {
	if m.Texture == nil {
		return m.Color
	}
	return m.Color.MultiplyVec(m.Texture.Sample(uv))
}

// EmissiveColor returns the emissive term scaled by its intensity
func (m *Physical) EmissiveColor() core.Vec3 {
	return m.Emissive.Multiply(m.EmissiveIntensity)
}
