package lights

import (
	"github.com/DarkAce65/raytracer/pkg/core"
)

// Ambient is a constant-color light with no position or falloff
type Ambient struct {
	Color core.Vec3
}

// NewAmbient creates an ambient light
func NewAmbient(color core.Vec3) *Ambient {
	return &Ambient{Color: color}
}

// Point is a point light positioned by its transform, with inverse-square
// falloff scaled by intensity
type Point struct {
	Position  core.Vec3
	Color     core.Vec3
	Intensity float64
}

// NewPoint creates a point light at the given world position
func NewPoint(position, color core.Vec3, intensity float64) *Point {
	return &Point{
		Position:  position,
		Color:     color,
		Intensity: intensity,
	}
}

// ColorAt returns the light color scaled by intensity / distance²
func (l *Point) ColorAt(distance float64) core.Vec3 {
	if distance <= 0 {
		return l.Color.Multiply(l.Intensity)
	}
	return l.Color.Multiply(l.Intensity / (distance * distance))
}

// Light is either an ambient or a point light
type Light interface {
	light()
}

func (*Ambient) light() {}
func (*Point) light()   {}
