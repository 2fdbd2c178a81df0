package material

import (
	"math"

	"github.com/DarkAce65/raytracer/pkg/core"
)

// Texture is an immutable 2D image sampled bilinearly by UV coordinates.
// UVs outside [0, 1] wrap.
type Texture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major: Pixels[y*Width + x]
}

// NewTexture creates a texture from row-major pixel data
func NewTexture(width, height int, pixels []core.Vec3) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// wrap maps a coordinate into [0, 1)
func wrap(v float64) float64 {
	v -= math.Floor(v)
	if v < 0 {
		v += 1
	}
	return v
}

// Sample returns the bilinearly filtered color at the given UV coordinate.
// V=0 is the bottom of the image.
func (t *Texture) Sample(uv core.Vec2) core.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return core.NewVec3(0, 0, 0)
	}

	u := wrap(uv.X)
	v := wrap(uv.Y)

	// Flip V for image coordinates where the origin is top-left
	fx := u * float64(t.Width)
	fy := (1.0 - v) * float64(t.Height)

	x0 := int(math.Floor(fx - 0.5))
	y0 := int(math.Floor(fy - 0.5))
	dx := fx - 0.5 - float64(x0)
	dy := fy - 0.5 - float64(y0)

	c00 := t.texel(x0, y0)
	c10 := t.texel(x0+1, y0)
	c01 := t.texel(x0, y0+1)
	c11 := t.texel(x0+1, y0+1)

	top := c00.Multiply(1 - dx).Add(c10.Multiply(dx))
	bottom := c01.Multiply(1 - dx).Add(c11.Multiply(dx))
	return top.Multiply(1 - dy).Add(bottom.Multiply(dy))
}

// texel fetches a pixel, wrapping indices modulo the image dimensions
func (t *Texture) texel(x, y int) core.Vec3 {
	x = ((x % t.Width) + t.Width) % t.Width
	y = ((y % t.Height) + t.Height) % t.Height
	return t.Pixels[y*t.Width+x]
}
