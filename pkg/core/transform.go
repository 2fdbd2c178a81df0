package core

import "math"

// Mat4 is a 4×4 matrix stored row-major
type Mat4 [16]float64

// Mat4Identity returns the identity matrix
func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m × other
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r*4+c] = m[r*4+0]*other[0*4+c] + m[r*4+1]*other[1*4+c] +
				m[r*4+2]*other[2*4+c] + m[r*4+3]*other[3*4+c]
		}
	}
	return out
}

// Transpose returns the transposed matrix
func (m Mat4) Transpose() Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c*4+r] = m[r*4+c]
		}
	}
	return out
}

// MulPoint transforms a 3D point (w=1) by the matrix
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3],
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7],
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11],
	}
}

// MulDirection transforms a 3D direction (w=0) by the matrix
func (m Mat4) MulDirection(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z,
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z,
	}
}

// inverseAffine inverts an affine matrix (last row 0 0 0 1) by inverting the
// upper-left 3×3 block and back-transforming the translation column.
func (m Mat4) inverseAffine() Mat4 {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[4], m[5], m[6]
	g, h, i := m[8], m[9], m[10]

	ca := e*i - f*h
	cb := f*g - d*i
	cc := d*h - e*g
	det := a*ca + b*cb + c*cc
	if det == 0 {
		return Mat4Identity()
	}
	invDet := 1.0 / det

	inv := Mat4{
		ca * invDet, (c*h - b*i) * invDet, (b*f - c*e) * invDet, 0,
		cb * invDet, (a*i - c*g) * invDet, (c*d - a*f) * invDet, 0,
		cc * invDet, (b*g - a*h) * invDet, (a*e - b*d) * invDet, 0,
		0, 0, 0, 1,
	}

	t := inv.MulDirection(Vec3{X: m[3], Y: m[7], Z: m[11]})
	inv[3] = -t.X
	inv[7] = -t.Y
	inv[11] = -t.Z
	return inv
}

// Transform is an affine transform with its precomputed inverse and
// inverse-transpose (used to transform normals)
type Transform struct {
	matrix       Mat4
	inverse      Mat4
	invTranspose Mat4
}

// IdentityTransform returns the identity transform
func IdentityTransform() Transform {
	return Transform{
		matrix:       Mat4Identity(),
		inverse:      Mat4Identity(),
		invTranspose: Mat4Identity(),
	}
}

func newTransform(m Mat4) Transform {
	inv := m.inverseAffine()
	return Transform{
		matrix:       m,
		inverse:      inv,
		invTranspose: inv.Transpose(),
	}
}

// Matrix returns the forward matrix
func (t Transform) Matrix() Mat4 { return t.matrix }

// Inverse returns the inverse matrix
func (t Transform) Inverse() Mat4 { return t.inverse }

// Translate returns the transform followed by a translation
func (t Transform) Translate(v Vec3) Transform {
	translation := Mat4{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
	}
	return newTransform(translation.Mul(t.matrix))
}

// Scale returns the transform followed by a non-uniform scale
func (t Transform) Scale(v Vec3) Transform {
	scale := Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
	return newTransform(scale.Mul(t.matrix))
}

// Rotate returns the transform followed by a rotation of the given angle in
// degrees about the given axis
func (t Transform) Rotate(axis Vec3, degrees float64) Transform {
	a := axis.Normalize()
	rad := degrees * math.Pi / 180.0
	sin, cos := math.Sin(rad), math.Cos(rad)
	ic := 1.0 - cos

	rotation := Mat4{
		cos + a.X*a.X*ic, a.X*a.Y*ic - a.Z*sin, a.X*a.Z*ic + a.Y*sin, 0,
		a.Y*a.X*ic + a.Z*sin, cos + a.Y*a.Y*ic, a.Y*a.Z*ic - a.X*sin, 0,
		a.Z*a.X*ic - a.Y*sin, a.Z*a.Y*ic + a.X*sin, cos + a.Z*a.Z*ic, 0,
		0, 0, 0, 1,
	}
	return newTransform(rotation.Mul(t.matrix))
}

// Compose returns t · other, so that other is applied first
func (t Transform) Compose(other Transform) Transform {
	return newTransform(t.matrix.Mul(other.matrix))
}

// Point transforms a point into the transform's target space
func (t Transform) Point(p Vec3) Vec3 {
	return t.matrix.MulPoint(p)
}

// Direction transforms a direction (no translation)
func (t Transform) Direction(d Vec3) Vec3 {
	return t.matrix.MulDirection(d)
}

// Normal transforms a surface normal by the inverse-transpose and renormalizes
func (t Transform) Normal(n Vec3) Vec3 {
	return t.invTranspose.MulDirection(n).Normalize()
}

// InversePoint transforms a point back into local space
func (t Transform) InversePoint(p Vec3) Vec3 {
	return t.inverse.MulPoint(p)
}

// LocalRay transforms a world-space ray into local space. The direction is
// deliberately not renormalized so the parametric t matches between spaces.
func (t Transform) LocalRay(r Ray) Ray {
	return Ray{
		Origin:    t.inverse.MulPoint(r.Origin),
		Direction: t.inverse.MulDirection(r.Direction),
	}
}

// Bounds returns the world-space AABB enclosing the eight transformed corners
// of a local-space AABB
func (t Transform) Bounds(local AABB) AABB {
	corners := [8]Vec3{
		{local.Min.X, local.Min.Y, local.Min.Z},
		{local.Min.X, local.Min.Y, local.Max.Z},
		{local.Min.X, local.Max.Y, local.Min.Z},
		{local.Min.X, local.Max.Y, local.Max.Z},
		{local.Max.X, local.Min.Y, local.Min.Z},
		{local.Max.X, local.Min.Y, local.Max.Z},
		{local.Max.X, local.Max.Y, local.Min.Z},
		{local.Max.X, local.Max.Y, local.Max.Z},
	}

	bounds := NewAABBFromPoints(t.matrix.MulPoint(corners[0]))
	for _, corner := range corners[1:] {
		bounds = bounds.Union(NewAABBFromPoints(t.matrix.MulPoint(corner)))
	}
	return bounds
}

// IsIdentity reports whether the transform is approximately the identity
func (t Transform) IsIdentity() bool {
	id := Mat4Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(t.matrix[i]-id[i]) > 1e-12 {
			return false
		}
	}
	return true
}
