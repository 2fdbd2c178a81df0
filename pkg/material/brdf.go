package material

import (
	"math"

	"github.com/DarkAce65/raytracer/pkg/core"
)

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
// with the scalar F0 derived from the refraction ratio
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

// FresnelSchlick is the vector form of Schlick's approximation, used by the
// Cook-Torrance model with a base reflectivity of mix(0.04, albedo, metalness)
func FresnelSchlick(cosTheta float64, f0 core.Vec3) core.Vec3 {
	scale := math.Pow(1.0-cosTheta, 5)
	return f0.Add(core.NewVec3All(1).Subtract(f0).Multiply(scale))
}

// DistributionGGX is the Trowbridge-Reitz GGX normal distribution function
func DistributionGGX(nDotH, roughness float64) float64 {
	a := roughness * roughness
	a2 := a * a

	nDotH2 := nDotH * nDotH
	denom := nDotH2*(a2-1.0) + 1.0
	denom = math.Pi * denom * denom

	return a2 / denom
}

// GeometrySmith is Smith's Schlick-GGX geometry function
func GeometrySmith(nDotV, nDotL, roughness float64) float64 {
	r := roughness + 1.0
	k := r * r / 8.0

	ggx1 := nDotV / (nDotV*(1.0-k) + k)
	ggx2 := nDotL / (nDotL*(1.0-k) + k)

	return ggx1 * ggx2
}

// Refract bends a direction across an interface using Snell's law.
// eta is the ratio of the refractive index on the side the normal points to
// over the index on the opposite side; when the incident direction travels
// along the normal, the ratio is inverted. Returns false on total internal
// reflection.
func Refract(incident, normal core.Vec3, eta float64) (core.Vec3, bool) {
	nDotI := normal.Dot(incident)
	refractionNormal := normal
	if nDotI > 0 {
		// Exiting: flip the interface normal and invert the ratio
		refractionNormal = normal.Negate()
		eta = 1.0 / eta
	}
	cosI := math.Abs(nDotI)

	k := 1.0 - eta*eta*(1.0-cosI*cosI)
	if k < 0 {
		return core.Vec3{}, false
	}

	refracted := incident.Multiply(eta).
		Add(refractionNormal.Multiply(eta*cosI - math.Sqrt(k)))
	return refracted.Normalize(), true
}
