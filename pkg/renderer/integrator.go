package renderer

import (
	"math"
	"sync/atomic"

	"github.com/DarkAce65/raytracer/pkg/core"
	"github.com/DarkAce65/raytracer/pkg/lights"
	"github.com/DarkAce65/raytracer/pkg/log"
	"github.com/DarkAce65/raytracer/pkg/material"
	"github.com/DarkAce65/raytracer/pkg/scene"
)

var integratorLogger = log.New("integrator")

// Offset applied along a bounce direction to avoid re-hitting the surface
const shadowBias = core.TMin

// Integrator evaluates light transport for single rays. One integrator is
// owned by each render worker; rayCount accumulates without synchronization.
type Integrator struct {
	scene    *scene.Scene
	rayCount uint64

	nanSeen *atomic.Bool // shared across workers, logs the first NaN only
}

// NewIntegrator creates an integrator for the given scene
func NewIntegrator(sc *scene.Scene, nanSeen *atomic.Bool) *Integrator {
	if nanSeen == nil {
		nanSeen = &atomic.Bool{}
	}
	return &Integrator{scene: sc, nanSeen: nanSeen}
}

// RayCount returns the number of rays cast so far by this integrator
func (in *Integrator) RayCount() uint64 { return in.rayCount }

// RayColor computes the color carried back along a primary ray. NaN results
// are replaced with black.
func (in *Integrator) RayColor(ray core.Ray, sampler core.Sampler) core.Vec3 {
	color := in.shade(ray, 0, sampler)
	if color.IsNaN() {
		if in.nanSeen.CompareAndSwap(false, true) {
			integratorLogger.Warningf("NaN in pixel accumulator, replacing with black")
		}
		return core.Vec3{}
	}
	return color
}

// shade is the recursive shading function. depth counts completed bounces;
// branches that would exceed the scene's maximum depth contribute nothing.
func (in *Integrator) shade(ray core.Ray, depth int, sampler core.Sampler) core.Vec3 {
	in.rayCount++

	hit, found := in.scene.Intersect(ray, core.TMin, math.Inf(1))
	if !found {
		// The background is the scene's ambient light, black without one
		return in.ambientLight()
	}

	var color core.Vec3
	switch mat := hit.Material.(type) {
	case *material.Phong:
		color = in.shadePhong(ray, hit, mat, depth, sampler)
	case *material.Physical:
		color = in.shadePhysical(ray, hit, mat, depth, sampler)
	}

	return color.Clamp(0, math.Inf(1))
}

// occlusion returns the ambient occlusion attenuation for a shading point:
// one cosine-weighted hemisphere sample, attenuating by how close the
// occluder is within the configured distance
func (in *Integrator) occlusion(hit *core.HitRecord, sampler core.Sampler) float64 {
	maxDistance := in.scene.MaxOcclusionDistance
	if maxDistance <= 0 || math.IsInf(maxDistance, 1) {
		return 1.0
	}

	direction := core.SampleCosineHemisphere(hit.Normal, sampler.Get2D())
	occlusionRay := core.NewRay(hit.Point.Add(hit.Normal.Multiply(shadowBias)), direction)

	in.rayCount++
	t, occluded := in.scene.Occluded(occlusionRay, core.TMin, maxDistance)
	if !occluded {
		return 1.0
	}
	// 1 - (1 - t/maxDistance): nearby occluders darken more
	return t / maxDistance
}

// directLight accumulates the contribution of every unoccluded point light
// through the given BRDF evaluation
func (in *Integrator) directLight(hit *core.HitRecord, brdf func(lightDir core.Vec3, lightColor core.Vec3) core.Vec3) core.Vec3 {
	var irradiance core.Vec3

	for _, light := range in.scene.Lights {
		point, ok := light.(*lights.Point)
		if !ok {
			continue
		}

		toLight := point.Position.Subtract(hit.Point)
		distance := toLight.Length()
		lightDir := toLight.Normalize()

		if hit.Normal.Dot(lightDir) <= 0 {
			continue
		}

		shadowRay := core.NewRay(hit.Point.Add(hit.Normal.Multiply(shadowBias)), lightDir)
		in.rayCount++
		if _, occluded := in.scene.Occluded(shadowRay, core.TMin, distance); occluded {
			continue
		}

		irradiance = irradiance.Add(brdf(lightDir, point.ColorAt(distance)))
	}

	return irradiance
}

// ambientLight sums the scene's ambient lights
func (in *Integrator) ambientLight() core.Vec3 {
	var ambient core.Vec3
	for _, light := range in.scene.Lights {
		if a, ok := light.(*lights.Ambient); ok {
			ambient = ambient.Add(a.Color)
		}
	}
	return ambient
}

// shadePhong implements Blinn-Phong shading with perfect reflection and
// refraction
func (in *Integrator) shadePhong(ray core.Ray, hit *core.HitRecord, mat *material.Phong, depth int, sampler core.Sampler) core.Vec3 {
	normal := hit.Normal
	view := ray.Direction.Normalize().Negate()
	albedo := mat.Albedo(hit.UV)

	direct := in.directLight(hit, func(lightDir, lightColor core.Vec3) core.Vec3 {
		nDotL := normal.Dot(lightDir)
		contribution := albedo.MultiplyVec(lightColor).Multiply(nDotL)

		half := lightDir.Add(view).Normalize()
		nDotH := normal.Dot(half)
		if nDotH > 0 {
			specular := mat.Specular.MultiplyVec(lightColor).
				Multiply(math.Pow(nDotH, mat.Shininess))
			contribution = contribution.Add(specular)
		}
		return contribution
	})

	ambient := in.ambientLight().MultiplyVec(albedo)
	local := ambient.Add(direct).Multiply(in.occlusion(hit, sampler))

	color := mat.Emissive.Add(local.Multiply(1.0 - mat.Reflectivity))

	if mat.Reflectivity > 0 && depth < in.scene.MaxDepth {
		reflectDir := core.Reflect(ray.Direction.Normalize(), normal)
		reflectRay := core.NewRay(hit.Point.Add(reflectDir.Multiply(shadowBias)), reflectDir)
		reflected := in.shade(reflectRay, depth+1, sampler).MultiplyVec(albedo)
		color = color.Add(reflected.Multiply(mat.Reflectivity))
	}

	if mat.Opacity < 1 && depth < in.scene.MaxDepth {
		color = in.addTransmission(color, ray, hit, albedo, mat.Opacity, mat.RefractiveIndex, depth, sampler)
	}

	return color
}

// shadePhysical implements the Cook-Torrance metallic-roughness model
func (in *Integrator) shadePhysical(ray core.Ray, hit *core.HitRecord, mat *material.Physical, depth int, sampler core.Sampler) core.Vec3 {
	normal := hit.Normal
	view := ray.Direction.Normalize().Negate()
	albedo := mat.Albedo(hit.UV)

	nDotV := math.Max(0, normal.Dot(view))
	roughness := math.Max(0.04, mat.Roughness)
	f0 := core.NewVec3All(0.04).Lerp(albedo, mat.Metalness)
	fresnel := material.FresnelSchlick(nDotV, f0)

	direct := in.directLight(hit, func(lightDir, lightColor core.Vec3) core.Vec3 {
		nDotL := normal.Dot(lightDir)
		half := lightDir.Add(view).Normalize()
		nDotH := math.Max(0, normal.Dot(half))

		diffuse := core.NewVec3All(1).Subtract(fresnel).
			Multiply(1.0 - mat.Metalness).
			MultiplyVec(albedo).
			Multiply(1.0 / math.Pi)

		brdf := diffuse
		if nDotV > 0 {
			d := material.DistributionGGX(nDotH, roughness)
			g := material.GeometrySmith(nDotV, nDotL, roughness)
			specular := fresnel.Multiply(d * g / (4.0 * nDotV * nDotL))
			brdf = brdf.Add(specular)
		}

		return brdf.MultiplyVec(lightColor).Multiply(nDotL)
	})

	color := mat.EmissiveColor().Add(direct.Multiply(in.occlusion(hit, sampler)))

	if depth < in.scene.MaxDepth {
		// Roughness widens the reflection lobe; a perfectly smooth surface
		// reflects the mirror direction exactly
		reflectDir := core.Reflect(ray.Direction.Normalize(), normal)
		lobeWidth := math.Pi / 2.0 * mat.Roughness * mat.Roughness
		if lobeWidth > 0 {
			reflectDir = core.SampleCone(reflectDir, math.Cos(lobeWidth), sampler.Get2D())
		}
		reflectRay := core.NewRay(hit.Point.Add(reflectDir.Multiply(shadowBias)), reflectDir)
		reflected := in.shade(reflectRay, depth+1, sampler).MultiplyVec(fresnel)
		color = color.Add(reflected)
	}

	if mat.Opacity < 1 && depth < in.scene.MaxDepth {
		color = in.addTransmission(color, ray, hit, albedo, mat.Opacity, mat.RefractiveIndex, depth, sampler)
	}

	return color
}

// addTransmission blends refraction through a partially transparent surface
// into the local shading: the Schlick reflectance splits the non-opaque
// fraction between a mirror bounce and the transmitted ray, and total
// internal reflection folds everything into the mirror bounce.
func (in *Integrator) addTransmission(local core.Vec3, ray core.Ray, hit *core.HitRecord, albedo core.Vec3, opacity, refractiveIndex float64, depth int, sampler core.Sampler) core.Vec3 {
	normal := hit.Normal
	incident := ray.Direction.Normalize()
	eta := 1.0 / refractiveIndex // outside over inside; Refract flips when exiting

	cosTheta := math.Min(1.0, math.Abs(incident.Dot(normal)))
	reflectance := material.Reflectance(cosTheta, eta)

	reflectDir := core.Reflect(incident, normal)
	reflectRay := core.NewRay(hit.Point.Add(reflectDir.Multiply(shadowBias)), reflectDir)

	refractDir, refracts := material.Refract(incident, normal, eta)
	if !refracts {
		// Total internal reflection: the whole transmitted fraction reflects
		reflected := in.shade(reflectRay, depth+1, sampler)
		return local.Multiply(opacity).Add(reflected.Multiply(1.0 - opacity))
	}

	refractRay := core.NewRay(hit.Point.Add(refractDir.Multiply(shadowBias)), refractDir)
	transmitted := in.shade(refractRay, depth+1, sampler).MultiplyVec(albedo)
	reflected := in.shade(reflectRay, depth+1, sampler)

	result := local.Multiply(opacity)
	result = result.Add(reflected.Multiply(reflectance * (1.0 - opacity)))
	result = result.Add(transmitted.Multiply((1.0 - reflectance) * (1.0 - opacity)))
	return result
}
