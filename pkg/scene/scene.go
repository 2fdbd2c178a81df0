package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DarkAce65/raytracer/pkg/core"
	"github.com/DarkAce65/raytracer/pkg/geometry"
	"github.com/DarkAce65/raytracer/pkg/lights"
	"github.com/DarkAce65/raytracer/pkg/loaders"
	"github.com/DarkAce65/raytracer/pkg/log"
	"github.com/DarkAce65/raytracer/pkg/material"
)

var logger = log.New("scene")

// Scene is the immutable, flattened world the renderer reads: camera, lights
// and world-space primitives behind a BVH. Unbounded primitives (planes) are
// scanned linearly alongside the BVH.
type Scene struct {
	Width                int
	Height               int
	MaxDepth             int
	MaxOcclusionDistance float64
	SamplesPerPixel      int
	Gamma                float64
	SkipDenoisePass      bool

	Camera *Camera
	Lights []lights.Light

	bvh       *core.BVH
	unbounded []core.Shape
	numShapes int
}

// Load reads, parses and builds a scene from a JSON file. Mesh and texture
// paths are resolved relative to the scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &AssetError{Path: path, Err: err}
	}

	desc, err := ParseDescription(data)
	if err != nil {
		return nil, err
	}

	return desc.Build(filepath.Dir(path))
}

// Build flattens the scene tree into world-space primitives, loads meshes and
// textures relative to assetBase, and constructs the acceleration structure.
func (desc *Description) Build(assetBase string) (*Scene, error) {
	builder := &sceneBuilder{
		assetBase: assetBase,
		textures:  make(map[string]*material.Texture),
	}

	root := core.IdentityTransform()
	for _, obj := range desc.objects {
		if err := builder.flatten(obj, root, nil); err != nil {
			return nil, err
		}
	}

	sc := &Scene{
		Width:                desc.Width,
		Height:               desc.Height,
		MaxDepth:             desc.MaxDepth,
		MaxOcclusionDistance: desc.MaxOcclusionDistance,
		SamplesPerPixel:      desc.SamplesPerPixel,
		Gamma:                desc.Gamma,
		SkipDenoisePass:      desc.SkipDenoisePass,
		Camera:               desc.Camera,
		unbounded:            builder.unbounded,
		numShapes:            len(builder.bounded) + len(builder.unbounded),
	}

	for _, light := range desc.lights {
		switch light.kind {
		case "ambient":
			sc.Lights = append(sc.Lights, lights.NewAmbient(light.color))
		case "point":
			sc.Lights = append(sc.Lights, lights.NewPoint(light.position, light.color, light.intensity))
		}
	}

	logger.Debugf("building BVH over %d bounded primitives (%d unbounded)",
		len(builder.bounded), len(builder.unbounded))
	sc.bvh = core.NewBVH(builder.bounded)

	return sc, nil
}

// NumShapes returns the number of world primitives in the scene
func (s *Scene) NumShapes() int { return s.numShapes }

// RootBounds returns the bounds of the BVH root
func (s *Scene) RootBounds() core.AABB { return s.bvh.Root() }

// Intersect finds the closest hit among the BVH and the unbounded primitives
func (s *Scene) Intersect(ray core.Ray, tMin, tMax float64) (*core.HitRecord, bool) {
	closest, found := s.bvh.Hit(ray, tMin, tMax)
	if found {
		tMax = closest.T
	}

	for _, shape := range s.unbounded {
		if hit, isHit := shape.Hit(ray, tMin, tMax); isHit {
			closest = hit
			found = true
			tMax = hit.T
		}
	}

	return closest, found
}

// Occluded reports whether anything blocks the ray within maxDistance,
// returning the parameter of the blocking hit
func (s *Scene) Occluded(ray core.Ray, tMin, maxDistance float64) (float64, bool) {
	for _, shape := range s.unbounded {
		if hit, isHit := shape.Hit(ray, tMin, maxDistance); isHit {
			return hit.T, true
		}
	}
	return s.bvh.AnyHit(ray, tMin, maxDistance)
}

type sceneBuilder struct {
	assetBase string
	textures  map[string]*material.Texture
	bounded   []core.Shape
	unbounded []core.Shape
}

// flatten walks the tree depth-first, composing transforms and inheriting
// materials, and emits self-contained world primitives
func (b *sceneBuilder) flatten(n *node, parent core.Transform, inherited *parsedMaterial) error {
	world := parent.Compose(n.transform)

	effective := n.material
	if effective == nil {
		effective = inherited
	}

	for _, child := range n.children {
		if err := b.flatten(child, world, effective); err != nil {
			return err
		}
	}

	if n.kind == "group" {
		return nil
	}

	mat, err := b.buildMaterial(effective)
	if err != nil {
		return err
	}

	switch n.kind {
	case "sphere":
		b.bounded = append(b.bounded, geometry.NewSphere(n.radius, world, mat))
	case "cube":
		b.bounded = append(b.bounded, geometry.NewCube(n.size, world, mat))
	case "plane":
		b.unbounded = append(b.unbounded, geometry.NewPlane(n.normal, n.point, world, mat))
	case "triangle":
		transform := world
		if n.normals != nil || n.uvs != nil {
			var vertices [3]geometry.Vertex
			for i := range vertices {
				vertices[i].Position = n.vertices[i]
				if n.normals != nil {
					vertices[i].Normal = n.normals[i]
				}
				if n.uvs != nil {
					vertices[i].UV = n.uvs[i]
				}
			}
			if n.normals == nil {
				normal := n.vertices[1].Subtract(n.vertices[0]).
					Cross(n.vertices[2].Subtract(n.vertices[0])).Normalize()
				for i := range vertices {
					vertices[i].Normal = normal
				}
			}
			b.bounded = append(b.bounded, geometry.NewTriangleWithVertices(
				vertices[0], vertices[1], vertices[2], &transform, mat,
			))
		} else {
			b.bounded = append(b.bounded, geometry.NewTriangle(
				n.vertices[0], n.vertices[1], n.vertices[2], &transform, mat,
			))
		}
	case "mesh":
		mesh, err := b.loadMesh(n.meshFile)
		if err != nil {
			return err
		}
		transform := world
		for _, triangle := range mesh.Triangles(&transform, mat) {
			b.bounded = append(b.bounded, triangle)
		}
		logger.Debugf("expanded mesh %q into %d triangles", n.meshFile, len(mesh.Faces))
	}

	return nil
}

func (b *sceneBuilder) loadMesh(file string) (*geometry.MeshData, error) {
	path := filepath.Join(b.assetBase, file)

	switch strings.ToLower(filepath.Ext(file)) {
	case ".obj":
		mesh, err := loaders.LoadOBJ(path)
		if err != nil {
			return nil, &AssetError{Path: path, Err: err}
		}
		return mesh, nil
	case ".gltf", ".glb":
		mesh, err := loaders.LoadGLTF(path)
		if err != nil {
			return nil, &AssetError{Path: path, Err: err}
		}
		return mesh, nil
	}

	return nil, configErrorf("unsupported mesh format %q", filepath.Ext(file))
}

// buildMaterial resolves a parsed material config, loading and caching its
// texture. A nil config yields the default Phong material.
func (b *sceneBuilder) buildMaterial(config *parsedMaterial) (core.Material, error) {
	if config == nil {
		return material.DefaultPhong(), nil
	}

	var texture *material.Texture
	if config.texturePath != "" {
		path := filepath.Join(b.assetBase, config.texturePath)
		cached, ok := b.textures[path]
		if !ok {
			loaded, err := loaders.LoadTexture(path)
			if err != nil {
				return nil, &AssetError{Path: path, Err: err}
			}
			b.textures[path] = loaded
			cached = loaded
		}
		texture = cached
	}

	switch config.kind {
	case "phong":
		return &material.Phong{
			Side:            config.side,
			Color:           config.color,
			Specular:        config.specular,
			Shininess:       config.shininess,
			Emissive:        config.emissive,
			Reflectivity:    config.reflectivity,
			Opacity:         config.opacity,
			RefractiveIndex: config.refractiveIndex,
			Texture:         texture,
		}, nil
	case "physical":
		return &material.Physical{
			Side:              config.side,
			Color:             config.color,
			Metalness:         config.metalness,
			Roughness:         config.roughness,
			Emissive:          config.emissive,
			EmissiveIntensity: config.emissiveIntensity,
			Opacity:           config.opacity,
			RefractiveIndex:   config.refractiveIndex,
			Texture:           texture,
		}, nil
	}

	return nil, fmt.Errorf("unreachable material kind %q", config.kind)
}
