package loaders

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/DarkAce65/raytracer/pkg/core"
	"github.com/DarkAce65/raytracer/pkg/geometry"
)

// LoadGLTF loads a glTF or binary glTF (.glb) file into mesh data. All
// triangle primitives of every mesh in the document are merged.
func LoadGLTF(filename string) (*geometry.MeshData, error) {
	doc, err := gltf.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open gltf file: %w", err)
	}

	mesh := &geometry.MeshData{}
	hasNormals := false
	hasUVs := false

	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			// Skip non-triangle primitives (lines, points)
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				continue
			}

			posIndex, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: failed to read positions: %w", m.Name, err)
			}

			var normals [][3]float32
			if normIndex, ok := prim.Attributes[gltf.NORMAL]; ok {
				normals, err = modeler.ReadNormal(doc, doc.Accessors[normIndex], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q: failed to read normals: %w", m.Name, err)
				}
			}

			var texcoords [][2]float32
			if uvIndex, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
				texcoords, err = modeler.ReadTextureCoord(doc, doc.Accessors[uvIndex], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q: failed to read texcoords: %w", m.Name, err)
				}
			}

			base := len(mesh.Positions)
			for i, p := range positions {
				mesh.Positions = append(mesh.Positions, core.NewVec3(
					float64(p[0]), float64(p[1]), float64(p[2]),
				))
				if i < len(normals) {
					n := normals[i]
					mesh.Normals = append(mesh.Normals, core.NewVec3(
						float64(n[0]), float64(n[1]), float64(n[2]),
					).Normalize())
					hasNormals = true
				} else {
					mesh.Normals = append(mesh.Normals, core.Vec3{})
				}
				if i < len(texcoords) {
					uv := texcoords[i]
					// glTF puts V=0 at the top of the image
					mesh.UVs = append(mesh.UVs, core.NewVec2(
						float64(uv[0]), 1.0-float64(uv[1]),
					))
					hasUVs = true
				} else {
					mesh.UVs = append(mesh.UVs, core.Vec2{})
				}
			}

			if prim.Indices != nil {
				indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q: failed to read indices: %w", m.Name, err)
				}
				for i := 0; i+2 < len(indices); i += 3 {
					mesh.Faces = append(mesh.Faces, geometry.MeshFace{V: [3]int{
						base + int(indices[i]),
						base + int(indices[i+1]),
						base + int(indices[i+2]),
					}})
				}
			} else {
				for i := 0; i+2 < len(positions); i += 3 {
					mesh.Faces = append(mesh.Faces, geometry.MeshFace{V: [3]int{
						base + i, base + i + 1, base + i + 2,
					}})
				}
			}
		}
	}

	if len(mesh.Positions) == 0 {
		return nil, fmt.Errorf("gltf file %q contains no triangle geometry", filename)
	}

	if !hasNormals {
		mesh.Normals = nil
	}
	if !hasUVs {
		mesh.UVs = nil
	}

	return mesh, nil
}
