package geometry

import (
	"github.com/DarkAce65/raytracer/pkg/core"
)

// MeshFace indexes three vertices of a mesh
type MeshFace struct {
	V [3]int
}

// MeshData is triangulated mesh geometry as produced by the loaders. Vertex
// positions are mandatory; normals and UVs are optional (empty slices) and
// fall back to the face normal and zero UV.
type MeshData struct {
	Positions []core.Vec3
	Normals   []core.Vec3
	UVs       []core.Vec2
	Faces     []MeshFace
}

// HasNormals reports whether per-vertex normals are present
func (m *MeshData) HasNormals() bool { return len(m.Normals) > 0 }

// HasUVs reports whether per-vertex texture coordinates are present
func (m *MeshData) HasUVs() bool { return len(m.UVs) > 0 }

// Triangles expands the mesh into one triangle per face. All triangles share
// the given transform and material.
func (m *MeshData) Triangles(transform *core.Transform, material core.Material) []*Triangle {
	triangles := make([]*Triangle, 0, len(m.Faces))

	for _, face := range m.Faces {
		if m.HasNormals() || m.HasUVs() {
			var vertices [3]Vertex
			for i, index := range face.V {
				vertices[i].Position = m.Positions[index]
				if m.HasNormals() {
					vertices[i].Normal = m.Normals[index]
				}
				if m.HasUVs() {
					vertices[i].UV = m.UVs[index]
				}
			}
			if !m.HasNormals() {
				normal := faceNormal(vertices[0].Position, vertices[1].Position, vertices[2].Position)
				vertices[0].Normal = normal
				vertices[1].Normal = normal
				vertices[2].Normal = normal
			}
			triangles = append(triangles, NewTriangleWithVertices(
				vertices[0], vertices[1], vertices[2], transform, material,
			))
			continue
		}

		triangles = append(triangles, NewTriangle(
			m.Positions[face.V[0]],
			m.Positions[face.V[1]],
			m.Positions[face.V[2]],
			transform, material,
		))
	}

	return triangles
}

func faceNormal(v0, v1, v2 core.Vec3) core.Vec3 {
	return v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
}
