package loaders

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/DarkAce65/raytracer/pkg/core"
	"github.com/DarkAce65/raytracer/pkg/geometry"
)

// objKey identifies a unique position/texcoord/normal combination so faces
// that reuse a corner share one mesh vertex
type objKey struct {
	v, vt, vn int
}

// LoadOBJ parses a triangulated wavefront OBJ file. Vertex positions are
// mandatory; normals and texture coordinates are optional. Faces with more
// than three corners are fan-triangulated.
func LoadOBJ(filename string) (*geometry.MeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open obj file: %w", err)
	}
	defer file.Close()

	var positions []core.Vec3
	var normals []core.Vec3
	var texcoords []core.Vec2

	mesh := &geometry.MeshData{}
	vertexIndex := make(map[objKey]int)
	hasNormals := false
	hasUVs := false

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad vertex: %w", filename, lineNo, err)
			}
			positions = append(positions, v)
		case "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: bad normal: %w", filename, lineNo, err)
			}
			normals = append(normals, v)
		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("%s:%d: bad texcoord", filename, lineNo)
			}
			u, errU := strconv.ParseFloat(fields[1], 64)
			v, errV := strconv.ParseFloat(fields[2], 64)
			if errU != nil || errV != nil {
				return nil, fmt.Errorf("%s:%d: bad texcoord", filename, lineNo)
			}
			texcoords = append(texcoords, core.NewVec2(u, v))
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%s:%d: face needs at least 3 vertices", filename, lineNo)
			}

			corners := make([]int, 0, len(fields)-1)
			for _, spec := range fields[1:] {
				key, err := parseFaceCorner(spec, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, fmt.Errorf("%s:%d: %w", filename, lineNo, err)
				}

				index, ok := vertexIndex[key]
				if !ok {
					index = len(mesh.Positions)
					vertexIndex[key] = index
					mesh.Positions = append(mesh.Positions, positions[key.v])
					if key.vn >= 0 {
						mesh.Normals = append(mesh.Normals, normals[key.vn].Normalize())
						hasNormals = true
					} else {
						mesh.Normals = append(mesh.Normals, core.Vec3{})
					}
					if key.vt >= 0 {
						mesh.UVs = append(mesh.UVs, texcoords[key.vt])
						hasUVs = true
					} else {
						mesh.UVs = append(mesh.UVs, core.Vec2{})
					}
				}
				corners = append(corners, index)
			}

			// Fan triangulation for quads and larger polygons
			for i := 1; i+1 < len(corners); i++ {
				mesh.Faces = append(mesh.Faces, geometry.MeshFace{
					V: [3]int{corners[0], corners[i], corners[i+1]},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read obj file: %w", err)
	}

	if len(mesh.Positions) == 0 {
		return nil, fmt.Errorf("obj file %q contains no geometry", filename)
	}

	// Drop attribute arrays that no face referenced so the mesh falls back
	// to face normals / zero UVs
	if !hasNormals {
		mesh.Normals = nil
	}
	if !hasUVs {
		mesh.UVs = nil
	}

	return mesh, nil
}

func parseVec3(fields []string) (core.Vec3, error) {
	if len(fields) < 3 {
		return core.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	x, errX := strconv.ParseFloat(fields[0], 64)
	y, errY := strconv.ParseFloat(fields[1], 64)
	z, errZ := strconv.ParseFloat(fields[2], 64)
	if errX != nil || errY != nil || errZ != nil {
		return core.Vec3{}, fmt.Errorf("non-numeric component")
	}
	return core.NewVec3(x, y, z), nil
}

// parseFaceCorner parses one "v", "v/vt", "v//vn" or "v/vt/vn" face corner.
// OBJ indices are 1-based; negative indices count back from the current end.
func parseFaceCorner(spec string, numPositions, numTexcoords, numNormals int) (objKey, error) {
	key := objKey{v: -1, vt: -1, vn: -1}

	parts := strings.Split(spec, "/")
	if len(parts) == 0 || len(parts) > 3 {
		return key, fmt.Errorf("malformed face corner %q", spec)
	}

	resolve := func(raw string, count int) (int, error) {
		index, err := strconv.Atoi(raw)
		if err != nil {
			return -1, fmt.Errorf("malformed face index %q", raw)
		}
		if index < 0 {
			index = count + index
		} else {
			index--
		}
		if index < 0 || index >= count {
			return -1, fmt.Errorf("face index %q out of range", raw)
		}
		return index, nil
	}

	v, err := resolve(parts[0], numPositions)
	if err != nil {
		return key, err
	}
	key.v = v

	if len(parts) > 1 && parts[1] != "" {
		vt, err := resolve(parts[1], numTexcoords)
		if err != nil {
			return key, err
		}
		key.vt = vt
	}
	if len(parts) > 2 && parts[2] != "" {
		vn, err := resolve(parts[2], numNormals)
		if err != nil {
			return key, err
		}
		key.vn = vn
	}

	return key, nil
}
