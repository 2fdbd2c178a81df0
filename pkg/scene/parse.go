package scene

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/DarkAce65/raytracer/pkg/core"
)

// Scene description defaults
const (
	DefaultMaxDepth        = 3
	DefaultSamplesPerPixel = 4
	DefaultGamma           = 2.2
)

// strictUnmarshal decodes JSON and rejects unknown fields
func strictUnmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func toVec3(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// Description is a parsed scene file, not yet bound to its assets. Build
// flattens it into a renderable Scene.
type Description struct {
	Width                int
	Height               int
	MaxDepth             int
	MaxOcclusionDistance float64
	SamplesPerPixel      int
	Gamma                float64
	SkipDenoisePass      bool

	Camera *Camera

	lights  []parsedLight
	objects []*node
}

type parsedLight struct {
	kind      string // "ambient" | "point"
	color     core.Vec3
	intensity float64
	position  core.Vec3
}

// node is one parsed scene-tree node
type node struct {
	kind      string
	transform core.Transform
	material  *parsedMaterial // nil inherits from the enclosing group
	children  []*node

	// geometry payload, by kind
	radius   float64        // sphere
	size     float64        // cube
	normal   core.Vec3      // plane
	point    core.Vec3      // plane
	vertices [3]core.Vec3   // triangle
	normals  *[3]core.Vec3  // triangle, optional
	uvs      *[3]core.Vec2  // triangle, optional
	meshFile string         // mesh
}

// parsedMaterial is a material config with its texture still unresolved
type parsedMaterial struct {
	kind string // "phong" | "physical"
	side core.MaterialSide

	color             core.Vec3
	specular          core.Vec3
	shininess         float64
	emissive          core.Vec3
	emissiveIntensity float64
	reflectivity      float64
	opacity           float64
	metalness         float64
	roughness         float64
	refractiveIndex   float64
	texturePath       string
}

type fileScene struct {
	Width                int               `json:"width"`
	Height               int               `json:"height"`
	MaxDepth             *int              `json:"max_depth"`
	MaxOcclusionDistance *float64          `json:"max_occlusion_distance"`
	SamplesPerPixel      *int              `json:"samples_per_pixel"`
	Gamma                *float64          `json:"gamma"`
	SkipDenoisePass      bool              `json:"skip_denoise_pass"`
	Camera               *fileCamera       `json:"camera"`
	Lights               []json.RawMessage `json:"lights"`
	Objects              []json.RawMessage `json:"objects"`
}

type fileCamera struct {
	Position *[3]float64 `json:"position"`
	Target   *[3]float64 `json:"target"`
	Up       *[3]float64 `json:"up"`
	Fov      *float64    `json:"fov"`
}

// ParseDescription parses and validates a scene JSON document
func ParseDescription(data []byte) (*Description, error) {
	var file fileScene
	if err := strictUnmarshal(data, &file); err != nil {
		return nil, configErrorf("invalid scene JSON: %w", err)
	}

	if file.Width <= 0 || file.Height <= 0 {
		return nil, configErrorf("image dimensions must be positive, got %dx%d", file.Width, file.Height)
	}

	desc := &Description{
		Width:                file.Width,
		Height:               file.Height,
		MaxDepth:             DefaultMaxDepth,
		MaxOcclusionDistance: math.Inf(1),
		SamplesPerPixel:      DefaultSamplesPerPixel,
		Gamma:                DefaultGamma,
		SkipDenoisePass:      file.SkipDenoisePass,
	}
	if file.MaxDepth != nil {
		if *file.MaxDepth < 0 {
			return nil, configErrorf("max_depth must not be negative")
		}
		desc.MaxDepth = *file.MaxDepth
	}
	if file.MaxOcclusionDistance != nil {
		desc.MaxOcclusionDistance = *file.MaxOcclusionDistance
	}
	if file.SamplesPerPixel != nil {
		if *file.SamplesPerPixel <= 0 {
			return nil, configErrorf("samples_per_pixel must be positive")
		}
		desc.SamplesPerPixel = *file.SamplesPerPixel
	}
	if file.Gamma != nil {
		if *file.Gamma <= 0 {
			return nil, configErrorf("gamma must be positive")
		}
		desc.Gamma = *file.Gamma
	}

	desc.Camera = parseCamera(file.Camera)

	for _, raw := range file.Lights {
		light, err := parseLight(raw)
		if err != nil {
			return nil, err
		}
		desc.lights = append(desc.lights, light)
	}

	for _, raw := range file.Objects {
		obj, err := parseNode(raw)
		if err != nil {
			return nil, err
		}
		desc.objects = append(desc.objects, obj)
	}

	return desc, nil
}

func parseCamera(file *fileCamera) *Camera {
	position := core.NewVec3(0, 0, 1)
	target := core.NewVec3(0, 0, 0)
	up := core.NewVec3(0, 1, 0)
	fov := DefaultFov

	if file != nil {
		if file.Position != nil {
			position = toVec3(*file.Position)
		}
		if file.Target != nil {
			target = toVec3(*file.Target)
		}
		if file.Up != nil {
			up = toVec3(*file.Up)
		}
		if file.Fov != nil {
			fov = *file.Fov
		}
	}

	return NewCamera(position, target, up, fov)
}

type fileAmbientLight struct {
	Type  string      `json:"type"`
	Color *[3]float64 `json:"color"`
}

type filePointLight struct {
	Type      string            `json:"type"`
	Color     *[3]float64       `json:"color"`
	Intensity *float64          `json:"intensity"`
	Position  *[3]float64       `json:"position"`
	Transform []json.RawMessage `json:"transform"`
}

func parseLight(raw json.RawMessage) (parsedLight, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return parsedLight{}, configErrorf("invalid light: %w", err)
	}

	switch head.Type {
	case "ambient":
		var file fileAmbientLight
		if err := strictUnmarshal(raw, &file); err != nil {
			return parsedLight{}, configErrorf("invalid ambient light: %w", err)
		}
		light := parsedLight{kind: "ambient"}
		if file.Color != nil {
			light.color = toVec3(*file.Color)
		}
		return light, nil

	case "point":
		var file filePointLight
		if err := strictUnmarshal(raw, &file); err != nil {
			return parsedLight{}, configErrorf("invalid point light: %w", err)
		}
		light := parsedLight{
			kind:      "point",
			color:     core.NewVec3(1, 1, 1),
			intensity: 1,
		}
		if file.Color != nil {
			light.color = toVec3(*file.Color)
		}
		if file.Intensity != nil {
			light.intensity = *file.Intensity
		}
		position := core.NewVec3(0, 0, 0)
		if file.Position != nil {
			position = toVec3(*file.Position)
		}
		transform, err := parseTransform(file.Transform)
		if err != nil {
			return parsedLight{}, err
		}
		light.position = transform.Point(position)
		return light, nil

	default:
		return parsedLight{}, configErrorf("unknown light type %q", head.Type)
	}
}

// parseVec3Strict decodes a JSON array that must have exactly 3 components
// (decoding into a fixed-size Go array would silently pad or truncate)
func parseVec3Strict(raw json.RawMessage, what string) (core.Vec3, error) {
	var components []float64
	if err := json.Unmarshal(raw, &components); err != nil {
		return core.Vec3{}, configErrorf("invalid %s: %w", what, err)
	}
	if len(components) != 3 {
		return core.Vec3{}, configErrorf("%s expects 3 components, got %d", what, len(components))
	}
	return core.NewVec3(components[0], components[1], components[2]), nil
}

// parseTransform composes a transform list; the first entry is applied first
// to local geometry
func parseTransform(entries []json.RawMessage) (core.Transform, error) {
	transform := core.IdentityTransform()

	for _, raw := range entries {
		var entry map[string]json.RawMessage
		if err := json.Unmarshal(raw, &entry); err != nil {
			return transform, configErrorf("invalid transform entry: %w", err)
		}
		if len(entry) != 1 {
			return transform, configErrorf("transform entries must have exactly one operation, got %d", len(entry))
		}

		for op, value := range entry {
			switch op {
			case "translate":
				v, err := parseVec3Strict(value, "translate")
				if err != nil {
					return transform, err
				}
				transform = transform.Translate(v)
			case "scale":
				v, err := parseVec3Strict(value, "scale")
				if err != nil {
					return transform, err
				}
				transform = transform.Scale(v)
			case "rotate":
				var args []json.RawMessage
				if err := json.Unmarshal(value, &args); err != nil || len(args) != 2 {
					return transform, configErrorf("rotate expects [[x, y, z], degrees]")
				}
				axis, err := parseVec3Strict(args[0], "rotate axis")
				if err != nil {
					return transform, err
				}
				var degrees float64
				if err := json.Unmarshal(args[1], &degrees); err != nil {
					return transform, configErrorf("invalid rotate angle: %w", err)
				}
				transform = transform.Rotate(axis, degrees)
			default:
				return transform, configErrorf("unknown transform operation %q", op)
			}
		}
	}

	return transform, nil
}

type filePhongMaterial struct {
	Type         string      `json:"type"`
	Side         *string     `json:"side"`
	Color        *[3]float64 `json:"color"`
	Specular     *[3]float64 `json:"specular"`
	Shininess    *float64    `json:"shininess"`
	Emissive     *[3]float64 `json:"emissive"`
	Reflectivity *float64    `json:"reflectivity"`
	Opacity      *float64    `json:"opacity"`
	Refractive   *float64    `json:"refractive_index"`
	Texture      string      `json:"texture"`
}

type filePhysicalMaterial struct {
	Type              string      `json:"type"`
	Side              *string     `json:"side"`
	Color             *[3]float64 `json:"color"`
	Metalness         *float64    `json:"metalness"`
	Roughness         *float64    `json:"roughness"`
	Emissive          *[3]float64 `json:"emissive"`
	EmissiveIntensity *float64    `json:"emissive_intensity"`
	Opacity           *float64    `json:"opacity"`
	Refractive        *float64    `json:"refractive_index"`
	Texture           string      `json:"texture"`
}

func parseSide(side *string) (core.MaterialSide, error) {
	if side == nil {
		return core.SideFront, nil
	}
	switch *side {
	case "front":
		return core.SideFront, nil
	case "back":
		return core.SideBack, nil
	case "both":
		return core.SideBoth, nil
	}
	return core.SideFront, configErrorf("unknown material side %q", *side)
}

func parseMaterial(raw json.RawMessage) (*parsedMaterial, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, configErrorf("invalid material: %w", err)
	}

	switch head.Type {
	case "phong":
		var file filePhongMaterial
		if err := strictUnmarshal(raw, &file); err != nil {
			return nil, configErrorf("invalid phong material: %w", err)
		}
		side, err := parseSide(file.Side)
		if err != nil {
			return nil, err
		}
		mat := &parsedMaterial{
			kind:            "phong",
			side:            side,
			shininess:       30,
			opacity:         1,
			refractiveIndex: 1,
			texturePath:     file.Texture,
		}
		if file.Color != nil {
			mat.color = toVec3(*file.Color)
		}
		if file.Specular != nil {
			mat.specular = toVec3(*file.Specular)
		}
		if file.Shininess != nil {
			mat.shininess = *file.Shininess
		}
		if file.Emissive != nil {
			mat.emissive = toVec3(*file.Emissive)
		}
		if file.Reflectivity != nil {
			mat.reflectivity = *file.Reflectivity
		}
		if file.Opacity != nil {
			mat.opacity = *file.Opacity
		}
		if file.Refractive != nil {
			mat.refractiveIndex = *file.Refractive
		}
		return mat, nil

	case "physical":
		var file filePhysicalMaterial
		if err := strictUnmarshal(raw, &file); err != nil {
			return nil, configErrorf("invalid physical material: %w", err)
		}
		side, err := parseSide(file.Side)
		if err != nil {
			return nil, err
		}
		mat := &parsedMaterial{
			kind:              "physical",
			side:              side,
			roughness:         0.5,
			emissiveIntensity: 1,
			opacity:           1,
			refractiveIndex:   1,
			texturePath:       file.Texture,
		}
		if file.Color != nil {
			mat.color = toVec3(*file.Color)
		}
		if file.Metalness != nil {
			mat.metalness = *file.Metalness
		}
		if file.Roughness != nil {
			mat.roughness = *file.Roughness
		}
		if file.Emissive != nil {
			mat.emissive = toVec3(*file.Emissive)
		}
		if file.EmissiveIntensity != nil {
			mat.emissiveIntensity = *file.EmissiveIntensity
		}
		if file.Opacity != nil {
			mat.opacity = *file.Opacity
		}
		if file.Refractive != nil {
			mat.refractiveIndex = *file.Refractive
		}
		return mat, nil

	default:
		return nil, configErrorf("unknown material type %q", head.Type)
	}
}

type nodeCommon struct {
	Type      string            `json:"type"`
	Transform []json.RawMessage `json:"transform"`
	Material  json.RawMessage   `json:"material"`
	Children  []json.RawMessage `json:"children"`
}

type fileSphereNode struct {
	nodeCommon
	Radius *float64 `json:"radius"`
}

type fileCubeNode struct {
	nodeCommon
	Size *float64 `json:"size"`
}

type filePlaneNode struct {
	nodeCommon
	Normal *[3]float64 `json:"normal"`
	Point  *[3]float64 `json:"point"`
}

type fileTriangleNode struct {
	nodeCommon
	Vertices *[3][3]float64 `json:"vertices"`
	Normals  *[3][3]float64 `json:"normals"`
	UVs      *[3][2]float64 `json:"uvs"`
}

type fileMeshNode struct {
	nodeCommon
	File string `json:"file"`
}

type fileGroupNode struct {
	nodeCommon
}

// parseNode parses one node of the object tree
func parseNode(raw json.RawMessage) (*node, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, configErrorf("invalid object node: %w", err)
	}

	parsed := &node{kind: head.Type}
	var common nodeCommon

	switch head.Type {
	case "sphere":
		var file fileSphereNode
		if err := strictUnmarshal(raw, &file); err != nil {
			return nil, configErrorf("invalid sphere: %w", err)
		}
		parsed.radius = 1
		if file.Radius != nil {
			if *file.Radius <= 0 {
				return nil, configErrorf("sphere radius must be positive")
			}
			parsed.radius = *file.Radius
		}
		common = file.nodeCommon

	case "cube":
		var file fileCubeNode
		if err := strictUnmarshal(raw, &file); err != nil {
			return nil, configErrorf("invalid cube: %w", err)
		}
		parsed.size = 1
		if file.Size != nil {
			if *file.Size <= 0 {
				return nil, configErrorf("cube size must be positive")
			}
			parsed.size = *file.Size
		}
		common = file.nodeCommon

	case "plane":
		var file filePlaneNode
		if err := strictUnmarshal(raw, &file); err != nil {
			return nil, configErrorf("invalid plane: %w", err)
		}
		parsed.normal = core.NewVec3(0, 1, 0)
		if file.Normal != nil {
			parsed.normal = toVec3(*file.Normal)
			if parsed.normal.Length() < 1e-12 {
				return nil, configErrorf("plane normal must be nonzero")
			}
		}
		if file.Point != nil {
			parsed.point = toVec3(*file.Point)
		}
		common = file.nodeCommon

	case "triangle":
		var file fileTriangleNode
		if err := strictUnmarshal(raw, &file); err != nil {
			return nil, configErrorf("invalid triangle: %w", err)
		}
		if file.Vertices == nil {
			return nil, configErrorf("triangle requires vertices")
		}
		for i, v := range *file.Vertices {
			parsed.vertices[i] = toVec3(v)
		}
		if file.Normals != nil {
			var normals [3]core.Vec3
			for i, n := range *file.Normals {
				normals[i] = toVec3(n).Normalize()
			}
			parsed.normals = &normals
		}
		if file.UVs != nil {
			var uvs [3]core.Vec2
			for i, uv := range *file.UVs {
				uvs[i] = core.NewVec2(uv[0], uv[1])
			}
			parsed.uvs = &uvs
		}
		common = file.nodeCommon

	case "mesh":
		var file fileMeshNode
		if err := strictUnmarshal(raw, &file); err != nil {
			return nil, configErrorf("invalid mesh: %w", err)
		}
		if file.File == "" {
			return nil, configErrorf("mesh requires a file")
		}
		parsed.meshFile = file.File
		common = file.nodeCommon

	case "group":
		var file fileGroupNode
		if err := strictUnmarshal(raw, &file); err != nil {
			return nil, configErrorf("invalid group: %w", err)
		}
		common = file.nodeCommon

	default:
		return nil, configErrorf("unknown object type %q", head.Type)
	}

	transform, err := parseTransform(common.Transform)
	if err != nil {
		return nil, err
	}
	parsed.transform = transform

	if len(common.Material) > 0 {
		mat, err := parseMaterial(common.Material)
		if err != nil {
			return nil, err
		}
		parsed.material = mat
	}

	for _, rawChild := range common.Children {
		child, err := parseNode(rawChild)
		if err != nil {
			return nil, err
		}
		parsed.children = append(parsed.children, child)
	}

	return parsed, nil
}
