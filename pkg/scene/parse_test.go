package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/DarkAce65/raytracer/pkg/core"
)

func TestParseDescription_FullScene(t *testing.T) {
	desc, err := ParseDescription([]byte(`{
		"max_depth": 5,
		"width": 200,
		"height": 200,
		"camera": { "position": [2, 5, 15], "target": [-1, 0, 0] },
		"lights": [
			{ "type": "ambient", "color": [0.01, 0.01, 0.01] },
			{
				"type": "point",
				"transform": [{ "translate": [-8, 3, 0] }],
				"color": [0.5, 0.5, 0.5]
			}
		],
		"objects": [
			{
				"type": "cube",
				"size": 1,
				"transform": [{ "rotate": [[0, 1, 0], 30] }, { "translate": [0, 2, 0] }],
				"material": { "type": "phong", "color": [1, 0.1, 0.1] }
			}
		]
	}`))
	if err != nil {
		t.Fatal(err)
	}

	if desc.Width != 200 || desc.Height != 200 {
		t.Errorf("Unexpected dimensions %dx%d", desc.Width, desc.Height)
	}
	if desc.MaxDepth != 5 {
		t.Errorf("Expected max_depth 5, got %d", desc.MaxDepth)
	}
	if len(desc.lights) != 2 {
		t.Fatalf("Expected 2 lights, got %d", len(desc.lights))
	}
	if desc.lights[1].kind != "point" {
		t.Errorf("Expected point light, got %q", desc.lights[1].kind)
	}
	if desc.lights[1].position != core.NewVec3(-8, 3, 0) {
		t.Errorf("Expected transformed light position, got %v", desc.lights[1].position)
	}
	if desc.lights[1].intensity != 1 {
		t.Errorf("Expected default intensity 1, got %f", desc.lights[1].intensity)
	}
	if len(desc.objects) != 1 || desc.objects[0].kind != "cube" {
		t.Fatalf("Unexpected objects %v", desc.objects)
	}
}

func TestParseDescription_Defaults(t *testing.T) {
	desc, err := ParseDescription([]byte(`{"width": 10, "height": 10}`))
	if err != nil {
		t.Fatal(err)
	}

	if desc.MaxDepth != DefaultMaxDepth {
		t.Errorf("Expected default max_depth, got %d", desc.MaxDepth)
	}
	if !math.IsInf(desc.MaxOcclusionDistance, 1) {
		t.Errorf("Expected infinite occlusion distance, got %f", desc.MaxOcclusionDistance)
	}
	if desc.Gamma != DefaultGamma {
		t.Errorf("Expected default gamma, got %f", desc.Gamma)
	}
	if desc.Camera.Fov != DefaultFov {
		t.Errorf("Expected default fov, got %f", desc.Camera.Fov)
	}
	if desc.Camera.Up != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected default up, got %v", desc.Camera.Up)
	}
}

func TestParseDescription_Rejections(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"nonpositive width", `{"width": 0, "height": 10}`},
		{"negative height", `{"width": 10, "height": -1}`},
		{"unknown top-level field", `{"width": 10, "height": 10, "widht": 20}`},
		{"unknown node type", `{"width": 10, "height": 10,
			"objects": [{"type": "torus"}]}`},
		{"unknown node field", `{"width": 10, "height": 10,
			"objects": [{"type": "sphere", "radios": 2}]}`},
		{"unknown material type", `{"width": 10, "height": 10,
			"objects": [{"type": "sphere", "material": {"type": "velvet"}}]}`},
		{"phong field on physical material", `{"width": 10, "height": 10,
			"objects": [{"type": "sphere", "material": {"type": "physical", "shininess": 5}}]}`},
		{"unknown light type", `{"width": 10, "height": 10,
			"lights": [{"type": "spot"}]}`},
		{"malformed transform op", `{"width": 10, "height": 10,
			"objects": [{"type": "sphere", "transform": [{"translate": [1, 2]}]}]}`},
		{"two ops in one transform entry", `{"width": 10, "height": 10,
			"objects": [{"type": "sphere", "transform": [{"translate": [1, 2, 3], "scale": [1, 1, 1]}]}]}`},
		{"unknown transform op", `{"width": 10, "height": 10,
			"objects": [{"type": "sphere", "transform": [{"shear": [1, 2, 3]}]}]}`},
		{"malformed rotate", `{"width": 10, "height": 10,
			"objects": [{"type": "sphere", "transform": [{"rotate": [30]}]}]}`},
		{"triangle without vertices", `{"width": 10, "height": 10,
			"objects": [{"type": "triangle"}]}`},
		{"mesh without file", `{"width": 10, "height": 10,
			"objects": [{"type": "mesh"}]}`},
		{"unknown material side", `{"width": 10, "height": 10,
			"objects": [{"type": "sphere", "material": {"type": "phong", "side": "left"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescription([]byte(tt.json))
			if err == nil {
				t.Fatal("Expected a config error")
			}
			var configErr *ConfigError
			if !errors.As(err, &configErr) {
				t.Errorf("Expected ConfigError, got %T: %v", err, err)
			}
		})
	}
}

func TestParseDescription_MaterialDefaults(t *testing.T) {
	desc, err := ParseDescription([]byte(`{
		"width": 10, "height": 10,
		"objects": [
			{"type": "sphere", "material": {"type": "phong"}},
			{"type": "sphere", "material": {"type": "physical"}}
		]
	}`))
	if err != nil {
		t.Fatal(err)
	}

	phong := desc.objects[0].material
	if phong.shininess != 30 || phong.opacity != 1 || phong.refractiveIndex != 1 {
		t.Errorf("Unexpected phong defaults %+v", phong)
	}
	if phong.side != core.SideFront {
		t.Errorf("Expected default side front")
	}

	physical := desc.objects[1].material
	if physical.roughness != 0.5 || physical.opacity != 1 || physical.metalness != 0 {
		t.Errorf("Unexpected physical defaults %+v", physical)
	}
}

func TestParseTransform_ComposesLeftToRight(t *testing.T) {
	desc, err := ParseDescription([]byte(`{
		"width": 10, "height": 10,
		"objects": [{
			"type": "sphere",
			"transform": [{"translate": [1, 0, 0]}, {"scale": [2, 2, 2]}]
		}]
	}`))
	if err != nil {
		t.Fatal(err)
	}

	// First listed is applied first: the local origin translates to (1,0,0),
	// then the scale doubles it to (2,0,0)
	got := desc.objects[0].transform.Point(core.NewVec3(0, 0, 0))
	if got != core.NewVec3(2, 0, 0) {
		t.Errorf("Expected (2, 0, 0), got %v", got)
	}
}
