package renderer

import (
	"testing"

	"github.com/blitzen-gpu/blitzen/common"
	"github.com/blitzen-gpu/blitzen/resources"
	"github.com/blitzen-gpu/blitzen/shader"
)

func TestNewAppliesOptions(t *testing.T) {
	r := New(WithClusterPath(true), WithRayTracing(true), WithShaderDir("assets/shaders"))
	if !r.cfg.ClusterPath || !r.cfg.RayTracing {
		t.Fatalf("options not applied: %+v", r.cfg)
	}
	if r.cfg.ShaderDir != "assets/shaders" {
		t.Fatalf("shader dir = %q, want assets/shaders", r.cfg.ShaderDir)
	}
}

func TestNewDefaultsShaderDir(t *testing.T) {
	r := New()
	if r.cfg.ShaderDir != shader.DefaultDir {
		t.Fatalf("shader dir = %q, want %q", r.cfg.ShaderDir, shader.DefaultDir)
	}
}

// The transform mirror is sized by the highest TransformId any render-object
// list references, across all three disjoint arrays.
func TestCountTransforms(t *testing.T) {
	cases := []struct {
		name  string
		scene resources.SceneData
		want  uint32
	}{
		{"empty", resources.SceneData{}, 0},
		{
			"opaque only",
			resources.SceneData{
				OpaqueObjects: []resources.RenderObject{{TransformId: 0}, {TransformId: 4}},
			},
			5,
		},
		{
			"max across all three lists",
			resources.SceneData{
				OpaqueObjects:      []resources.RenderObject{{TransformId: 1}},
				TransparentObjects: []resources.RenderObject{{TransformId: 9}},
				ONPCObjects:        []resources.RenderObject{{TransformId: 3}},
			},
			10,
		},
	}
	for _, c := range cases {
		if got := countTransforms(c.scene); got != c.want {
			t.Errorf("%s: countTransforms = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestUpdateObjectTransformOutOfRange(t *testing.T) {
	r := New()
	transform := common.MeshTransform{Scale: 1, Orientation: common.IdentityQuat()}
	if err := r.UpdateObjectTransform(0, transform); err == nil {
		t.Fatal("expected error before any transforms exist")
	}
}
