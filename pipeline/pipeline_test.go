package pipeline

import "testing"

func TestNewAppliesOptions(t *testing.T) {
	p := New("opaque", TypeRender, WithDepth(true, false), WithBlend(true))
	if p.DepthTestEnabled() != true || p.DepthWriteEnabled() != false {
		t.Fatalf("depth options not applied: test=%v write=%v", p.DepthTestEnabled(), p.DepthWriteEnabled())
	}
	if !p.BlendEnabled() {
		t.Fatal("blend option not applied")
	}
}

func TestReleaseIsSafeWithNoUnderlyingPipeline(t *testing.T) {
	p := New("unset", TypeCompute)
	p.Release() // must not panic when neither pipeline field was ever set
}
