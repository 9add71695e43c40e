package descriptor

import "testing"

func TestGPUBufferLayoutOmitsClusterBindingsWithoutClusterPath(t *testing.T) {
	desc := BuildGPUBufferLayout(false, false, false)
	for _, e := range desc.Entries {
		switch BindingId(e.Binding) {
		case BindingClusters, BindingClusterIndex, BindingClusterDispatch:
			t.Fatalf("binding %d present without the cluster path", e.Binding)
		case BindingDepthPyramid:
			t.Fatalf("depth pyramid binding present without includeDepthPyramid")
		case BindingAccelStructure:
			t.Fatalf("acceleration structure binding present without rt")
		}
	}
}

func TestGPUBufferLayoutFullSetHasUniqueStableBindings(t *testing.T) {
	desc := BuildGPUBufferLayout(true, true, true)

	seen := map[uint32]bool{}
	for _, e := range desc.Entries {
		if seen[e.Binding] {
			t.Fatalf("binding %d appears twice", e.Binding)
		}
		seen[e.Binding] = true
	}

	for _, id := range []BindingId{
		BindingCameraView, BindingVertices, BindingPrimitiveSurface,
		BindingDepthPyramid, BindingLodTable, BindingTransforms,
		BindingMaterials, BindingIndirectDraw, BindingClusterDispatch,
		BindingIndirectCount, BindingVisibility, BindingPushConstants,
		BindingClusters, BindingClusterIndex, BindingONPCRenderObject,
		BindingAccelStructure,
	} {
		if !seen[uint32(id)] {
			t.Errorf("binding %d missing from the full layout", id)
		}
	}
}

// The binding numbers are a shader-side contract; they must never drift.
func TestBindingIdsMatchShaderContract(t *testing.T) {
	cases := []struct {
		id   BindingId
		want uint32
	}{
		{BindingCameraView, 0},
		{BindingVertices, 1},
		{BindingPrimitiveSurface, 2},
		{BindingDepthPyramid, 3},
		{BindingLodTable, 4},
		{BindingTransforms, 5},
		{BindingMaterials, 6},
		{BindingIndirectDraw, 7},
		{BindingClusterDispatch, 8},
		{BindingIndirectCount, 9},
		{BindingVisibility, 10},
		{BindingPushConstants, 11},
		{BindingClusters, 12},
		{BindingClusterIndex, 13},
		{BindingONPCRenderObject, 14},
		{BindingAccelStructure, 15},
	}
	for _, c := range cases {
		if uint32(c.id) != c.want {
			t.Errorf("binding id = %d, want %d", c.id, c.want)
		}
	}
}
