package resourcebuilder

import "testing"

func TestBuildAllRejectsNonTripleIndices(t *testing.T) {
	b := NewBuilder(2)
	results, errs := b.BuildAll([]RawPrimitive{
		{
			Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}},
			Indices:   []uint32{0, 1},
		},
	})
	if errs[0] == nil {
		t.Fatal("expected an error for a non-multiple-of-3 index list")
	}
	if results[0].Vertices != nil {
		t.Fatalf("expected zero-value result on error, got %+v", results[0])
	}
}

func TestBuildAllClassicPathPopulatesIndices(t *testing.T) {
	b := NewBuilder(2)
	positions, normals, indices := gridMesh(6)

	var uvs [][2]float32
	for range positions {
		uvs = append(uvs, [2]float32{0, 0})
	}

	results, errs := b.BuildAll([]RawPrimitive{
		{Positions: positions, Normals: normals, UVs: uvs, Indices: indices},
	})
	if errs[0] != nil {
		t.Fatalf("unexpected error: %v", errs[0])
	}
	if len(results[0].Indices) == 0 {
		t.Fatal("expected non-empty classic-path index buffer")
	}
	if len(results[0].Clusters) != 0 {
		t.Fatal("classic path should not populate clusters")
	}
}

func TestBuildAllClusterPathPopulatesClusters(t *testing.T) {
	b := NewBuilder(2)
	positions, normals, indices := gridMesh(6)

	results, errs := b.BuildAll([]RawPrimitive{
		{Positions: positions, Normals: normals, Indices: indices, ClusterPath: true},
	})
	if errs[0] != nil {
		t.Fatalf("unexpected error: %v", errs[0])
	}
	if len(results[0].Clusters) == 0 {
		t.Fatal("expected clusters to be populated on the cluster path")
	}
	if len(results[0].Indices) != 0 {
		t.Fatal("cluster path should not populate the classic index buffer")
	}
}
