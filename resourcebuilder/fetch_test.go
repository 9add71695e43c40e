package resourcebuilder

import "testing"

func TestOptimizeVertexFetchFirstUseOrder(t *testing.T) {
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	normals := [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	indices := []uint32{3, 1, 2, 2, 1, 0}

	outPos, outNorm, _, outIdx := optimizeVertexFetch(positions, normals, nil, indices)

	// First uses appear as 0, 1, 2, ... in the remapped stream.
	want := []uint32{0, 1, 2, 2, 1, 3}
	for i := range want {
		if outIdx[i] != want[i] {
			t.Fatalf("outIdx = %v, want %v", outIdx, want)
		}
	}
	// Vertex 0 of the output is old vertex 3; attributes follow positions.
	if outPos[0] != positions[3] {
		t.Fatalf("outPos[0] = %v, want %v", outPos[0], positions[3])
	}
	if len(outNorm) != len(outPos) {
		t.Fatalf("normals not remapped in parallel: %d vs %d", len(outNorm), len(outPos))
	}
}

func TestOptimizeVertexFetchDropsUnreferencedVertices(t *testing.T) {
	positions := [][3]float32{{0, 0, 0}, {9, 9, 9}, {1, 0, 0}, {0, 1, 0}}
	indices := []uint32{0, 2, 3}

	outPos, _, _, outIdx := optimizeVertexFetch(positions, nil, nil, indices)
	if len(outPos) != 3 {
		t.Fatalf("got %d vertices, want 3 (unreferenced vertex dropped)", len(outPos))
	}
	for _, idx := range outIdx {
		if idx >= uint32(len(outPos)) {
			t.Fatalf("index %d out of range after remap", idx)
		}
	}
}
