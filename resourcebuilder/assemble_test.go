package resourcebuilder

import (
	"testing"

	"github.com/blitzen-gpu/blitzen/resources"
)

// Two classic-path primitives: the second primitive's index ranges must be
// shifted by both the first primitive's index span and its own vertex base,
// so every global index resolves against the single global vertex buffer.
func TestAssembleShiftsClassicOffsets(t *testing.T) {
	b := NewBuilder(2)
	positions, normals, indices := gridMesh(4)

	results, errs := b.BuildAll([]RawPrimitive{
		{Positions: positions, Normals: normals, Indices: indices},
		{Positions: positions, Normals: normals, Indices: indices},
	})
	for _, err := range errs {
		if err != nil {
			t.Fatalf("unexpected build error: %v", err)
		}
	}

	scene := Assemble(results)

	if len(scene.PrimitiveSurfaces) != 2 {
		t.Fatalf("got %d surfaces, want 2", len(scene.PrimitiveSurfaces))
	}
	if len(scene.Vertices) != 2*len(positions) {
		t.Fatalf("got %d vertices, want %d", len(scene.Vertices), 2*len(positions))
	}

	s0, s1 := scene.PrimitiveSurfaces[0], scene.PrimitiveSurfaces[1]
	if s0.VertexOffset != 0 {
		t.Errorf("surface 0 vertex offset = %d, want 0", s0.VertexOffset)
	}
	if s1.VertexOffset != uint32(len(positions)) {
		t.Errorf("surface 1 vertex offset = %d, want %d", s1.VertexOffset, len(positions))
	}
	if s1.LodOffset != s0.LodOffset+s0.LodCount {
		t.Errorf("surface 1 lod offset = %d, want %d", s1.LodOffset, s0.LodOffset+s0.LodCount)
	}

	// Every LOD range must lie inside the global index buffer and every
	// index it references must name a valid global vertex.
	for si, s := range scene.PrimitiveSurfaces {
		for l := uint32(0); l < s.LodCount; l++ {
			lod := scene.Lods[s.LodOffset+l]
			end := lod.FirstIndex + lod.IndexCount
			if end > uint32(len(scene.Indices)) {
				t.Fatalf("surface %d lod %d range [%d,%d) exceeds index buffer (%d)", si, l, lod.FirstIndex, end, len(scene.Indices))
			}
			for _, idx := range scene.Indices[lod.FirstIndex:end] {
				if idx < s.VertexOffset || idx >= s.VertexOffset+uint32(len(positions)) {
					t.Fatalf("surface %d lod %d references vertex %d outside [%d,%d)", si, l, idx, s.VertexOffset, s.VertexOffset+uint32(len(positions)))
				}
			}
		}
	}
}

func TestAssembleShiftsClusterOffsets(t *testing.T) {
	b := NewBuilder(2)
	positions, normals, indices := gridMesh(4)

	results, errs := b.BuildAll([]RawPrimitive{
		{Positions: positions, Normals: normals, Indices: indices, ClusterPath: true},
		{Positions: positions, Normals: normals, Indices: indices, ClusterPath: true},
	})
	for _, err := range errs {
		if err != nil {
			t.Fatalf("unexpected build error: %v", err)
		}
	}

	scene := Assemble(results)

	if len(scene.Clusters) == 0 {
		t.Fatal("expected clusters in a cluster-path assembly")
	}
	if len(scene.Indices) != 0 {
		t.Fatal("cluster-path assembly should leave the classic index buffer empty")
	}

	// Every cluster's index range must resolve inside the global cluster
	// index pool, and each index must name a valid global vertex.
	for ci, c := range scene.Clusters {
		end := c.IndexOffset + c.TriangleCount*3
		if end > uint32(len(scene.ClusterIndices)) {
			t.Fatalf("cluster %d range [%d,%d) exceeds cluster index pool (%d)", ci, c.IndexOffset, end, len(scene.ClusterIndices))
		}
		for _, idx := range scene.ClusterIndices[c.IndexOffset:end] {
			if idx >= uint32(len(scene.Vertices)) {
				t.Fatalf("cluster %d references vertex %d outside the global vertex buffer (%d)", ci, idx, len(scene.Vertices))
			}
		}
	}

	// Every LOD's cluster range must stay inside the global cluster table.
	for si, s := range scene.PrimitiveSurfaces {
		for l := uint32(0); l < s.LodCount; l++ {
			lod := scene.Lods[s.LodOffset+l]
			if lod.ClusterOffset+lod.ClusterCount > uint32(len(scene.Clusters)) {
				t.Fatalf("surface %d lod %d cluster range [%d,%d) exceeds cluster table (%d)", si, l, lod.ClusterOffset, lod.ClusterOffset+lod.ClusterCount, len(scene.Clusters))
			}
		}
	}

	var perPrimitive resources.SceneData = Assemble(results[:1])
	if len(scene.Clusters) != 2*len(perPrimitive.Clusters) {
		t.Fatalf("two identical primitives produced %d clusters, want %d", len(scene.Clusters), 2*len(perPrimitive.Clusters))
	}
}
