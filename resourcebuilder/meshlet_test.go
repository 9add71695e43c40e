package resourcebuilder

import (
	"testing"

	"github.com/blitzen-gpu/blitzen/resources"
)

func TestBuildClustersRespectsCaps(t *testing.T) {
	positions, normals, indices := gridMesh(10)

	result := BuildClusters(positions, normals, indices, 0)
	if len(result.Clusters) == 0 {
		t.Fatal("expected at least one cluster")
	}
	for i, c := range result.Clusters {
		if c.VertexCount > resources.MeshletMaxVertices {
			t.Errorf("cluster %d vertex count %d exceeds cap %d", i, c.VertexCount, resources.MeshletMaxVertices)
		}
		if c.TriangleCount > resources.MeshletMaxTriangles {
			t.Errorf("cluster %d triangle count %d exceeds cap %d", i, c.TriangleCount, resources.MeshletMaxTriangles)
		}
	}
}

func TestBuildClustersCoversEveryTriangle(t *testing.T) {
	positions, normals, indices := gridMesh(6)
	result := BuildClusters(positions, normals, indices, 0)

	var totalTris uint32
	for _, c := range result.Clusters {
		totalTris += c.TriangleCount
	}
	wantTris := uint32(len(indices) / 3)
	if totalTris != wantTris {
		t.Fatalf("clusters cover %d triangles, want %d", totalTris, wantTris)
	}
}

func TestAverageNormalConeSingleNormalIsExact(t *testing.T) {
	axis, cutoff := averageNormalCone([][3]float32{{0, 0, 1}})
	if axis != ([3]float32{0, 0, 1}) {
		t.Fatalf("axis = %v, want (0,0,1)", axis)
	}
	if abs32(cutoff-1) > 1e-4 {
		t.Fatalf("cutoff = %v, want ~1", cutoff)
	}
}
