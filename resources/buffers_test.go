package resources

import (
	"testing"
	"unsafe"
)

func TestMaxLODCount(t *testing.T) {
	if MaxLODCount != 8 {
		t.Fatalf("MaxLODCount = %d, want 8", MaxLODCount)
	}
}

func TestLodConstants(t *testing.T) {
	if LodSimplifyTargetRatio != 0.65 {
		t.Errorf("LodSimplifyTargetRatio = %v, want 0.65", LodSimplifyTargetRatio)
	}
	if LodMaxError != 0.1 {
		t.Errorf("LodMaxError = %v, want 0.1", LodMaxError)
	}
	if LodStopCloseness != 0.95 {
		t.Errorf("LodStopCloseness = %v, want 0.95", LodStopCloseness)
	}
}

func TestMeshletConstants(t *testing.T) {
	if MeshletMaxVertices != 64 {
		t.Errorf("MeshletMaxVertices = %d, want 64", MeshletMaxVertices)
	}
	if MeshletMaxTriangles != 124 {
		t.Errorf("MeshletMaxTriangles = %d, want 124", MeshletMaxTriangles)
	}
	if MeshletConeWeight != 0.25 {
		t.Errorf("MeshletConeWeight = %v, want 0.25", MeshletConeWeight)
	}
}

func TestVertexSize(t *testing.T) {
	if sz := unsafe.Sizeof(Vertex{}); sz != 32 {
		t.Fatalf("Vertex size = %d bytes, want 32", sz)
	}
}

func TestRenderObjectSize(t *testing.T) {
	if sz := unsafe.Sizeof(RenderObject{}); sz != 8 {
		t.Fatalf("RenderObject size = %d bytes, want 8", sz)
	}
}

func TestIndirectRecordLayout(t *testing.T) {
	if sz := unsafe.Sizeof(IndirectDrawRecord{}); sz != IndirectRecordSize {
		t.Fatalf("IndirectDrawRecord size = %d bytes, want %d", sz, IndirectRecordSize)
	}
	if off := unsafe.Offsetof(IndirectDrawRecord{}.Command); off != IndirectCommandOffset {
		t.Fatalf("Command offset = %d, want %d", off, IndirectCommandOffset)
	}
}
