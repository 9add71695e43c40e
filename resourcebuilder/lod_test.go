package resourcebuilder

import (
	"testing"

	"github.com/blitzen-gpu/blitzen/resources"
)

func gridMesh(n int) ([][3]float32, [][3]float32, []uint32) {
	var positions [][3]float32
	var normals [][3]float32
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			positions = append(positions, [3]float32{float32(x), float32(y), 0})
			normals = append(normals, [3]float32{0, 0, 1})
		}
	}
	var indices []uint32
	for y := 0; y < n-1; y++ {
		for x := 0; x < n-1; x++ {
			i0 := uint32(y*n + x)
			i1 := i0 + 1
			i2 := uint32((y+1)*n + x)
			i3 := i2 + 1
			indices = append(indices, i0, i2, i1, i1, i2, i3)
		}
	}
	return positions, normals, indices
}

func TestBuildLodChainFirstLevelHasZeroError(t *testing.T) {
	positions, normals, indices := gridMesh(8)
	chain := BuildLodChain(positions, normals, indices, 1)

	if len(chain.Lods) == 0 {
		t.Fatal("expected at least one LOD level")
	}
	if chain.Lods[0].Error != 0 {
		t.Fatalf("LOD 0 error = %v, want 0", chain.Lods[0].Error)
	}
	if chain.Lods[0].IndexCount != uint32(len(indices)) {
		t.Fatalf("LOD 0 index count = %d, want %d", chain.Lods[0].IndexCount, len(indices))
	}
}

func TestBuildLodChainNeverExceedsMax(t *testing.T) {
	positions, normals, indices := gridMesh(12)
	chain := BuildLodChain(positions, normals, indices, 1)

	if len(chain.Lods) > resources.MaxLODCount {
		t.Fatalf("got %d LOD levels, want <= %d", len(chain.Lods), resources.MaxLODCount)
	}
}

func TestBuildLodChainErrorsAreNonDecreasing(t *testing.T) {
	positions, normals, indices := gridMesh(12)
	chain := BuildLodChain(positions, normals, indices, 1)

	for i := 1; i < len(chain.Lods); i++ {
		if chain.Lods[i].Error < chain.Lods[i-1].Error {
			t.Fatalf("LOD %d error %v < LOD %d error %v", i, chain.Lods[i].Error, i-1, chain.Lods[i-1].Error)
		}
	}
}

func TestBuildLodChainSingleTriangleStopsImmediately(t *testing.T) {
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	normals := [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	indices := []uint32{0, 1, 2}

	chain := BuildLodChain(positions, normals, indices, 1)
	if len(chain.Lods) != 1 {
		t.Fatalf("expected exactly one LOD for a single triangle, got %d", len(chain.Lods))
	}
}
