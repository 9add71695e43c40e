package resourcebuilder

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/blitzen-gpu/blitzen/resources"
)

// RawPrimitive is one mesh primitive as handed over by an external asset
// loader: a flat vertex/index buffer plus the material it's drawn with.
// ClusterPath requests meshlet building in addition to the classic
// index-range LOD chain.
type RawPrimitive struct {
	Positions   [][3]float32
	Normals     [][3]float32
	UVs         [][2]float32
	Indices     []uint32
	MaterialId  uint32
	ClusterPath bool
}

// BuiltPrimitive is the per-primitive output: the vertex/index ranges ready
// to append to the global buffers, its LOD chain, and (cluster path only)
// its clusters.
type BuiltPrimitive struct {
	Vertices       []resources.Vertex
	Indices        []uint32
	Surface        resources.PrimitiveSurface
	Lods           []resources.LodData
	Clusters       []resources.Cluster
	ClusterIndices []uint32
}

// Builder fans primitive processing out across a reusable worker pool
// instead of spawning one goroutine per primitive.
type Builder struct {
	pool worker.DynamicWorkerPool
}

// NewBuilder creates a builder with workerCount reusable workers. Resource
// building runs once at load time rather than once per frame, so the queue
// depth and worker idle timeout are not load-bearing numbers.
func NewBuilder(workerCount int) *Builder {
	return &Builder{pool: worker.NewDynamicWorkerPool(workerCount, 256, time.Second)}
}

// BuildAll processes every raw primitive concurrently and returns results
// in input order. An error from any one primitive is collected but does not
// stop the others from completing; a malformed primitive should not abort
// the whole load.
func (b *Builder) BuildAll(primitives []RawPrimitive) ([]BuiltPrimitive, []error) {
	results := make([]BuiltPrimitive, len(primitives))
	errs := make([]error, len(primitives))

	var wg sync.WaitGroup
	for i, raw := range primitives {
		wg.Add(1)
		idx := i
		rawCopy := raw
		b.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				built, err := buildOne(rawCopy)
				if err != nil {
					errs[idx] = fmt.Errorf("resourcebuilder: primitive %d: %w", idx, err)
					return nil, err
				}
				results[idx] = built
				return nil, nil
			},
		})
	}
	wg.Wait()

	return results, errs
}

func buildOne(raw RawPrimitive) (BuiltPrimitive, error) {
	if len(raw.Indices)%3 != 0 {
		return BuiltPrimitive{}, fmt.Errorf("index count %d is not a multiple of 3", len(raw.Indices))
	}
	if len(raw.Positions) == 0 {
		return BuiltPrimitive{}, fmt.Errorf("primitive has no vertices")
	}

	// Cache-optimize, then fetch-optimize (renumber vertices in first-use
	// order); everything downstream works on the remapped arrays.
	indices := optimizeVertexCache(raw.Indices)
	positions, normals, uvs, indices := optimizeVertexFetch(raw.Positions, raw.Normals, raw.UVs, indices)

	vertices := make([]resources.Vertex, len(positions))
	for i, p := range positions {
		v := resources.Vertex{Position: p}
		if i < len(uvs) {
			v.UVX, v.UVY = uvs[i][0], uvs[i][1]
		}
		if i < len(normals) {
			v.Normal = quantizeTangentSpace(normals[i])
		}
		vertices[i] = v
	}

	center, radius := BoundingSphere(positions)
	lodScale := radius
	if lodScale == 0 {
		lodScale = 1
	}

	chain := BuildLodChain(positions, normals, indices, lodScale)

	built := BuiltPrimitive{
		Vertices: vertices,
		Surface: resources.PrimitiveSurface{
			Center:     center,
			Radius:     radius,
			MaterialId: raw.MaterialId,
		},
	}

	if raw.ClusterPath {
		for lvl := range chain.Lods {
			lodStart := chain.Lods[lvl].FirstIndex
			lodEnd := lodStart + chain.Lods[lvl].IndexCount
			levelIndices := chain.Indices[lodStart:lodEnd]

			bc := BuildClusters(positions, normals, levelIndices, 0)
			chain.Lods[lvl].ClusterOffset = uint32(len(built.Clusters))
			chain.Lods[lvl].ClusterCount = uint32(len(bc.Clusters))
			chain.Lods[lvl].IndexCount = 0
			chain.Lods[lvl].FirstIndex = 0

			// Each BuildClusters call numbers IndexOffset from its own index
			// slice; rebase onto this primitive's accumulated cluster indices
			// before appending the next LOD's clusters.
			indexBase := uint32(len(built.ClusterIndices))
			for i := range bc.Clusters {
				bc.Clusters[i].IndexOffset += indexBase
			}
			built.Clusters = append(built.Clusters, bc.Clusters...)
			built.ClusterIndices = append(built.ClusterIndices, bc.Indices...)
		}
	} else {
		built.Indices = chain.Indices
	}

	built.Surface.LodCount = uint32(len(chain.Lods))
	built.Lods = chain.Lods

	return built, nil
}

func quantizeTangentSpace(n [3]float32) [4]int8 {
	return [4]int8{
		int8(clamp(n[0], -1, 1) * 127),
		int8(clamp(n[1], -1, 1) * 127),
		int8(clamp(n[2], -1, 1) * 127),
		0,
	}
}

// Builder needs no explicit shutdown: DynamicWorkerPool's idle workers exit
// on their own after the timeout passed to NewDynamicWorkerPool.
