package resourcebuilder

import (
	"sort"

	"github.com/blitzen-gpu/blitzen/resources"
)

// LodChain is the CPU-side intermediate result of building one primitive's
// LOD chain before its indices are appended to the global index buffer.
type LodChain struct {
	Lods    []resources.LodData // FirstIndex is relative to this chain, not the global buffer yet
	Indices []uint32            // concatenation of every LOD's index range, vertex-offset NOT yet applied
}

// BuildLodChain simplifies indices down to resources.MaxLODCount levels,
// stopping early per the three original stop conditions: simplification
// made no progress, hit zero triangles, or the new level is within
// LodStopCloseness of the previous one's triangle count. lodScale is the
// volume-preserving scale factor errors are multiplied by before being
// stored; callers compute it from the primitive's bounding sphere radius.
func BuildLodChain(positions [][3]float32, normals [][3]float32, indices []uint32, lodScale float32) LodChain {
	chain := LodChain{}

	lodIndices := append([]uint32(nil), indices...)
	var accumulatedError float32

	for level := 0; level < resources.MaxLODCount; level++ {
		lod := resources.LodData{
			FirstIndex: uint32(len(chain.Indices)),
			IndexCount: uint32(len(lodIndices)),
			Error:      accumulatedError * lodScale,
		}
		chain.Lods = append(chain.Lods, lod)
		chain.Indices = append(chain.Indices, lodIndices...)

		if level == resources.MaxLODCount-1 {
			break
		}

		targetCount := (int(float64(len(lodIndices))*resources.LodSimplifyTargetRatio) / 3) * 3
		simplified, newError, ok := simplify(positions, normals, lodIndices, targetCount, resources.LodMaxError)
		if !ok {
			break
		}
		if len(simplified) == 0 || len(simplified) == len(lodIndices) {
			break
		}
		if float64(len(simplified)) >= float64(len(lodIndices))*resources.LodStopCloseness {
			break
		}

		lodIndices = optimizeVertexCache(simplified)
		if newError > accumulatedError {
			accumulatedError = newError
		}
	}

	return chain
}

// simplify is a greedy edge-collapse mesh simplifier: it repeatedly
// collapses the shortest edge in the current triangle set (a cheap proxy
// for a quadric-error metric) until the triangle count reaches target or
// the next collapse would exceed maxError. The returned error is the
// longest edge length collapsed so far, relative to the mesh's own bounding
// sphere.
func simplify(positions [][3]float32, normals [][3]float32, indices []uint32, targetCount int, maxError float32) ([]uint32, float32, bool) {
	if targetCount <= 0 || targetCount >= len(indices) {
		return indices, 0, true
	}

	remap := make([]uint32, len(positions))
	for i := range remap {
		remap[i] = uint32(i)
	}
	find := func(v uint32) uint32 {
		for remap[v] != v {
			v = remap[v]
		}
		return v
	}

	type edge struct {
		a, b uint32
		dist float32
	}
	edgeSet := map[uint64]edge{}
	addEdge := func(a, b uint32) {
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		key := uint64(a)<<32 | uint64(b)
		if _, ok := edgeSet[key]; ok {
			return
		}
		d := dist(positions[a], positions[b])
		edgeSet[key] = edge{a: a, b: b, dist: d}
	}
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		addEdge(a, b)
		addEdge(b, c)
		addEdge(c, a)
	}

	edges := make([]edge, 0, len(edgeSet))
	for _, e := range edgeSet {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].dist < edges[j].dist })

	_, radius := BoundingSphere(positions)
	if radius == 0 {
		radius = 1
	}

	currentCount := len(indices)
	var worstError float32

	for _, e := range edges {
		if currentCount <= targetCount {
			break
		}
		a, b := find(e.a), find(e.b)
		if a == b {
			continue
		}
		normalizedErr := e.dist / (2 * radius)
		if normalizedErr > maxError {
			break
		}
		remap[b] = a
		if normalizedErr > worstError {
			worstError = normalizedErr
		}
		// Each collapsed edge removes, on average, two triangles from a
		// closed/mostly-closed mesh; this is an estimate, not an exact
		// count, since degenerate triangles are filtered out below.
		currentCount -= 6
	}

	out := make([]uint32, 0, len(indices))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := find(indices[i]), find(indices[i+1]), find(indices[i+2])
		if a == b || b == c || a == c {
			continue
		}
		out = append(out, a, b, c)
	}

	if len(out) == len(indices) {
		return out, worstError, false
	}

	return out, worstError, true
}

func dist(a, b [3]float32) float32 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return sqrt32(dx*dx + dy*dy + dz*dz)
}

// optimizeVertexCache reorders triangles for better GPU post-transform
// vertex cache reuse: a simple greedy pass that keeps triangles sharing a
// just-emitted vertex adjacent. It improves locality without claiming
// cache-optimality.
func optimizeVertexCache(indices []uint32) []uint32 {
	type tri struct{ a, b, c uint32 }
	tris := make([]tri, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		tris = append(tris, tri{indices[i], indices[i+1], indices[i+2]})
	}

	used := make([]bool, len(tris))
	out := make([]uint32, 0, len(indices))
	lastVerts := map[uint32]bool{}

	for remaining := len(tris); remaining > 0; {
		bestIdx := -1
		bestScore := -1
		for i, t := range tris {
			if used[i] {
				continue
			}
			score := 0
			if lastVerts[t.a] {
				score++
			}
			if lastVerts[t.b] {
				score++
			}
			if lastVerts[t.c] {
				score++
			}
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		t := tris[bestIdx]
		used[bestIdx] = true
		remaining--
		out = append(out, t.a, t.b, t.c)
		lastVerts = map[uint32]bool{t.a: true, t.b: true, t.c: true}
	}

	return out
}
