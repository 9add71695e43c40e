package resourcebuilder

import "github.com/blitzen-gpu/blitzen/resources"

// BuiltClusters is the CPU-side result of partitioning one LOD level's
// index range into meshlets. Clustering is a greedy triangle-adjacency walk
// rather than a k-d-tree-guided builder; it respects the same vertex and
// triangle caps without claiming optimal locality.
type BuiltClusters struct {
	Clusters []resources.Cluster
	Indices  []uint32 // global vertex indices, vertexOffset already applied
}

// BuildClusters partitions indices (a triangle list over positions/normals,
// already vertex-offset into the primitive's slice) into clusters of at
// most MeshletMaxVertices vertices and MeshletMaxTriangles triangles,
// growing each cluster by picking the next unassigned triangle that shares
// the most vertices with the cluster so far.
func BuildClusters(positions [][3]float32, normals [][3]float32, indices []uint32, vertexOffset uint32) BuiltClusters {
	triCount := len(indices) / 3
	used := make([]bool, triCount)

	var built BuiltClusters

	for remaining := triCount; remaining > 0; {
		seed := -1
		for i := range used {
			if !used[i] {
				seed = i
				break
			}
		}
		if seed < 0 {
			break
		}

		clusterLocal := map[uint32]uint32{} // global index -> local slot
		var clusterVerts []uint32
		var clusterTris []uint32 // local indices, 3 per triangle

		addTriangle := func(t int) bool {
			a, b, c := indices[t*3], indices[t*3+1], indices[t*3+2]
			newVerts := 0
			for _, v := range [3]uint32{a, b, c} {
				if _, ok := clusterLocal[v]; !ok {
					newVerts++
				}
			}
			if len(clusterVerts)+newVerts > resources.MeshletMaxVertices {
				return false
			}
			if len(clusterTris)/3 >= resources.MeshletMaxTriangles {
				return false
			}
			for _, v := range [3]uint32{a, b, c} {
				if _, ok := clusterLocal[v]; !ok {
					clusterLocal[v] = uint32(len(clusterVerts))
					clusterVerts = append(clusterVerts, v)
				}
				clusterTris = append(clusterTris, clusterLocal[v])
			}
			return true
		}

		addTriangle(seed)
		used[seed] = true
		remaining--

		progress := true
		for progress {
			progress = false
			bestTri, bestShared := -1, -1
			for t := 0; t < triCount; t++ {
				if used[t] {
					continue
				}
				shared := 0
				for _, v := range [3]uint32{indices[t*3], indices[t*3+1], indices[t*3+2]} {
					if _, ok := clusterLocal[v]; ok {
						shared++
					}
				}
				if shared == 0 {
					continue
				}
				if shared > bestShared {
					bestShared = shared
					bestTri = t
				}
			}
			if bestTri < 0 {
				break
			}
			if addTriangle(bestTri) {
				used[bestTri] = true
				remaining--
				progress = true
			} else {
				break
			}
		}

		built.appendCluster(positions, normals, clusterVerts, clusterTris, vertexOffset)
	}

	return built
}

func (bc *BuiltClusters) appendCluster(positions [][3]float32, normals [][3]float32, localVerts []uint32, localTris []uint32, vertexOffset uint32) {
	dataOffset := uint32(len(bc.Indices))
	for _, localIdx := range localTris {
		bc.Indices = append(bc.Indices, localVerts[localIdx]+vertexOffset)
	}

	var clusterPositions [][3]float32
	var clusterNormals [][3]float32
	for _, v := range localVerts {
		clusterPositions = append(clusterPositions, positions[v])
		if normals != nil {
			clusterNormals = append(clusterNormals, normals[v])
		}
	}
	center, radius := BoundingSphere(clusterPositions)

	coneAxis, coneCutoff := averageNormalCone(clusterNormals)

	bc.Clusters = append(bc.Clusters, resources.Cluster{
		Center:        center,
		Radius:        radius,
		ConeAxis:      quantizeNormal(coneAxis),
		ConeCutoff:    int8(coneCutoff * 127),
		IndexOffset:   dataOffset,
		VertexCount:   uint32(len(localVerts)),
		TriangleCount: uint32(len(localTris) / 3),
	})
}

// averageNormalCone returns the mean normal (the cluster's backface-cull
// cone axis) and the cosine of the half-angle spanning every input normal
// from that axis (the cone cutoff).
func averageNormalCone(normals [][3]float32) (axis [3]float32, cutoff float32) {
	if len(normals) == 0 {
		return [3]float32{0, 0, 1}, -1
	}

	var sum [3]float32
	for _, n := range normals {
		sum[0] += n[0]
		sum[1] += n[1]
		sum[2] += n[2]
	}
	length := sqrt32(sum[0]*sum[0] + sum[1]*sum[1] + sum[2]*sum[2])
	if length == 0 {
		return [3]float32{0, 0, 1}, -1
	}
	axis = [3]float32{sum[0] / length, sum[1] / length, sum[2] / length}

	minDot := float32(1)
	for _, n := range normals {
		d := n[0]*axis[0] + n[1]*axis[1] + n[2]*axis[2]
		if d < minDot {
			minDot = d
		}
	}
	return axis, minDot
}

func quantizeNormal(n [3]float32) [3]int8 {
	return [3]int8{
		int8(clamp(n[0], -1, 1) * 127),
		int8(clamp(n[1], -1, 1) * 127),
		int8(clamp(n[2], -1, 1) * 127),
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
