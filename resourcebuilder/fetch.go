package resourcebuilder

// optimizeVertexFetch renumbers vertices in first-use order of the index
// stream so draw-time vertex fetches walk memory forward, remapping the
// index list to match. Vertices the index stream never references are
// dropped. Normal/UV arrays are remapped only when they are parallel to the
// position array; a partial attribute array is returned empty rather than
// misaligned.
func optimizeVertexFetch(positions [][3]float32, normals [][3]float32, uvs [][2]float32, indices []uint32) ([][3]float32, [][3]float32, [][2]float32, []uint32) {
	remap := make([]int32, len(positions))
	for i := range remap {
		remap[i] = -1
	}

	hasNormals := len(normals) == len(positions)
	hasUVs := len(uvs) == len(positions)

	outPositions := make([][3]float32, 0, len(positions))
	var outNormals [][3]float32
	var outUVs [][2]float32
	if hasNormals {
		outNormals = make([][3]float32, 0, len(normals))
	}
	if hasUVs {
		outUVs = make([][2]float32, 0, len(uvs))
	}

	outIndices := make([]uint32, len(indices))
	for i, idx := range indices {
		if remap[idx] < 0 {
			remap[idx] = int32(len(outPositions))
			outPositions = append(outPositions, positions[idx])
			if hasNormals {
				outNormals = append(outNormals, normals[idx])
			}
			if hasUVs {
				outUVs = append(outUVs, uvs[idx])
			}
		}
		outIndices[i] = uint32(remap[idx])
	}

	return outPositions, outNormals, outUVs, outIndices
}
