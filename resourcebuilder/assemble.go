package resourcebuilder

import "github.com/blitzen-gpu/blitzen/resources"

// Assemble concatenates per-primitive build results into the global geometry
// arrays the static GPU buffers are uploaded from: one vertex buffer, one
// index buffer whose per-LOD ranges are pre-shifted by each primitive's
// vertex offset, one LOD table, one surface list, and (cluster path) one
// cluster table with its index pool. Each primitive's chain-relative
// offsets (LodData.FirstIndex, ClusterOffset, Cluster.IndexOffset) are
// rebased onto the global arrays here, and its PrimitiveSurface gets its
// final LodOffset and VertexOffset.
//
// Materials and the three render-object lists are scene-level data the
// asset loader owns; callers fill those fields on the returned SceneData
// before handing it to resources.Build.
func Assemble(primitives []BuiltPrimitive) resources.SceneData {
	var scene resources.SceneData

	for _, p := range primitives {
		vertexBase := uint32(len(scene.Vertices))
		indexBase := uint32(len(scene.Indices))
		lodBase := uint32(len(scene.Lods))
		clusterBase := uint32(len(scene.Clusters))
		clusterIndexBase := uint32(len(scene.ClusterIndices))

		scene.Vertices = append(scene.Vertices, p.Vertices...)
		for _, idx := range p.Indices {
			scene.Indices = append(scene.Indices, idx+vertexBase)
		}
		for _, ci := range p.ClusterIndices {
			scene.ClusterIndices = append(scene.ClusterIndices, ci+vertexBase)
		}

		for _, lod := range p.Lods {
			if lod.IndexCount > 0 {
				lod.FirstIndex += indexBase
			}
			if lod.ClusterCount > 0 {
				lod.ClusterOffset += clusterBase
			}
			scene.Lods = append(scene.Lods, lod)
		}

		for _, c := range p.Clusters {
			c.IndexOffset += clusterIndexBase
			scene.Clusters = append(scene.Clusters, c)
		}

		surface := p.Surface
		surface.LodOffset = lodBase
		surface.VertexOffset = vertexBase
		scene.PrimitiveSurfaces = append(scene.PrimitiveSurfaces, surface)
	}

	return scene
}
