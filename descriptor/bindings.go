// Package descriptor builds the GPU-buffer bind group layout and the
// push-constant byte layouts, and owns the per-binding write table that is
// rebuilt whenever a bound buffer handle changes (the nearest WebGPU
// equivalent of a Vulkan-style push-descriptor write, since wgpu has no
// push-descriptor extension).
//
// BindingId makes the per-binding "write index" an explicit enum: the
// shader-side and host-side binding contract is co-located here instead of
// being a set of magic integers scattered across the orchestrator.
package descriptor

// BindingId names each stable slot of the GPU-buffer bind group. The values
// are a contract with every shader asset's @binding declarations; 8 and 11
// carry the two additions WebGPU's lack of push descriptors/push constants
// and the cluster path's own intermediate buffer force onto this set.
type BindingId uint32

const (
	BindingCameraView       BindingId = 0
	BindingVertices         BindingId = 1
	BindingPrimitiveSurface BindingId = 2
	BindingDepthPyramid     BindingId = 3
	BindingLodTable         BindingId = 4
	BindingTransforms       BindingId = 5
	BindingMaterials        BindingId = 6
	BindingIndirectDraw     BindingId = 7
	// BindingClusterDispatch fills one of the two reserved gaps (binding 8):
	// the cluster-path pre-cull pass writes one ClusterDispatchRecord per
	// cluster of each surviving object's chosen LOD here, and the
	// cluster-cull pass that follows reads it
	// back. Only present in the bind group when the cluster path is enabled,
	// same as BindingClusters/BindingClusterIndex below.
	BindingClusterDispatch  BindingId = 8
	BindingIndirectCount    BindingId = 9
	BindingVisibility       BindingId = 10
	// BindingPushConstants fills the other reserved gap (binding 11). WebGPU
	// has no push-constant mechanism; each per-pass payload is instead
	// written to a small uniform buffer bound here via queue.WriteBuffer
	// immediately before the dispatch/draw that consumes it, and every pass
	// interprets the bytes according to its own struct in
	// descriptor/pushconstants.go.
	BindingPushConstants    BindingId = 11
	BindingClusters         BindingId = 12
	BindingClusterIndex     BindingId = 13
	BindingONPCRenderObject BindingId = 14
	BindingAccelStructure   BindingId = 15
)

// TextureArrayGroup is the separately allocated, one-shot texture array
// descriptor set, bound at pipeline set index 1 for the graphics passes.
const TextureArrayGroup = 1

// GPUBufferGroup is the pipeline set index the GPU-buffer bind group above
// is bound at for every pass (set index 0).
const GPUBufferGroup = 0
