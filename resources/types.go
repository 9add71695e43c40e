// Package resources defines Blitzen's GPU-resident data model and the
// static buffer set built once at scene load and uploaded via a
// transfer-queue submission.
package resources

// Vertex is 32 bytes, aligned 16: position, UV, packed normal and tangent.
// Created at load; immutable for the life of the scene.
type Vertex struct {
	Position [3]float32
	UVX, UVY float32
	Normal   [4]int8 // packed snorm, w unused
	Tangent  [4]int8 // packed snorm, w = handedness
	_pad     uint32  // rounds the stride to the 32 bytes the shaders declare
}

// PrimitiveSurface is ≈32 bytes: bounding sphere, material id, LOD range,
// and the vertex offset into the global vertex buffer. Lifetime = scene.
type PrimitiveSurface struct {
	Center       [3]float32
	Radius       float32
	MaterialId   uint32
	LodOffset    uint32
	LodCount     uint32
	VertexOffset uint32
}

// LodData holds the classic-path (indexCount, firstIndex) pair, the
// cluster-path (clusterOffset, clusterCount) pair, and the geometric
// simplification error pre-scaled by the simplifier's own volume-preserving
// scale factor. The first LOD of any chain has error ≈ 0.
type LodData struct {
	FirstIndex    uint32
	IndexCount    uint32
	ClusterOffset uint32
	ClusterCount  uint32
	Error         float32
}

// Cluster (meshlet) is ≈32 bytes: bounding sphere, signed-8-bit cone axis +
// cutoff for backface culling, offset into the cluster-index buffer, and
// vertex/triangle counts.
type Cluster struct {
	Center        [3]float32
	Radius        float32
	ConeAxis      [3]int8
	ConeCutoff    int8
	IndexOffset   uint32
	VertexCount   uint32
	TriangleCount uint32
}

// Material carries the four bindless texture-array indices and a
// self-index used for draw-time lookup.
type Material struct {
	AlbedoTexture   uint32
	NormalTexture   uint32
	SpecularTexture uint32
	EmissiveTexture uint32
	MaterialId      uint32
	_pad            [3]uint32
}

// RenderObject is 8 bytes: (transformId, surfaceId). Blitzen keeps three
// disjoint arrays of RenderObject (opaque, transparent, ONPC-reflective) as
// three separate device buffers so each pass reads a dense list.
type RenderObject struct {
	TransformId uint32
	SurfaceId   uint32
}

// RenderPass identifies which of the three disjoint RenderObject arrays a
// buffer belongs to.
type RenderPass int

const (
	RenderPassOpaque RenderPass = iota
	RenderPassTransparent
	RenderPassONPC
)

// DrawIndexedIndirectCommand mirrors VkDrawIndexedIndirectCommand's layout:
// indexCount, instanceCount, firstIndex, vertexOffset (signed), firstInstance.
type DrawIndexedIndirectCommand struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	VertexOffset  int32
	FirstInstance uint32
}

// IndirectDrawRecord is one element of the IndirectDrawBuffer: a drawId
// (used by the fragment/vertex shader to look up the render object) plus
// the indirect command itself.
type IndirectDrawRecord struct {
	DrawId  uint32
	Command DrawIndexedIndirectCommand
}

// IndirectRecordSize and IndirectCommandOffset describe IndirectDrawRecord's
// byte layout for the draw path: each record is the drawId word followed by
// the five-word indirect command, so a pass's i-th DrawIndexedIndirect reads
// at i*IndirectRecordSize+IndirectCommandOffset.
const (
	IndirectRecordSize    = 4 + 5*4
	IndirectCommandOffset = 4
)

// ClusterDispatchRecord is the cluster-path pre-cull output: a surviving
// object's id, chosen LOD index, and the cluster range to dispatch against.
type ClusterDispatchRecord struct {
	ObjectId      uint32
	LodIndex      uint32
	ClusterBaseId uint32
	ClusterEndId  uint32
}

// MaxLODCount is the hard cap on LODs per primitive.
const MaxLODCount = 8

// LodSimplifyTargetRatio and LodMaxError are the constants the resource
// builder's LOD chain construction uses.
const (
	LodSimplifyTargetRatio = 0.65
	LodMaxError            = 0.1
	LodStopCloseness       = 0.95
)

// MeshletMaxVertices, MeshletMaxTriangles and MeshletConeWeight are the
// meshlet-build caps.
const (
	MeshletMaxVertices  = 64
	MeshletMaxTriangles = 124
	MeshletConeWeight   = 0.25
)
