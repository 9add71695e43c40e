package resources

import (
	"fmt"

	"github.com/blitzen-gpu/blitzen/allocator"
	"github.com/blitzen-gpu/blitzen/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// StaticBuffers owns every static scene buffer: vertex, index,
// primitive-surface, LOD, material, cluster, cluster-index,
// cluster-dispatch, the three disjoint render-object buffers, visibility,
// indirect-draw, and indirect-count. All are uploaded once over the
// transfer queue and owned by the renderer for the life of the scene.
type StaticBuffers struct {
	Vertex           *wgpu.Buffer
	Index            *wgpu.Buffer
	PrimitiveSurface *wgpu.Buffer
	Lod              *wgpu.Buffer
	Material         *wgpu.Buffer
	Cluster          *wgpu.Buffer
	ClusterIndex     *wgpu.Buffer
	// ClusterDispatch holds the cluster path's pre-cull output: one
	// ClusterDispatchRecord per cluster of each surviving object's chosen
	// LOD, appended by the
	// pre-cluster-cull compute pass and consumed by the cluster-cull pass
	// that follows it in the same frame. Sized to the scene's total cluster
	// count, the append worst case.
	ClusterDispatch *wgpu.Buffer
	// ClusterIndirectDraw is the cluster path's own indirect-draw buffer,
	// one record per cluster slot. The cluster-cull pass runs on the compute
	// queue's submission, which executes before the frame's graphics
	// submission; writing into the shared IndirectDraw buffer would let the
	// graphics command stream's own zero-fills wipe the cluster commands
	// before the cluster draw reads them, so the cluster path gets a
	// dedicated buffer instead.
	ClusterIndirectDraw *wgpu.Buffer
	// ClusterCount is the total number of Cluster entries the scene
	// registered (len(scene.Clusters)); the cluster-cull pass dispatches one
	// invocation per slot up to this count, and the orchestrator's
	// cluster-path draw issues this many indirect draws.
	ClusterCount uint32

	OpaqueRenderObjects      *wgpu.Buffer
	OpaqueRenderObjectCount  uint32
	TransparentRenderObjects *wgpu.Buffer
	TransparentObjectCount   uint32
	ONPCRenderObjects        *wgpu.Buffer
	ONPCObjectCount          uint32

	Visibility    *wgpu.Buffer
	IndirectDraw  *wgpu.Buffer
	IndirectCount *wgpu.Buffer

	// IndirectZero is a copy-source buffer of zeros large enough to blank
	// the largest indirect-draw buffer. The per-pass count/command resets
	// must execute between passes of the same command stream, so they are
	// recorded as CopyBufferToBuffer commands from this buffer rather than
	// host-side writes, which the queue would order before every encoded
	// pass regardless of where they appear in the frame.
	IndirectZero *wgpu.Buffer
}

// SceneData is the caller-supplied bulk data a scene/asset loader hands to
// Build at setup time.
type SceneData struct {
	Vertices          []Vertex
	Indices           []uint32
	PrimitiveSurfaces []PrimitiveSurface
	Lods              []LodData
	Materials         []Material
	Clusters          []Cluster
	ClusterIndices    []uint32

	OpaqueObjects      []RenderObject
	TransparentObjects []RenderObject
	ONPCObjects        []RenderObject

	// IndirectCapacity bounds the indirect-draw/indirect-count buffers;
	// defaults to len(OpaqueObjects) when zero, expanded to the largest
	// render-object list since the transparent and ONPC passes reuse the
	// same buffer.
	IndirectCapacity uint32
}

// Build allocates every static buffer from scene data and uploads its
// contents over the transfer queue, once. wgpu has no separate
// staging-buffer step for queue.WriteBuffer (the driver stages internally),
// so transferQueue is used directly rather than through a manually managed
// staging buffer. Errors here are fatal at setup.
func Build(alloc *allocator.Allocator, transferQueue *wgpu.Queue, scene SceneData) (*StaticBuffers, error) {
	sb := &StaticBuffers{}

	var err error
	if sb.Vertex, err = uploadSlice(alloc, transferQueue, "vertex buffer", scene.Vertices, wgpu.BufferUsageStorage|wgpu.BufferUsageVertex); err != nil {
		return nil, err
	}
	if sb.Index, err = uploadSlice(alloc, transferQueue, "index buffer", scene.Indices, wgpu.BufferUsageIndex); err != nil {
		return nil, err
	}
	if sb.PrimitiveSurface, err = uploadSlice(alloc, transferQueue, "primitive surface buffer", scene.PrimitiveSurfaces, wgpu.BufferUsageStorage); err != nil {
		return nil, err
	}
	if sb.Lod, err = uploadSlice(alloc, transferQueue, "lod buffer", scene.Lods, wgpu.BufferUsageStorage); err != nil {
		return nil, err
	}
	if sb.Material, err = uploadSlice(alloc, transferQueue, "material buffer", scene.Materials, wgpu.BufferUsageStorage); err != nil {
		return nil, err
	}
	if len(scene.Clusters) > 0 {
		if sb.Cluster, err = uploadSlice(alloc, transferQueue, "cluster buffer", scene.Clusters, wgpu.BufferUsageStorage); err != nil {
			return nil, err
		}
		// The cluster draw binds this as the pass's index buffer (each
		// cluster's firstIndex points here), so it carries Index usage on
		// top of the cull shaders' storage access.
		if sb.ClusterIndex, err = uploadSlice(alloc, transferQueue, "cluster index buffer", scene.ClusterIndices, wgpu.BufferUsageStorage|wgpu.BufferUsageIndex); err != nil {
			return nil, err
		}
		sb.ClusterCount = uint32(len(scene.Clusters))
	}

	if sb.OpaqueRenderObjects, err = uploadSlice(alloc, transferQueue, "opaque render object buffer", scene.OpaqueObjects, wgpu.BufferUsageStorage); err != nil {
		return nil, err
	}
	sb.OpaqueRenderObjectCount = uint32(len(scene.OpaqueObjects))

	if len(scene.Clusters) > 0 {
		// The pre-cluster cull appends one record per cluster of each
		// surviving object's chosen LOD, so the worst case is every cluster
		// in the scene at once.
		const clusterDispatchRecordSize = uint64(4 * 4) // ClusterDispatchRecord: 4 uint32 fields
		sb.ClusterDispatch, err = alloc.CreateBuffer(allocator.BufferRequest{
			Label:       "cluster dispatch buffer",
			Size:        clusterDispatchRecordSize * uint64(sb.ClusterCount),
			Usage:       wgpu.BufferUsageStorage,
			MemoryClass: allocator.MemoryClassDeviceLocal,
		})
		if err != nil {
			return nil, err
		}
	}

	if len(scene.TransparentObjects) > 0 {
		if sb.TransparentRenderObjects, err = uploadSlice(alloc, transferQueue, "transparent render object buffer", scene.TransparentObjects, wgpu.BufferUsageStorage); err != nil {
			return nil, err
		}
		sb.TransparentObjectCount = uint32(len(scene.TransparentObjects))
	}
	if len(scene.ONPCObjects) > 0 {
		if sb.ONPCRenderObjects, err = uploadSlice(alloc, transferQueue, "onpc render object buffer", scene.ONPCObjects, wgpu.BufferUsageStorage); err != nil {
			return nil, err
		}
		sb.ONPCObjectCount = uint32(len(scene.ONPCObjects))
	}

	capacity := scene.IndirectCapacity
	if capacity == 0 {
		capacity = sb.OpaqueRenderObjectCount
	}
	// The ONPC and transparent passes reuse the shared indirect buffer after
	// their own in-stream reset, so it must hold the largest of the three
	// disjoint render-object lists, not just the opaque one.
	if sb.TransparentObjectCount > capacity {
		capacity = sb.TransparentObjectCount
	}
	if sb.ONPCObjectCount > capacity {
		capacity = sb.ONPCObjectCount
	}
	if capacity == 0 {
		capacity = 1 // keep a non-zero allocation for the empty-scene case
	}

	sb.IndirectDraw, err = alloc.CreateBuffer(allocator.BufferRequest{
		Label:       "indirect draw buffer",
		Size:        IndirectRecordSize * uint64(capacity),
		Usage:       wgpu.BufferUsageStorage | wgpu.BufferUsageIndirect,
		MemoryClass: allocator.MemoryClassDeviceLocal,
	})
	if err != nil {
		return nil, err
	}

	sb.IndirectCount, err = alloc.CreateBuffer(allocator.BufferRequest{
		Label:       "indirect count buffer",
		Size:        4,
		Usage:       wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		MemoryClass: allocator.MemoryClassDeviceLocal,
	})
	if err != nil {
		return nil, err
	}

	if sb.ClusterCount > 0 {
		sb.ClusterIndirectDraw, err = alloc.CreateBuffer(allocator.BufferRequest{
			Label:       "cluster indirect draw buffer",
			Size:        IndirectRecordSize * uint64(sb.ClusterCount),
			Usage:       wgpu.BufferUsageStorage | wgpu.BufferUsageIndirect,
			MemoryClass: allocator.MemoryClassDeviceLocal,
		})
		if err != nil {
			return nil, err
		}
	}

	zeroSpan := uint64(capacity)
	if uint64(sb.ClusterCount) > zeroSpan {
		zeroSpan = uint64(sb.ClusterCount)
	}
	// wgpu zero-initializes buffers at creation, so IndirectZero never needs
	// an explicit fill; it only exists to be a copy source.
	sb.IndirectZero, err = alloc.CreateBuffer(allocator.BufferRequest{
		Label:       "indirect zero fill buffer",
		Size:        IndirectRecordSize * zeroSpan,
		Usage:       wgpu.BufferUsageCopySrc,
		MemoryClass: allocator.MemoryClassDeviceLocal,
	})
	if err != nil {
		return nil, err
	}

	// Visibility: one 32-bit word per opaque render-object, initialized to
	// 0. Only a cull dispatch may mutate it thereafter; the CPU performs
	// only this one-time zero-fill.
	visCount := sb.OpaqueRenderObjectCount
	if visCount == 0 {
		visCount = 1
	}
	sb.Visibility, err = alloc.CreateBuffer(allocator.BufferRequest{
		Label:       "visibility buffer",
		Size:        4 * uint64(visCount),
		Usage:       wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		MemoryClass: allocator.MemoryClassDeviceLocal,
	})
	if err != nil {
		return nil, err
	}

	return sb, nil
}

func uploadSlice[T any](alloc *allocator.Allocator, transferQueue *wgpu.Queue, label string, data []T, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	bytes := common.SliceToBytes(data)
	size := uint64(len(bytes))
	if size == 0 {
		size = 4 // avoid a zero-size buffer, which several backends reject
	}
	buf, err := alloc.CreateBuffer(allocator.BufferRequest{
		Label:       label,
		Size:        size,
		Usage:       usage,
		MemoryClass: allocator.MemoryClassDeviceLocal,
	})
	if err != nil {
		return nil, fmt.Errorf("resources: %w", err)
	}
	if len(bytes) > 0 {
		transferQueue.WriteBuffer(buf, 0, bytes)
	}
	return buf, nil
}

// Release releases every buffer owned by StaticBuffers. Safe to call on a
// partially built set.
func (sb *StaticBuffers) Release() {
	for _, b := range []*wgpu.Buffer{
		sb.Vertex, sb.Index, sb.PrimitiveSurface, sb.Lod, sb.Material,
		sb.Cluster, sb.ClusterIndex, sb.ClusterDispatch, sb.ClusterIndirectDraw,
		sb.OpaqueRenderObjects, sb.TransparentRenderObjects, sb.ONPCRenderObjects,
		sb.Visibility, sb.IndirectDraw, sb.IndirectCount, sb.IndirectZero,
	} {
		if b != nil {
			b.Release()
		}
	}
}
