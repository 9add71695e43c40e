package orchestrator

import (
	"fmt"

	"github.com/blitzen-gpu/blitzen/descriptor"
	"github.com/blitzen-gpu/blitzen/frame"
	"github.com/cogentcore/webgpu/wgpu"
)

// buildGPUBindGroup rebuilds the shared group-0 bind group for the given
// frame slot, the render-object buffer the current pass should read, the
// push-constant buffer holding the pass's payload, and the indirect-draw
// buffer the pass writes or draws from. The binding numbers never change
// for the life of the renderer; only buffer handles vary per pass. wgpu has
// no partial bind-group update, so a new group is created whenever any of
// those per-pass handles changes.
//
// Binding 14 means "the render-object buffer the current pass reads" rather
// than being ONPC-exclusive: the ONPC pass swaps this slot to point at the
// ONPC buffer, and the opaque/transparent passes occupy it the rest of the
// frame. wgpu has no buffer-device-address mechanism, so binding the active
// list here replaces passing its address as a push constant (see
// descriptor/pushconstants.go).
func (o *Orchestrator) buildGPUBindGroup(slot *frame.Slot, activeRenderObjects, pushConstants, indirectDraw *wgpu.Buffer) (*wgpu.BindGroup, error) {
	entries := []wgpu.BindGroupEntry{
		{Binding: uint32(descriptor.BindingCameraView), Buffer: slot.Camera, Offset: 0, Size: wgpu.WholeSize},
		{Binding: uint32(descriptor.BindingVertices), Buffer: o.res.Vertex, Offset: 0, Size: wgpu.WholeSize},
		{Binding: uint32(descriptor.BindingPrimitiveSurface), Buffer: o.res.PrimitiveSurface, Offset: 0, Size: wgpu.WholeSize},
		{Binding: uint32(descriptor.BindingDepthPyramid), TextureView: o.pyramid.FullView()},
		{Binding: uint32(descriptor.BindingLodTable), Buffer: o.res.Lod, Offset: 0, Size: wgpu.WholeSize},
		{Binding: uint32(descriptor.BindingTransforms), Buffer: slot.TransformBuffer, Offset: 0, Size: wgpu.WholeSize},
		{Binding: uint32(descriptor.BindingMaterials), Buffer: o.res.Material, Offset: 0, Size: wgpu.WholeSize},
		{Binding: uint32(descriptor.BindingIndirectDraw), Buffer: indirectDraw, Offset: 0, Size: wgpu.WholeSize},
		{Binding: uint32(descriptor.BindingIndirectCount), Buffer: o.res.IndirectCount, Offset: 0, Size: wgpu.WholeSize},
		{Binding: uint32(descriptor.BindingVisibility), Buffer: o.res.Visibility, Offset: 0, Size: wgpu.WholeSize},
		{Binding: uint32(descriptor.BindingPushConstants), Buffer: pushConstants, Offset: 0, Size: wgpu.WholeSize},
		{Binding: uint32(descriptor.BindingONPCRenderObject), Buffer: activeRenderObjects, Offset: 0, Size: wgpu.WholeSize},
	}

	if o.clusterPath {
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: uint32(descriptor.BindingClusters), Buffer: o.res.Cluster, Offset: 0, Size: wgpu.WholeSize},
			wgpu.BindGroupEntry{Binding: uint32(descriptor.BindingClusterIndex), Buffer: o.res.ClusterIndex, Offset: 0, Size: wgpu.WholeSize},
			wgpu.BindGroupEntry{Binding: uint32(descriptor.BindingClusterDispatch), Buffer: o.res.ClusterDispatch, Offset: 0, Size: wgpu.WholeSize},
		)
	}

	bg, err := o.dev.Device().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "blitzen gpu buffer bind group",
		Layout:  o.pipelines.GPUBufferLayout(),
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build gpu buffer bind group: %w", err)
	}
	return bg, nil
}
