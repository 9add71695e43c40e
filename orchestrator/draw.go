package orchestrator

import (
	"fmt"

	"github.com/blitzen-gpu/blitzen/common"
	"github.com/blitzen-gpu/blitzen/descriptor"
	"github.com/blitzen-gpu/blitzen/frame"
	"github.com/blitzen-gpu/blitzen/pipelinecache"
	"github.com/blitzen-gpu/blitzen/resources"
	"github.com/cogentcore/webgpu/wgpu"
)

// cullWorkgroupSize matches the compute shader assets' declared
// @workgroup_size(64), one invocation per render object.
const cullWorkgroupSize = 64

// DrawContext supplies one frame's camera view, the scene's three disjoint
// render-object counts, and the dynamic transform prefix.
type DrawContext struct {
	View       common.CameraViewData
	Transforms [][16]float32

	OpaqueCount      uint32
	TransparentCount uint32
	ONPCCount        uint32

	// ONPCProjection is the oblique near-plane projection the reflective
	// pass pushes in place of the ordinary projectionView. The caller
	// derives it from its chosen reflection plane; a zero value falls back
	// to View.ProjectionView (no clipping plane).
	ONPCProjection [16]float32
}

// DrawFrame records and submits one frame: first cull, first opaque draw,
// depth-pyramid build, occlusion cull, second opaque draw, the optional
// ONPC and transparent passes, and the swapchain composite. Before
// SetupForRendering has installed scene resources, only the loading
// triangle is recorded.
func (o *Orchestrator) DrawFrame(ctx DrawContext) error {
	if !o.sceneReady {
		return o.drawLoadingScreen()
	}

	slot := o.frames.Acquire()
	if err := slot.Fence.Wait(FenceTimeout); err != nil {
		// A slot whose previous cycle never completed means the queue has
		// stalled.
		return fmt.Errorf("orchestrator: in-flight fence: %w", ErrFenceTimeout)
	}
	slot.Reset()
	o.pcCursor = 0

	o.frames.WriteCamera(slot, o.viewForUpload(ctx.View))
	if err := o.frames.WriteTransforms(slot, ctx.Transforms); err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}

	encoder, err := o.dev.Device().CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("orchestrator: create command encoder: %w", err)
	}

	colorView := o.sc.ColorView()
	depthView := o.sc.DepthView()
	extentW, extentH := o.sc.Extent()

	clusterRan := false

	drawCount := ctx.OpaqueCount
	switch {
	case drawCount == 0:
		// Empty scene: a single background-fill compute dispatch paints the
		// clear color; no geometry pipelines are bound.
		if err := o.dispatchBackgroundFill(encoder, colorView, extentW, extentH); err != nil {
			return err
		}

	case o.clusterPath && o.res.ClusterCount > 0:
		// --- Cluster-path variant ---
		// Replaces the object-granularity opaque passes: a separate compute
		// submission picks each object's LOD, expands it into per-cluster
		// work, and culls each cluster (frustum, backface cone, and
		// occlusion against the previous frame's pyramid) into the cluster
		// path's own indirect buffer; the graphics stream draws one indirect
		// slot per cluster, then rebuilds the pyramid for the next frame.
		clusterDrawBG, err := o.dispatchClusterPath(slot, drawCount)
		if err != nil {
			return err
		}
		o.drawGeometryPass(encoder, colorView, depthView, wgpu.LoadOpClear, pipelinecache.KeyOpaque, clusterDrawBG, o.res.ClusterIndex, o.res.ClusterIndirectDraw, o.res.ClusterCount)
		if err := o.generateDepthPyramid(encoder, depthView); err != nil {
			return err
		}
		clusterRan = true

	default:
		// --- B. First (frustum+LOD) cull ---
		// WebGPU has no indirect draw-with-count
		// (device.Capabilities().IndirectCountDraws is always false for this
		// binding), so every pass issues one DrawIndexedIndirect per
		// reserved slot unconditionally, relying on an unused slot holding a
		// zeroed (indexCount == 0, no-op) command. resetIndirect records the
		// blanking as copy commands inside this encoder, so it lands exactly
		// where the count reset must sit: after the previous pass's indirect
		// read, before this cull's read/write.
		cullBG, err := o.passBindGroup(slot, o.res.OpaqueRenderObjects, o.res.IndirectDraw,
			common.StructToBytes(&descriptor.CullPushConstants{DrawCount: drawCount}))
		if err != nil {
			return err
		}
		o.resetIndirect(encoder, o.res.IndirectDraw, drawCount)
		o.dispatchCull(encoder, pipelinecache.KeyInitialCull, cullBG, drawCount)

		// --- C. First opaque draw ---
		o.drawGeometryPass(encoder, colorView, depthView, wgpu.LoadOpClear, pipelinecache.KeyOpaque, cullBG, o.res.Index, o.res.IndirectDraw, drawCount)

		// --- D. Depth-pyramid generation ---
		if err := o.generateDepthPyramid(encoder, depthView); err != nil {
			return err
		}

		// --- E. Second (occlusion) cull ---
		lateBG, err := o.passBindGroup(slot, o.res.OpaqueRenderObjects, o.res.IndirectDraw,
			common.StructToBytes(&descriptor.CullPushConstants{DrawCount: drawCount}))
		if err != nil {
			return err
		}
		o.resetIndirect(encoder, o.res.IndirectDraw, drawCount)
		o.dispatchCull(encoder, pipelinecache.KeyLateCull, lateBG, drawCount)

		// --- F. Second opaque draw ---
		o.drawGeometryPass(encoder, colorView, depthView, wgpu.LoadOpLoad, pipelinecache.KeyOpaque, lateBG, o.res.Index, o.res.IndirectDraw, drawCount)
	}

	if drawCount > 0 {
		// --- G. ONPC reflective pass (optional) ---
		if ctx.ONPCCount > 0 && o.res.ONPCRenderObjects != nil {
			if err := o.drawONPCPass(encoder, slot, colorView, depthView, ctx); err != nil {
				return err
			}
		}

		// --- H. Transparent pass (optional) ---
		if ctx.TransparentCount > 0 && o.res.TransparentRenderObjects != nil {
			if err := o.drawTransparentPass(encoder, slot, colorView, depthView, ctx); err != nil {
				return err
			}
		}
	}

	// --- I. Swapchain composite ---
	frameTex, err := o.sc.AcquireFrame()
	if err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	swapView, err := frameTex.CreateView(nil)
	if err != nil {
		frameTex.Release()
		return fmt.Errorf("orchestrator: create swapchain view: %w", err)
	}
	if err := o.dispatchComposite(encoder, colorView, swapView, extentW, extentH); err != nil {
		swapView.Release()
		frameTex.Release()
		return err
	}

	// --- J. Submit & present ---
	cmd, err := encoder.Finish(nil)
	if err != nil {
		swapView.Release()
		frameTex.Release()
		return fmt.Errorf("orchestrator: finish command buffer: %w", err)
	}
	if clusterRan {
		// The graphics submission waits on the semaphore the cluster
		// compute submission signaled.
		slot.ClusterSemaphore.Wait()
	}
	o.dev.Queues().Graphics.Submit(cmd)
	o.sc.Present()
	swapView.Release()
	frameTex.Release()

	// With one logical wgpu queue, submissions execute in submission order;
	// the fence marks this slot's work as queued, which is the point after
	// which the slot's buffers may safely be rewritten (the next rewrite is
	// itself a queue operation ordered behind this submission).
	slot.Fence.Signal()
	o.lastView = ctx.View

	return nil
}

// viewForUpload applies the freeze-frustum debug mode: when frozen, only
// projectionView is refreshed and the cull-time view/frustum data is left
// stale.
func (o *Orchestrator) viewForUpload(view common.CameraViewData) common.CameraViewData {
	if !o.freezeFrustum {
		return view
	}
	frozen := o.lastView
	frozen.ProjectionView = view.ProjectionView
	return frozen
}

// passBindGroup wraps a payload in a pool push-constant buffer and builds
// the group-0 bind group one cull/draw pass uses.
func (o *Orchestrator) passBindGroup(slot *frame.Slot, renderObjects, indirectDraw *wgpu.Buffer, payload []byte) (*wgpu.BindGroup, error) {
	pc, err := o.acquirePushConstants(payload)
	if err != nil {
		return nil, err
	}
	return o.buildGPUBindGroup(slot, renderObjects, pc, indirectDraw)
}

// resetIndirect records the in-stream blanking of an indirect-draw buffer's
// used prefix and the indirect-count word. As copy commands they execute
// between the surrounding passes, where a host-side write would be
// queue-ordered before the whole submission.
func (o *Orchestrator) resetIndirect(encoder *wgpu.CommandEncoder, target *wgpu.Buffer, capacity uint32) {
	encoder.CopyBufferToBuffer(o.res.IndirectZero, 0, target, 0, resources.IndirectRecordSize*uint64(capacity))
	encoder.CopyBufferToBuffer(o.res.IndirectZero, 0, o.res.IndirectCount, 0, 4)
}

func (o *Orchestrator) dispatchCull(encoder *wgpu.CommandEncoder, key pipelinecache.Key, bindGroup *wgpu.BindGroup, count uint32) {
	p := o.pipelines.Get(key)
	if p == nil || p.Compute() == nil {
		return
	}
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.Compute())
	pass.SetBindGroup(descriptor.GPUBufferGroup, bindGroup, nil)
	groups := (count + cullWorkgroupSize - 1) / cullWorkgroupSize
	if groups == 0 {
		groups = 1
	}
	pass.DispatchWorkgroups(groups, 1, 1)
	pass.End()
}

// drawGeometryPass records one geometry render pass issuing one
// DrawIndexedIndirect per reserved slot of indirectDraw (the
// IndirectCountDraws fallback described at DrawFrame's step B). indexBuffer
// is the global index buffer for the object-granularity passes and the
// cluster-index buffer for the cluster draw.
func (o *Orchestrator) drawGeometryPass(encoder *wgpu.CommandEncoder, colorView, depthView *wgpu.TextureView, loadOp wgpu.LoadOp, key pipelinecache.Key, bindGroup *wgpu.BindGroup, indexBuffer, indirectDraw *wgpu.Buffer, capacity uint32) {
	p := o.pipelines.Get(key)
	if p == nil || p.Render() == nil {
		return
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: string(key) + " pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{View: colorView, LoadOp: loadOp, StoreOp: wgpu.StoreOpStore, ClearValue: ClearColor},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:         depthView,
			DepthLoadOp:  loadOp,
			DepthStoreOp: wgpu.StoreOpStore,
			// Reverse-Z: depth clears to 0, greater-is-closer.
			DepthClearValue: 0.0,
		},
	})
	pass.SetPipeline(p.Render())
	pass.SetBindGroup(descriptor.GPUBufferGroup, bindGroup, nil)
	if o.textureArrayGroup != nil {
		pass.SetBindGroup(descriptor.TextureArrayGroup, o.textureArrayGroup, nil)
	}
	pass.SetIndexBuffer(indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)

	for i := uint32(0); i < capacity; i++ {
		pass.DrawIndexedIndirect(indirectDraw, uint64(i)*resources.IndirectRecordSize+resources.IndirectCommandOffset)
	}

	pass.End()
}

// dispatchClusterPath records and submits the cluster path's extra compute
// work on its own command buffer, separate from the frame's main graphics
// submission: the CPU waits on a fence between the compute submission and
// the graphics submission, and the graphics queue additionally waits on a
// semaphore signalled by the compute submission.
//
// Pre-cluster cull runs once per object, picking the LOD to draw at and
// recording the cluster range that LOD owns into ClusterDispatch. Cluster
// cull then runs once per reserved cluster slot, testing each cluster's
// bounding sphere and backface cone (against the previous frame's depth
// pyramid, since this submission executes before the frame's pyramid is
// rebuilt)
// and writing surviving clusters into ClusterIndirectDraw, which the caller
// then draws with the same drawGeometryPass helper as the object-granularity
// passes, one indirect slot per cluster.
//
// No cull-written count is ever read back to the CPU between the two
// dispatches; the cluster-cull dispatch is instead sized to the scene's
// static worst-case cluster count, the same fallback every other cull
// pass's indirect draw uses.
//
// Returns the bind group the cluster draw should use (it reads the cluster
// indirect buffer and needs no push payload of its own beyond the cull's).
func (o *Orchestrator) dispatchClusterPath(slot *frame.Slot, objectCount uint32) (*wgpu.BindGroup, error) {
	computeEncoder, err := o.dev.Device().CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: create cluster compute command encoder: %w", err)
	}

	preBG, err := o.passBindGroup(slot, o.res.OpaqueRenderObjects, o.res.ClusterIndirectDraw,
		common.StructToBytes(&descriptor.CullPushConstants{DrawCount: objectCount}))
	if err != nil {
		return nil, err
	}
	cullBG, err := o.passBindGroup(slot, o.res.OpaqueRenderObjects, o.res.ClusterIndirectDraw,
		common.StructToBytes(&descriptor.ClusterCullPushConstants{
			DrawCount:    objectCount,
			ClusterCount: o.res.ClusterCount,
		}))
	if err != nil {
		return nil, err
	}

	o.resetIndirect(computeEncoder, o.res.ClusterIndirectDraw, o.res.ClusterCount)
	o.dispatchCull(computeEncoder, pipelinecache.KeyPreClusterCull, preBG, objectCount)
	o.dispatchCull(computeEncoder, pipelinecache.KeyClusterCull, cullBG, o.res.ClusterCount)

	cmd, err := computeEncoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: finish cluster compute command buffer: %w", err)
	}

	// Arm the cluster fence for this submission, submit, mark it, and block
	// the CPU on it; then signal the semaphore the graphics submission
	// waits on before its own submit.
	slot.ClusterFence = frame.NewFence()
	o.dev.Queues().Compute.Submit(cmd)
	slot.ClusterFence.Signal()
	if err := slot.ClusterFence.Wait(FenceTimeout); err != nil {
		return nil, fmt.Errorf("orchestrator: cluster compute fence: %w", ErrFenceTimeout)
	}
	slot.ClusterSemaphore.Signal()

	return cullBG, nil
}

// generateDepthPyramid records one dispatch per mip level, sourcing mip 0
// from the depth attachment itself and every later mip from the previous
// pyramid level. Each level's 2x2 reduction takes the minimum, conservative
// under reverse-Z.
func (o *Orchestrator) generateDepthPyramid(encoder *wgpu.CommandEncoder, depthView *wgpu.TextureView) error {
	p := o.pipelines.Get(pipelinecache.KeyDepthPyramid)
	if p == nil || p.Compute() == nil {
		return nil
	}

	for m := uint32(0); m < o.pyramid.MipCount(); m++ {
		srcView := depthView
		if m > 0 {
			srcView = o.pyramid.MipView(m - 1)
		}
		dstView := o.pyramid.MipView(m)

		levelW, levelH := o.pyramid.MipExtent(m)
		pc, err := o.acquirePushConstants(common.StructToBytes(&descriptor.DepthPyramidPushConstants{
			MipLevelWidth:  levelW,
			MipLevelHeight: levelH,
		}))
		if err != nil {
			return err
		}

		bg, err := o.dev.Device().CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "blitzen depth pyramid bind group",
			Layout: o.pipelines.DepthPyramidLayout(),
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, TextureView: srcView},
				{Binding: 1, TextureView: dstView},
				{Binding: 2, Sampler: o.depthPyramidSampler},
				{Binding: 3, Buffer: pc, Offset: 0, Size: wgpu.WholeSize},
			},
		})
		if err != nil {
			return fmt.Errorf("orchestrator: depth pyramid bind group mip %d: %w", m, err)
		}

		pass := encoder.BeginComputePass(nil)
		pass.SetPipeline(p.Compute())
		pass.SetBindGroup(0, bg, nil)
		pass.DispatchWorkgroups((levelW+31)/32, (levelH+31)/32, 1)
		pass.End()
	}
	return nil
}

func (o *Orchestrator) dispatchComposite(encoder *wgpu.CommandEncoder, colorView, swapView *wgpu.TextureView, width, height uint32) error {
	p := o.pipelines.Get(pipelinecache.KeyComposite)
	if p == nil || p.Compute() == nil {
		return nil
	}

	pc, err := o.acquirePushConstants(common.StructToBytes(&descriptor.CompositePushConstants{
		DrawExtentWidth:  width,
		DrawExtentHeight: height,
	}))
	if err != nil {
		return err
	}

	bg, err := o.dev.Device().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "blitzen composite bind group",
		Layout: o.pipelines.CompositeLayout(),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: colorView},
			{Binding: 1, TextureView: swapView},
			{Binding: 2, Sampler: o.compositeSampler},
			{Binding: 3, Buffer: pc, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("orchestrator: composite bind group: %w", err)
	}

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.Compute())
	pass.SetBindGroup(0, bg, nil)
	pass.DispatchWorkgroups((width+7)/8, (height+7)/8, 1)
	pass.End()
	return nil
}

func (o *Orchestrator) dispatchBackgroundFill(encoder *wgpu.CommandEncoder, colorView *wgpu.TextureView, width, height uint32) error {
	p := o.pipelines.Get(pipelinecache.KeyBackgroundFill)
	if p == nil || p.Compute() == nil {
		return nil
	}
	bg, err := o.dev.Device().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "blitzen background fill bind group",
		Layout: o.pipelines.BackgroundFillLayout(),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: colorView},
		},
	})
	if err != nil {
		return fmt.Errorf("orchestrator: background fill bind group: %w", err)
	}
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.Compute())
	pass.SetBindGroup(0, bg, nil)
	pass.DispatchWorkgroups((width+7)/8, (height+7)/8, 1)
	pass.End()
	return nil
}

// drawLoadingScreen records the loading-triangle pipeline directly to the
// swapchain image, bypassing the offscreen attachments that do not yet have
// scene content.
func (o *Orchestrator) drawLoadingScreen() error {
	p := o.pipelines.Get(pipelinecache.KeyLoadingTriangle)
	if p == nil || p.Render() == nil {
		return nil
	}

	encoder, err := o.dev.Device().CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}

	frameTex, err := o.sc.AcquireFrame()
	if err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	swapView, err := frameTex.CreateView(nil)
	if err != nil {
		frameTex.Release()
		return fmt.Errorf("orchestrator: create swapchain view: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "loading triangle pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{View: swapView, LoadOp: wgpu.LoadOpClear, StoreOp: wgpu.StoreOpStore, ClearValue: ClearColor},
		},
	})
	pass.SetPipeline(p.Render())
	pass.Draw(3, 1, 0, 0)
	pass.End()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		swapView.Release()
		frameTex.Release()
		return fmt.Errorf("orchestrator: %w", err)
	}
	o.dev.Queues().Graphics.Submit(cmd)
	o.sc.Present()
	swapView.Release()
	frameTex.Release()
	return nil
}

// drawONPCPass draws the planar-reflection geometry: rebuild the shared
// bind group against the ONPC render-object buffer, cull it with the same
// late-cull algorithm as the opaque geometry (ONPC geometry is still
// occludable), then draw it with the ONPC pipeline, whose vertex stage
// reads the oblique near-plane projection from its push-constant slot
// instead of the ordinary projectionView. The cull and the draw read
// different payloads from the same binding, so each gets its own bind group.
func (o *Orchestrator) drawONPCPass(encoder *wgpu.CommandEncoder, slot *frame.Slot, colorView, depthView *wgpu.TextureView, ctx DrawContext) error {
	cullBG, err := o.passBindGroup(slot, o.res.ONPCRenderObjects, o.res.IndirectDraw,
		common.StructToBytes(&descriptor.CullPushConstants{DrawCount: ctx.ONPCCount}))
	if err != nil {
		return err
	}

	o.resetIndirect(encoder, o.res.IndirectDraw, ctx.ONPCCount)
	o.dispatchCull(encoder, pipelinecache.KeyONPCCull, cullBG, ctx.ONPCCount)

	p := o.pipelines.Get(pipelinecache.KeyONPC)
	if p == nil || p.Render() == nil {
		return nil
	}

	oblique := ctx.ONPCProjection
	if oblique == ([16]float32{}) {
		oblique = ctx.View.ProjectionView
	}
	drawBG, err := o.passBindGroup(slot, o.res.ONPCRenderObjects, o.res.IndirectDraw,
		common.StructToBytes(&descriptor.ONPCPushConstants{ObliqueProjection: oblique}))
	if err != nil {
		return err
	}

	o.drawGeometryPass(encoder, colorView, depthView, wgpu.LoadOpLoad, pipelinecache.KeyONPC, drawBG, o.res.Index, o.res.IndirectDraw, ctx.ONPCCount)
	return nil
}

// drawTransparentPass draws the translucent geometry after both opaque
// passes. Transparent objects do not write the visibility buffer and are
// never occluded, so they are culled frustum-only (the same shape as the
// first opaque cull, but reading the transparent render-object buffer) and
// drawn with the transparent pipeline's alpha-blended/alpha-discard
// fragment stage.
func (o *Orchestrator) drawTransparentPass(encoder *wgpu.CommandEncoder, slot *frame.Slot, colorView, depthView *wgpu.TextureView, ctx DrawContext) error {
	bindGroup, err := o.passBindGroup(slot, o.res.TransparentRenderObjects, o.res.IndirectDraw,
		common.StructToBytes(&descriptor.CullPushConstants{DrawCount: ctx.TransparentCount}))
	if err != nil {
		return err
	}

	o.resetIndirect(encoder, o.res.IndirectDraw, ctx.TransparentCount)
	o.dispatchCull(encoder, pipelinecache.KeyTransparentCull, bindGroup, ctx.TransparentCount)

	o.drawGeometryPass(encoder, colorView, depthView, wgpu.LoadOpLoad, pipelinecache.KeyTransparent, bindGroup, o.res.Index, o.res.IndirectDraw, ctx.TransparentCount)
	return nil
}
