// Package orchestrator is Blitzen's draw orchestrator: the hard core that
// records each frame's commands in a fixed order, dispatches the culling
// shaders with the right push-constant payloads and bind groups, issues the
// indirect draws, and composes the final swapchain image.
//
// Vulkan-style hand-authored pipeline barriers have no user-facing
// equivalent in WebGPU: wgpu's command encoder tracks every resource a
// recorded pass touches and serializes GPU access to it automatically. The
// barrier choreography a cull/draw/pyramid/cull/draw frame needs is
// therefore satisfied structurally, by recording every pass in the
// prescribed order within one command encoder, rather than by issuing
// explicit barrier calls; each step below still carries a comment naming
// the hazard that makes its position in the order mandatory rather than
// incidental.
package orchestrator

import (
	"errors"
	"fmt"
	"time"

	"github.com/blitzen-gpu/blitzen/allocator"
	"github.com/blitzen-gpu/blitzen/common"
	"github.com/blitzen-gpu/blitzen/device"
	"github.com/blitzen-gpu/blitzen/frame"
	"github.com/blitzen-gpu/blitzen/pipelinecache"
	"github.com/blitzen-gpu/blitzen/resources"
	"github.com/blitzen-gpu/blitzen/swapchain"
	"github.com/cogentcore/webgpu/wgpu"
)

// FenceTimeout bounds every fence wait; there is no recovery path for a
// queue that stalls past it.
const FenceTimeout = time.Second

// ErrFenceTimeout marks a frame fence that failed to signal within
// FenceTimeout. Callers must treat it as unrecoverable.
var ErrFenceTimeout = errors.New("fence wait timed out")

// ClearColor is the empty-scene / background-fill clear color.
var ClearColor = wgpu.Color{R: 0, G: 0.2, B: 0.4, A: 1}

// pushConstantBufferSize is sized to the largest push-constant payload
// (ONPCPushConstants, a 4x4 matrix); every entry of the push-constant pool
// is this size so any payload fits any entry (descriptor/pushconstants.go).
const pushConstantBufferSize = 16 * 4

// Orchestrator owns the pipelines, swapchain/attachments, depth pyramid and
// frame ring it draws against, plus the push-constant buffer pool and the
// fixed-function samplers the depth-pyramid and composite passes sample
// through.
type Orchestrator struct {
	dev       *device.Device
	pipelines *pipelinecache.Cache
	sc        *swapchain.Swapchain
	pyramid   *swapchain.DepthPyramid
	frames    *frame.Ring
	alloc     *allocator.Allocator

	clusterPath bool

	depthPyramidSampler *wgpu.Sampler
	compositeSampler    *wgpu.Sampler

	// pcPool holds the frame's push-constant stand-in buffers, one per
	// payload use, reset (not freed) every frame. queue.WriteBuffer executes
	// in queue order ahead of the frame's submission, so each payload must
	// land in its own buffer: a single shared buffer would collapse every
	// pass's payload to the last write (descriptor/pushconstants.go).
	pcPool   []*wgpu.Buffer
	pcCursor int

	res               *resources.StaticBuffers
	textureArrayGroup *wgpu.BindGroup

	freezeFrustum bool
	lastView      common.CameraViewData

	// sceneReady mirrors whether SetupForRendering has been called; before
	// it has, DrawFrame only records the loading-triangle pipeline.
	sceneReady bool
}

// New allocates the fixed samplers and wraps the already-constructed
// swapchain, pipeline cache and frame ring. Push-constant pool buffers are
// allocated lazily on first use.
func New(dev *device.Device, alloc *allocator.Allocator, pipelines *pipelinecache.Cache, sc *swapchain.Swapchain, frames *frame.Ring, clusterPath bool) (*Orchestrator, error) {
	o := &Orchestrator{
		dev:         dev,
		pipelines:   pipelines,
		sc:          sc,
		frames:      frames,
		alloc:       alloc,
		clusterPath: clusterPath,
	}

	w, h := sc.Extent()
	pyramid, err := swapchain.NewDepthPyramid(dev.Device(), w, h)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	o.pyramid = pyramid

	// Vulkan-style min-reduction sampler state has no core-WebGPU
	// equivalent; the generation shader performs the 2x2 min combine itself
	// over four textureLoads, so this sampler only needs to be
	// non-filtering/nearest (matches descriptor.BuildDepthPyramidLayout's
	// SamplerBindingTypeNonFiltering).
	dps, err := dev.Device().CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "blitzen depth pyramid sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: create depth pyramid sampler: %w", err)
	}
	o.depthPyramidSampler = dps

	comp, err := dev.Device().CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "blitzen composite sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: create composite sampler: %w", err)
	}
	o.compositeSampler = comp

	return o, nil
}

// acquirePushConstants returns a pool buffer holding data, growing the pool
// on first use of each slot. Reusing last frame's entries is safe without a
// fence: the rewrite is enqueued after last frame's submission and before
// this frame's, so the queue orders it between the two.
func (o *Orchestrator) acquirePushConstants(data []byte) (*wgpu.Buffer, error) {
	if o.pcCursor == len(o.pcPool) {
		buf, err := o.alloc.CreateBuffer(allocator.BufferRequest{
			Label:       "blitzen push constant uniform",
			Size:        pushConstantBufferSize,
			Usage:       wgpu.BufferUsageUniform,
			MemoryClass: allocator.MemoryClassHostVisible,
		})
		if err != nil {
			return nil, fmt.Errorf("orchestrator: create push constant buffer: %w", err)
		}
		o.pcPool = append(o.pcPool, buf)
	}
	buf := o.pcPool[o.pcCursor]
	o.pcCursor++
	o.dev.Queues().Graphics.WriteBuffer(buf, 0, data)
	return buf, nil
}

// SetResources installs the static scene buffers built by resources.Build.
// Callers should not call this twice in the life of a renderer: after it,
// the scene is frozen except for transform updates.
func (o *Orchestrator) SetResources(res *resources.StaticBuffers) {
	o.res = res
	o.sceneReady = true
}

// SetTextureArrayGroup installs the one-shot texture array bind group,
// built once after every texture has been uploaded.
func (o *Orchestrator) SetTextureArrayGroup(bg *wgpu.BindGroup) {
	o.textureArrayGroup = bg
}

// SetFreezeFrustum toggles the freeze-frustum debug mode: when frozen, the
// camera upload still overwrites projectionView (so the view still moves
// visually) but the cull-time view/frustum data is left stale.
func (o *Orchestrator) SetFreezeFrustum(v bool) { o.freezeFrustum = v }

// Resize waits for outstanding frame work to drain, then recreates the
// swapchain, its attachments, and the depth pyramid at the new extent.
// wgpu-native exposes no direct device-idle wait through the cogentcore
// binding; frame.Ring's per-slot fences are the nearest local substitute,
// so every slot's fence is waited on first.
func (o *Orchestrator) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		// A (0, 0) extent (minimized window) suspends rendering until a
		// non-zero extent arrives. Nothing to do here; DrawFrame's caller is
		// responsible for skipping calls at (0, 0).
		return nil
	}

	o.frames.WaitAllIdle(FenceTimeout)

	if err := o.sc.Resize(width, height); err != nil {
		return fmt.Errorf("orchestrator: resize swapchain: %w", err)
	}

	o.pyramid.Release()
	pyramid, err := swapchain.NewDepthPyramid(o.dev.Device(), width, height)
	if err != nil {
		return fmt.Errorf("orchestrator: resize depth pyramid: %w", err)
	}
	o.pyramid = pyramid

	return nil
}

// Release tears down every GPU object the orchestrator owns directly (the
// depth pyramid, samplers, and push-constant pool). The swapchain, pipeline
// cache, and frame ring are released by their own owners.
func (o *Orchestrator) Release() {
	if o.pyramid != nil {
		o.pyramid.Release()
	}
	if o.depthPyramidSampler != nil {
		o.depthPyramidSampler.Release()
	}
	if o.compositeSampler != nil {
		o.compositeSampler.Release()
	}
	for _, b := range o.pcPool {
		b.Release()
	}
	o.pcPool = nil
}
