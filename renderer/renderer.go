// Package renderer assembles every other package into the single top-level
// type the embedding application drives: Init, UploadTexture,
// SetupForRendering, UpdateObjectTransform, DrawWhileWaiting, DrawFrame.
// Nothing outside this package touches device, allocator, swapchain,
// descriptor, resources, frame, pipelinecache or orchestrator directly;
// they are Renderer's private wiring.
package renderer

import (
	"fmt"
	"os"
	"sync"

	"github.com/blitzen-gpu/blitzen/allocator"
	"github.com/blitzen-gpu/blitzen/common"
	"github.com/blitzen-gpu/blitzen/device"
	"github.com/blitzen-gpu/blitzen/frame"
	"github.com/blitzen-gpu/blitzen/orchestrator"
	"github.com/blitzen-gpu/blitzen/pipelinecache"
	"github.com/blitzen-gpu/blitzen/resources"
	"github.com/blitzen-gpu/blitzen/shader"
	"github.com/blitzen-gpu/blitzen/swapchain"
	"github.com/blitzen-gpu/blitzen/texture"
	"github.com/blitzen-gpu/blitzen/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// MaxTextureLayers bounds the scene texture array. The pool is a
// texture_2d_array (descriptor.BuildTextureArrayLayout), so the bound is
// WebGPU's default max-array-layer limit rather than a descriptor-pool size.
const MaxTextureLayers = 256

// Config configures a Renderer at construction, assembled with functional
// options.
type Config struct {
	ClusterPath          bool
	RayTracing           bool
	ShaderDir            string
	ForceFallbackAdapter bool
}

// Option configures a Config field.
type Option func(*Config)

func WithClusterPath(v bool) Option   { return func(c *Config) { c.ClusterPath = v } }
func WithRayTracing(v bool) Option    { return func(c *Config) { c.RayTracing = v } }
func WithShaderDir(dir string) Option { return func(c *Config) { c.ShaderDir = dir } }

func WithForceFallbackAdapter(v bool) Option {
	return func(c *Config) { c.ForceFallbackAdapter = v }
}

// Renderer is the top-level type the embedding application drives through
// Init/UploadTexture/SetupForRendering/UpdateObjectTransform/
// DrawWhileWaiting/DrawFrame. It owns every GPU resource the package tree
// below allocates and is responsible for releasing all of it.
type Renderer struct {
	cfg Config

	win    window.Window
	dev    *device.Device
	alloc  *allocator.Allocator
	sc     *swapchain.Swapchain
	frames *frame.Ring
	pipes  *pipelinecache.Cache
	orch   *orchestrator.Orchestrator
	loader *shader.Loader

	textureSampler *wgpu.Sampler

	// textures holds decoded DDS images CPU-side until SetupForRendering
	// packs them into the scene texture array; arrayTexture/arrayView are
	// the packed result (texture.BuildArray).
	mu           sync.Mutex
	textures     []texture.Image
	arrayTexture *wgpu.Texture
	arrayView    *wgpu.TextureView

	transformsMu sync.Mutex
	transforms   [][16]float32

	ready bool
}

// New returns a Renderer in the unconfigured state. Init must be called
// before any other method.
func New(opts ...Option) *Renderer {
	cfg := Config{ShaderDir: shader.DefaultDir}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Renderer{cfg: cfg}
}

// Init readies the renderer against an already-constructed window. The
// window is handed in directly rather than as separate width/height/handle
// arguments: its Width/Height and SurfaceDescriptor carry the same data,
// and splitting them back out would only reintroduce the staleness the
// Window type exists to avoid. Builds the device, swapchain, frame ring and
// the entire fixed pipeline set up front, since DrawWhileWaiting must be
// able to record the loading-triangle pipeline before SetupForRendering
// ever runs.
func (r *Renderer) Init(win window.Window) error {
	r.win = win

	dev, err := device.New(device.Config{
		SurfaceDescriptor:    win.SurfaceDescriptor(),
		ForceFallbackAdapter: r.cfg.ForceFallbackAdapter,
		RequireComputeQueue:  r.cfg.ClusterPath,
	})
	if err != nil {
		return fmt.Errorf("renderer: init device: %w", err)
	}
	r.dev = dev

	r.alloc = allocator.New(dev.Instance(), dev.Device())

	width, height := uint32(win.Width()), uint32(win.Height())
	sc, err := swapchain.New(swapchain.Config{
		Device:  dev.Device(),
		Adapter: dev.Adapter(),
		Surface: dev.Surface(),
		Width:   width,
		Height:  height,
	})
	if err != nil {
		return fmt.Errorf("renderer: init swapchain: %w", err)
	}
	r.sc = sc

	frames, err := frame.NewRing(dev, r.alloc, 1024)
	if err != nil {
		return fmt.Errorf("renderer: init frame ring: %w", err)
	}
	r.frames = frames

	pipes, err := pipelinecache.New(dev.Device(), pipelinecache.Options{
		ClusterPath:   r.cfg.ClusterPath,
		RayTracing:    r.cfg.RayTracing,
		SurfaceFormat: sc.SurfaceFormat(),
	})
	if err != nil {
		return fmt.Errorf("renderer: init pipeline cache: %w", err)
	}
	r.pipes = pipes

	r.loader = shader.NewLoader(r.cfg.ShaderDir)
	if err := r.registerPipelines(); err != nil {
		return fmt.Errorf("renderer: register pipelines: %w", err)
	}

	orch, err := orchestrator.New(dev, r.alloc, pipes, sc, frames, r.cfg.ClusterPath)
	if err != nil {
		return fmt.Errorf("renderer: init orchestrator: %w", err)
	}
	r.orch = orch

	sampler, err := dev.Device().CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "blitzen scene texture sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("renderer: create texture sampler: %w", err)
	}
	r.textureSampler = sampler

	return nil
}

// UploadTexture reads and decodes a DDS file, holding the decoded mip chain
// CPU-side until SetupForRendering packs every uploaded texture into the
// scene texture array in upload order (the texture's id is its call
// position). Valid any time before SetupForRendering finalizes the array.
func (r *Renderer) UploadTexture(filepath string) error {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("renderer: upload texture %q: %w", filepath, err)
	}

	img, err := texture.Decode(data)
	if err != nil {
		return fmt.Errorf("renderer: upload texture %q: %w", filepath, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.textures) >= MaxTextureLayers {
		return fmt.Errorf("renderer: upload texture %q: texture array is full (%d)", filepath, MaxTextureLayers)
	}
	r.textures = append(r.textures, img)

	return nil
}

// SetupForRendering builds the static GPU buffers from scene, packs the
// uploaded textures into the scene texture array and its one-shot bind
// group, and installs both on the orchestrator. Call it exactly once; after
// it returns, the scene is frozen except for transform updates.
func (r *Renderer) SetupForRendering(scene resources.SceneData) error {
	sb, err := resources.Build(r.alloc, r.dev.Queues().Transfer, scene)
	if err != nil {
		return fmt.Errorf("renderer: setup for rendering: %w", err)
	}

	r.transformsMu.Lock()
	r.transforms = make([][16]float32, countTransforms(scene))
	for i := range r.transforms {
		common.Identity(r.transforms[i][:])
	}
	r.transformsMu.Unlock()

	bg, err := r.buildTextureArrayGroup()
	if err != nil {
		sb.Release()
		return fmt.Errorf("renderer: setup for rendering: %w", err)
	}

	r.orch.SetResources(sb)
	r.orch.SetTextureArrayGroup(bg)
	r.ready = true

	return nil
}

// countTransforms sizes the transform mirror UpdateObjectTransform writes
// into: the highest TransformId referenced by any of the scene's three
// render-object arrays, plus one.
func countTransforms(scene resources.SceneData) uint32 {
	var max uint32
	for _, arrs := range [][]resources.RenderObject{scene.OpaqueObjects, scene.TransparentObjects, scene.ONPCObjects} {
		for _, ro := range arrs {
			if ro.TransformId+1 > max {
				max = ro.TransformId + 1
			}
		}
	}
	return max
}

// buildTextureArrayGroup packs every uploaded texture into the scene's
// texture_2d_array (texture.BuildArray; layer index = texture id) and
// creates the one-shot bind group over it. With no uploads, the array is a
// single white layer so untextured scenes still draw.
func (r *Renderer) buildTextureArrayGroup() (*wgpu.BindGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tex, view, err := texture.BuildArray(r.dev.Device(), r.dev.Queues().Transfer, r.textures)
	if err != nil {
		return nil, err
	}
	r.arrayTexture = tex
	r.arrayView = view
	// The CPU-side staging images are no longer needed once packed.
	r.textures = nil

	return r.dev.Device().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "blitzen texture array group",
		Layout: r.pipes.TextureArrayLayout(),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: r.arrayView},
			{Binding: 1, Sampler: r.textureSampler},
		},
	})
}

// UpdateObjectTransform writes the composed model matrix into the host-side
// mirror the next DrawFrame's DrawContext.Transforms is built from. Only
// the dynamic prefix of the transform array is ever rewritten; static
// objects are never touched here.
func (r *Renderer) UpdateObjectTransform(transformId uint32, transform common.MeshTransform) error {
	r.transformsMu.Lock()
	defer r.transformsMu.Unlock()

	if int(transformId) >= len(r.transforms) {
		return fmt.Errorf("renderer: update object transform: id %d out of range (%d known)", transformId, len(r.transforms))
	}
	transform.ComposeModelMatrix(r.transforms[transformId][:])
	return nil
}

// DrawWhileWaiting records the loading-triangle pipeline each frame until
// SetupForRendering has run. dt is accepted so callers can drive a
// frame-paced loading animation, but the loading pipeline here is a single
// static triangle and does not consume it.
func (r *Renderer) DrawWhileWaiting(dt float32) error {
	_ = dt
	return r.orch.DrawFrame(orchestrator.DrawContext{})
}

// snapshotTransforms copies the current transform mirror under lock, so
// DrawFrame's upload doesn't race a concurrent UpdateObjectTransform call.
func (r *Renderer) snapshotTransforms() [][16]float32 {
	r.transformsMu.Lock()
	defer r.transformsMu.Unlock()
	out := make([][16]float32, len(r.transforms))
	copy(out, r.transforms)
	return out
}

// DrawFrame records and submits one frame. The orchestrator does both in
// one step, so there is no separate update phase to stage work for a later
// draw. If the window has a pending resize, it is applied before the frame
// is recorded.
func (r *Renderer) DrawFrame(view common.CameraViewData, opaqueCount, transparentCount, onpcCount uint32) error {
	if w, h, ok := r.win.TakeResize(); ok {
		if err := r.orch.Resize(w, h); err != nil {
			return fmt.Errorf("renderer: resize: %w", err)
		}
	}

	if !r.ready {
		return r.DrawWhileWaiting(0)
	}

	return r.orch.DrawFrame(orchestrator.DrawContext{
		View:             view,
		Transforms:       r.snapshotTransforms(),
		OpaqueCount:      opaqueCount,
		TransparentCount: transparentCount,
		ONPCCount:        onpcCount,
	})
}

// SetFreezeFrustum forwards to the orchestrator's debug toggle.
func (r *Renderer) SetFreezeFrustum(v bool) { r.orch.SetFreezeFrustum(v) }

// Release tears down every GPU object the renderer tree owns, in reverse
// construction order.
func (r *Renderer) Release() {
	r.mu.Lock()
	r.textures = nil
	if r.arrayView != nil {
		r.arrayView.Release()
		r.arrayView = nil
	}
	if r.arrayTexture != nil {
		r.arrayTexture.Release()
		r.arrayTexture = nil
	}
	r.mu.Unlock()

	if r.textureSampler != nil {
		r.textureSampler.Release()
	}
	if r.orch != nil {
		r.orch.Release()
	}
	if r.pipes != nil {
		r.pipes.Release()
	}
	if r.frames != nil {
		r.frames.Release()
	}
	if r.sc != nil {
		r.sc.Release()
	}
	if r.alloc != nil {
		r.alloc.Release()
	}
	if r.dev != nil {
		r.dev.Release()
	}
}
