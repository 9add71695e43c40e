// Package pipelinecache registers and stores the fixed set of compute and
// graphics pipelines Blitzen's draw orchestrator dispatches against:
// initial/late/transparent/ONPC/pre-cluster/cluster-cull, depth-pyramid
// generation, swapchain composite and background-fill compute pipelines,
// plus the opaque, transparent/ONPC and loading-triangle graphics
// pipelines.
//
// Blitzen's bind group layouts are fixed at compile time
// (descriptor.BuildGPUBufferLayout and friends), so pipelinecache loads raw
// WGSL source directly and builds wgpu.BindGroupLayoutDescriptors from the
// descriptor package rather than parsing them out of shader source.
package pipelinecache

import (
	"fmt"

	"github.com/blitzen-gpu/blitzen/descriptor"
	"github.com/blitzen-gpu/blitzen/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Key names one of the fixed pipelines in the cache.
type Key string

const (
	KeyInitialCull     Key = "initial_cull"
	KeyLateCull        Key = "late_cull"
	KeyTransparentCull Key = "transparent_cull"
	KeyONPCCull        Key = "onpc_cull"
	KeyPreClusterCull  Key = "pre_cluster_cull"
	KeyClusterCull     Key = "cluster_cull"
	KeyDepthPyramid    Key = "depth_pyramid"
	KeyComposite       Key = "composite"
	KeyBackgroundFill  Key = "background_fill"
	KeyOpaque          Key = "opaque"
	KeyTransparent     Key = "transparent"
	KeyONPC            Key = "onpc"
	KeyLoadingTriangle Key = "loading_triangle"
)

// ShaderSource is a raw WGSL module plus its entry point, loaded from the
// fixed on-disk shader path set rather than discovered from scene data.
type ShaderSource struct {
	Label      string
	Code       string
	EntryPoint string
}

// Cache owns every registered pipeline, keyed by Key, plus the bind group
// layouts they share.
type Cache struct {
	device *wgpu.Device

	gpuBufferLayout      *wgpu.BindGroupLayout
	textureArrayLayout   *wgpu.BindGroupLayout
	depthPyramidLayout   *wgpu.BindGroupLayout
	compositeLayout      *wgpu.BindGroupLayout
	backgroundFillLayout *wgpu.BindGroupLayout

	pipelines map[Key]*pipeline.Pipeline
}

// Options configures which optional bindings the shared GPU-buffer layout
// includes, mirroring the capability probe results, plus the surface format
// the composite pass writes.
type Options struct {
	ClusterPath   bool
	RayTracing    bool
	SurfaceFormat wgpu.TextureFormat
}

// New creates the shared bind group layouts. Individual pipelines are
// registered afterward with RegisterCompute/RegisterRender.
func New(device *wgpu.Device, opts Options) (*Cache, error) {
	c := &Cache{device: device, pipelines: map[Key]*pipeline.Pipeline{}}

	// Binding 3 (depth pyramid) is always present in the shared layout even
	// though only the late, ONPC and cluster cull pipelines sample it: every pipeline
	// built against this Cache binds group 0 from the same layout, and wgpu
	// requires a pipeline's bind group to exactly match the layout it was
	// created against. No per-pass layout variants.
	gpuDesc := descriptor.BuildGPUBufferLayout(true, opts.ClusterPath, opts.RayTracing)
	gpuLayout, err := device.CreateBindGroupLayout(&gpuDesc)
	if err != nil {
		return nil, fmt.Errorf("pipelinecache: gpu buffer layout: %w", err)
	}
	c.gpuBufferLayout = gpuLayout

	texDesc := descriptor.BuildTextureArrayLayout()
	texLayout, err := device.CreateBindGroupLayout(&texDesc)
	if err != nil {
		return nil, fmt.Errorf("pipelinecache: texture array layout: %w", err)
	}
	c.textureArrayLayout = texLayout

	dpDesc := descriptor.BuildDepthPyramidLayout()
	dpLayout, err := device.CreateBindGroupLayout(&dpDesc)
	if err != nil {
		return nil, fmt.Errorf("pipelinecache: depth pyramid layout: %w", err)
	}
	c.depthPyramidLayout = dpLayout

	compDesc := descriptor.BuildCompositeLayout(opts.SurfaceFormat)
	compLayout, err := device.CreateBindGroupLayout(&compDesc)
	if err != nil {
		return nil, fmt.Errorf("pipelinecache: composite layout: %w", err)
	}
	c.compositeLayout = compLayout

	bgDesc := descriptor.BuildBackgroundFillLayout()
	bgLayout, err := device.CreateBindGroupLayout(&bgDesc)
	if err != nil {
		return nil, fmt.Errorf("pipelinecache: background fill layout: %w", err)
	}
	c.backgroundFillLayout = bgLayout

	return c, nil
}

// RegisterCompute builds and stores a compute pipeline. The cull passes run
// against the shared GPU-buffer layout; the depth-pyramid, composite and
// background-fill passes instead pass their own small layout via ownLayout
// and see only that layout at group 0.
func (c *Cache) RegisterCompute(key Key, src ShaderSource, ownLayout *wgpu.BindGroupLayout) error {
	module, err := c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: src.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: src.Code,
		},
	})
	if err != nil {
		return fmt.Errorf("pipelinecache: compile %s: %w", key, err)
	}

	layouts := []*wgpu.BindGroupLayout{c.gpuBufferLayout}
	if ownLayout != nil {
		layouts = []*wgpu.BindGroupLayout{ownLayout}
	}

	pipelineLayout, err := c.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            string(key),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return fmt.Errorf("pipelinecache: pipeline layout %s: %w", key, err)
	}

	created, err := c.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  string(key) + " compute pipeline",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: src.EntryPoint,
		},
	})
	if err != nil {
		return fmt.Errorf("pipelinecache: create %s: %w", key, err)
	}

	p := pipeline.New(string(key), pipeline.TypeCompute)
	p.SetCompute(created)
	c.pipelines[key] = p
	return nil
}

// RenderOptions configures the fixed-function state of a graphics
// pipeline, matching pipeline.Option's scope.
type RenderOptions struct {
	ColorFormat       wgpu.TextureFormat
	DepthFormat       wgpu.TextureFormat
	DepthTestEnabled  bool
	DepthWriteEnabled bool
	BlendEnabled      bool
	CullMode          wgpu.CullMode
	Topology          wgpu.PrimitiveTopology
	VertexLayouts     []wgpu.VertexBufferLayout
	// Standalone builds the pipeline with an empty pipeline layout. Set for
	// the loading-triangle pipeline, whose shaders bind nothing; declaring
	// the scene layouts would require bind groups that do not exist before
	// SetupForRendering.
	Standalone bool
}

// RegisterRender builds and stores a graphics pipeline over the shared
// GPU-buffer layout and the one-shot texture array layout.
func (c *Cache) RegisterRender(key Key, vertex, fragment ShaderSource, opts RenderOptions) error {
	vs, err := c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          vertex.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: vertex.Code},
	})
	if err != nil {
		return fmt.Errorf("pipelinecache: compile vertex %s: %w", key, err)
	}
	fs, err := c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          fragment.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: fragment.Code},
	})
	if err != nil {
		return fmt.Errorf("pipelinecache: compile fragment %s: %w", key, err)
	}

	layouts := []*wgpu.BindGroupLayout{c.gpuBufferLayout, c.textureArrayLayout}
	if opts.Standalone {
		layouts = nil
	}
	pipelineLayout, err := c.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            string(key),
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return fmt.Errorf("pipelinecache: pipeline layout %s: %w", key, err)
	}

	// loading_triangle is the only registered pipeline with no depth
	// attachment (it renders directly to the swapchain image outside the
	// offscreen color/depth pair); a DepthStencilState would fail pipeline
	// creation against a render pass with no depth attachment bound, so it
	// is only attached when the caller names a real depth format.
	var depthStencil *wgpu.DepthStencilState
	if opts.DepthFormat != wgpu.TextureFormatUndefined {
		// Reverse-Z: depth clears to 0 and greater-is-closer, so the depth
		// pyramid's min reduction stays conservative for the occlusion test.
		depthCompare := wgpu.CompareFunctionGreater
		if !opts.DepthTestEnabled {
			depthCompare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:            opts.DepthFormat,
			DepthWriteEnabled: opts.DepthWriteEnabled,
			DepthCompare:      depthCompare,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	created, err := c.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  string(key) + " render pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertex.EntryPoint,
			Buffers:    opts.VertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragment.EntryPoint,
			Targets: []wgpu.ColorTargetState{
				{Format: opts.ColorFormat, WriteMask: wgpu.ColorWriteMaskAll, Blend: colorBlendState(opts.BlendEnabled)},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  opts.Topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  opts.CullMode,
		},
		Multisample:  wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return fmt.Errorf("pipelinecache: create %s: %w", key, err)
	}

	p := pipeline.New(string(key), pipeline.TypeRender,
		pipeline.WithDepth(opts.DepthTestEnabled, opts.DepthWriteEnabled),
		pipeline.WithBlend(opts.BlendEnabled),
		pipeline.WithCullMode(opts.CullMode),
		pipeline.WithTopology(opts.Topology),
	)
	p.SetRender(created)
	c.pipelines[key] = p
	return nil
}

// colorBlendState returns standard alpha-blending state for the transparent
// pipeline, or nil (opaque blend replace) for every other registered
// pipeline.
func colorBlendState(enabled bool) *wgpu.BlendState {
	if !enabled {
		return nil
	}
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

// Get returns a registered pipeline, or nil if key was never registered.
func (c *Cache) Get(key Key) *pipeline.Pipeline { return c.pipelines[key] }

// GPUBufferLayout returns the shared bind group layout every pipeline's
// group 0 is built against.
func (c *Cache) GPUBufferLayout() *wgpu.BindGroupLayout { return c.gpuBufferLayout }

// TextureArrayLayout returns the one-shot texture array bind group layout.
func (c *Cache) TextureArrayLayout() *wgpu.BindGroupLayout { return c.textureArrayLayout }

// DepthPyramidLayout returns the depth-pyramid generation pass's layout.
func (c *Cache) DepthPyramidLayout() *wgpu.BindGroupLayout { return c.depthPyramidLayout }

// CompositeLayout returns the swapchain-composite pass's layout.
func (c *Cache) CompositeLayout() *wgpu.BindGroupLayout { return c.compositeLayout }

// BackgroundFillLayout returns the empty-scene background-fill pass's layout.
func (c *Cache) BackgroundFillLayout() *wgpu.BindGroupLayout { return c.backgroundFillLayout }

// Release releases every stored pipeline's underlying GPU object and the
// shared layouts.
func (c *Cache) Release() {
	for _, p := range c.pipelines {
		p.Release()
	}
	for _, l := range []*wgpu.BindGroupLayout{c.gpuBufferLayout, c.textureArrayLayout, c.depthPyramidLayout, c.compositeLayout, c.backgroundFillLayout} {
		if l != nil {
			l.Release()
		}
	}
}
