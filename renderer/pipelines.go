package renderer

import (
	"fmt"

	"github.com/blitzen-gpu/blitzen/pipelinecache"
	"github.com/blitzen-gpu/blitzen/swapchain"
	"github.com/cogentcore/webgpu/wgpu"
)

// Fixed entry point names every WGSL asset in the shader path set is
// expected to use; shader.Loader does not parse entry points out of source
// (shader.go doc comment).
const (
	vertexEntryPoint   = "vs_main"
	fragmentEntryPoint = "fs_main"
	computeEntryPoint  = "cs_main"
)

func (r *Renderer) loadCompute(name string) (pipelinecache.ShaderSource, error) {
	src, err := r.loader.Load(name, "comp", computeEntryPoint)
	if err != nil {
		return pipelinecache.ShaderSource{}, err
	}
	return pipelinecache.ShaderSource{Label: src.Label, Code: src.Code, EntryPoint: src.EntryPoint}, nil
}

func (r *Renderer) loadVertex(name string) (pipelinecache.ShaderSource, error) {
	src, err := r.loader.Load(name, "vert", vertexEntryPoint)
	if err != nil {
		return pipelinecache.ShaderSource{}, err
	}
	return pipelinecache.ShaderSource{Label: src.Label, Code: src.Code, EntryPoint: src.EntryPoint}, nil
}

func (r *Renderer) loadFragment(name string) (pipelinecache.ShaderSource, error) {
	src, err := r.loader.Load(name, "frag", fragmentEntryPoint)
	if err != nil {
		return pipelinecache.ShaderSource{}, err
	}
	return pipelinecache.ShaderSource{Label: src.Label, Code: src.Code, EntryPoint: src.EntryPoint}, nil
}

// registerPipelines loads and compiles the entire fixed pipeline set in a
// fixed order: every cull/composite/background-fill compute pipeline, the
// opaque/transparent/ONPC graphics pipelines (all three read
// vertices through the BindingVertices storage buffer rather than a
// traditional vertex-buffer binding, so none of them declare vertex
// layouts), and the loading-triangle pipeline DrawWhileWaiting needs before
// any scene resources exist.
type computePipelineSpec struct {
	key       pipelinecache.Key
	name      string
	ownLayout *wgpu.BindGroupLayout
}

func (r *Renderer) registerPipelines() error {
	computePipelines := []computePipelineSpec{
		{pipelinecache.KeyInitialCull, "initial_cull", nil},
		{pipelinecache.KeyLateCull, "late_cull", nil},
		{pipelinecache.KeyTransparentCull, "transparent_cull", nil},
		{pipelinecache.KeyONPCCull, "onpc_cull", nil},
		{pipelinecache.KeyDepthPyramid, "depth_pyramid", r.pipes.DepthPyramidLayout()},
		{pipelinecache.KeyComposite, "composite", r.pipes.CompositeLayout()},
		{pipelinecache.KeyBackgroundFill, "background_fill", r.pipes.BackgroundFillLayout()},
	}
	if r.cfg.ClusterPath {
		computePipelines = append(computePipelines,
			computePipelineSpec{pipelinecache.KeyPreClusterCull, "pre_cluster_cull", nil},
			computePipelineSpec{pipelinecache.KeyClusterCull, "cluster_cull", nil},
		)
	}

	for _, cp := range computePipelines {
		src, err := r.loadCompute(cp.name)
		if err != nil {
			return fmt.Errorf("load %s: %w", cp.name, err)
		}
		if err := r.pipes.RegisterCompute(cp.key, src, cp.ownLayout); err != nil {
			return fmt.Errorf("register %s: %w", cp.name, err)
		}
	}

	type geometryPipelineSpec struct {
		key         pipelinecache.Key
		name        string
		depthTest   bool
		depthWrite  bool
		blend       bool
		cullMode    wgpu.CullMode
		colorFormat wgpu.TextureFormat
		depthFormat wgpu.TextureFormat
	}
	geometryPipelines := []geometryPipelineSpec{
		{pipelinecache.KeyOpaque, "opaque", true, true, false, wgpu.CullModeBack, swapchain.ColorFormat, swapchain.DepthFormat},
		// Transparent geometry is not occluded and frequently double-sided
		// (foliage, glass), so face culling is disabled; depth is tested but
		// not written so overlapping translucent surfaces both contribute.
		{pipelinecache.KeyTransparent, "transparent", true, false, true, wgpu.CullModeNone, swapchain.ColorFormat, swapchain.DepthFormat},
		{pipelinecache.KeyONPC, "onpc", true, true, false, wgpu.CullModeBack, swapchain.ColorFormat, swapchain.DepthFormat},
	}
	for _, gp := range geometryPipelines {
		vs, err := r.loadVertex(gp.name)
		if err != nil {
			return fmt.Errorf("load %s vertex: %w", gp.name, err)
		}
		fs, err := r.loadFragment(gp.name)
		if err != nil {
			return fmt.Errorf("load %s fragment: %w", gp.name, err)
		}
		err = r.pipes.RegisterRender(gp.key, vs, fs, pipelinecache.RenderOptions{
			ColorFormat:       gp.colorFormat,
			DepthFormat:       gp.depthFormat,
			DepthTestEnabled:  gp.depthTest,
			DepthWriteEnabled: gp.depthWrite,
			BlendEnabled:      gp.blend,
			CullMode:          gp.cullMode,
			Topology:          wgpu.PrimitiveTopologyTriangleList,
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", gp.name, err)
		}
	}

	lvs, err := r.loadVertex("loading_triangle")
	if err != nil {
		return fmt.Errorf("load loading_triangle vertex: %w", err)
	}
	lfs, err := r.loadFragment("loading_triangle")
	if err != nil {
		return fmt.Errorf("load loading_triangle fragment: %w", err)
	}
	err = r.pipes.RegisterRender(pipelinecache.KeyLoadingTriangle, lvs, lfs, pipelinecache.RenderOptions{
		ColorFormat: r.sc.SurfaceFormat(),
		CullMode:    wgpu.CullModeNone,
		Topology:    wgpu.PrimitiveTopologyTriangleList,
		Standalone:  true,
	})
	if err != nil {
		return fmt.Errorf("register loading_triangle: %w", err)
	}

	return nil
}
