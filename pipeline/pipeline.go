// Package pipeline wraps a single compiled wgpu render or compute pipeline
// plus the fixed-function state it was built with, so pipelinecache can
// register and look pipelines back up by Key without every caller re-deriving
// depth/blend/cull settings from the raw wgpu objects. There are no
// per-material pipeline permutations; pipelinecache loads fixed WGSL source
// directly rather than discovering shaders through a material system.
package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// Type identifies whether a Pipeline is a compute pipeline or a render
// pipeline.
type Type int

const (
	TypeCompute Type = iota
	TypeRender
)

// Pipeline holds the underlying wgpu pipeline object plus the
// fixed-function state it was configured with.
type Pipeline struct {
	key          string
	pipelineType Type

	renderPipeline  *wgpu.RenderPipeline
	computePipeline *wgpu.ComputePipeline

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
}

// Option configures fixed-function state at construction time.
type Option func(*Pipeline)

// WithDepth sets whether this render pipeline tests and/or writes depth.
func WithDepth(test, write bool) Option {
	return func(p *Pipeline) { p.depthTestEnabled, p.depthWriteEnabled = test, write }
}

// WithBlend enables alpha blending (used by the transparent pass).
func WithBlend(enabled bool) Option {
	return func(p *Pipeline) { p.blendEnabled = enabled }
}

// WithCullMode sets the triangle cull mode.
func WithCullMode(mode wgpu.CullMode) Option {
	return func(p *Pipeline) { p.cullMode = mode }
}

// WithTopology sets the primitive topology (triangle list for every Blitzen
// pipeline today, but kept explicit rather than hardcoded).
func WithTopology(topology wgpu.PrimitiveTopology) Option {
	return func(p *Pipeline) { p.topology = topology }
}

// New creates a Pipeline shell. The caller fills in RenderPipeline or
// ComputePipeline after compiling the wgpu object, since pipelinecache
// needs the layout before it can create the underlying pipeline.
func New(key string, pipelineType Type, opts ...Option) *Pipeline {
	p := &Pipeline{
		key:               key,
		pipelineType:      pipelineType,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Key() string             { return p.key }
func (p *Pipeline) Type() Type              { return p.pipelineType }
func (p *Pipeline) DepthTestEnabled() bool  { return p.depthTestEnabled }
func (p *Pipeline) DepthWriteEnabled() bool { return p.depthWriteEnabled }
func (p *Pipeline) BlendEnabled() bool      { return p.blendEnabled }
func (p *Pipeline) CullMode() wgpu.CullMode { return p.cullMode }
func (p *Pipeline) Topology() wgpu.PrimitiveTopology { return p.topology }

// Render returns the underlying render pipeline, or nil for a compute
// pipeline.
func (p *Pipeline) Render() *wgpu.RenderPipeline { return p.renderPipeline }

// Compute returns the underlying compute pipeline, or nil for a render
// pipeline.
func (p *Pipeline) Compute() *wgpu.ComputePipeline { return p.computePipeline }

// SetRender stores the compiled render pipeline.
func (p *Pipeline) SetRender(rp *wgpu.RenderPipeline) { p.renderPipeline = rp }

// SetCompute stores the compiled compute pipeline.
func (p *Pipeline) SetCompute(cp *wgpu.ComputePipeline) { p.computePipeline = cp }

// Release releases the underlying wgpu pipeline object, whichever kind this
// is.
func (p *Pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
	}
	if p.computePipeline != nil {
		p.computePipeline.Release()
	}
}
