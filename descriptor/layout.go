package descriptor

import "github.com/cogentcore/webgpu/wgpu"

// StageVisibility is a bitmask of shader stages a binding is visible to.
type StageVisibility = wgpu.ShaderStage

// bufferBinding describes one entry of the GPU-buffer push-descriptor set.
type bufferBinding struct {
	id         BindingId
	bufferType wgpu.BufferBindingType
	visibility wgpu.ShaderStage
}

// gpuBufferBindings is the fixed, stable binding table of the main set.
// Order does not matter (each entry carries its own BindingId), but every
// binding the cull/draw/composite shaders reference must appear here
// exactly once.
var gpuBufferBindings = []bufferBinding{
	{BindingCameraView, wgpu.BufferBindingTypeUniform, wgpu.ShaderStageVertex | wgpu.ShaderStageFragment | wgpu.ShaderStageCompute},
	{BindingVertices, wgpu.BufferBindingTypeReadOnlyStorage, wgpu.ShaderStageVertex},
	{BindingPrimitiveSurface, wgpu.BufferBindingTypeReadOnlyStorage, wgpu.ShaderStageVertex | wgpu.ShaderStageCompute},
	{BindingLodTable, wgpu.BufferBindingTypeReadOnlyStorage, wgpu.ShaderStageVertex | wgpu.ShaderStageCompute},
	{BindingTransforms, wgpu.BufferBindingTypeReadOnlyStorage, wgpu.ShaderStageVertex | wgpu.ShaderStageCompute},
	{BindingMaterials, wgpu.BufferBindingTypeReadOnlyStorage, wgpu.ShaderStageFragment},
	{BindingIndirectDraw, wgpu.BufferBindingTypeStorage, wgpu.ShaderStageVertex | wgpu.ShaderStageCompute},
	{BindingIndirectCount, wgpu.BufferBindingTypeStorage, wgpu.ShaderStageCompute},
	{BindingVisibility, wgpu.BufferBindingTypeStorage, wgpu.ShaderStageCompute},
	{BindingClusters, wgpu.BufferBindingTypeReadOnlyStorage, wgpu.ShaderStageCompute},
	{BindingClusterIndex, wgpu.BufferBindingTypeReadOnlyStorage, wgpu.ShaderStageCompute},
	{BindingClusterDispatch, wgpu.BufferBindingTypeStorage, wgpu.ShaderStageCompute},
	{BindingONPCRenderObject, wgpu.BufferBindingTypeReadOnlyStorage, wgpu.ShaderStageVertex | wgpu.ShaderStageCompute},
	{BindingPushConstants, wgpu.BufferBindingTypeUniform, wgpu.ShaderStageVertex | wgpu.ShaderStageFragment | wgpu.ShaderStageCompute},
}

// BuildGPUBufferLayout builds the BindGroupLayoutDescriptor for the main
// GPU-buffer set (group 0). includeDepthPyramid adds binding 3 (the sampled
// depth pyramid, read by the late, ONPC and cluster cull passes);
// clusterPath adds bindings 8/12/13; rt
// adds binding 15. The RT binding is an explicit optional entry, never a
// conditionally-dangling write.
func BuildGPUBufferLayout(includeDepthPyramid, clusterPath, rt bool) wgpu.BindGroupLayoutDescriptor {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(gpuBufferBindings)+3)

	for _, b := range gpuBufferBindings {
		if !clusterPath && (b.id == BindingClusters || b.id == BindingClusterIndex || b.id == BindingClusterDispatch) {
			continue
		}
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(b.id),
			Visibility: b.visibility,
			Buffer: wgpu.BufferBindingLayout{
				Type: b.bufferType,
			},
		})
	}

	if includeDepthPyramid {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(BindingDepthPyramid),
			Visibility: wgpu.ShaderStageCompute,
			Texture: wgpu.TextureBindingLayout{
				// r32float is not filterable in core WebGPU; the late cull
				// samples the pyramid with textureLoad/a non-filtering
				// sampler only.
				SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		})
	}

	if rt {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(BindingAccelStructure),
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeReadOnlyStorage,
			},
		})
	}

	return wgpu.BindGroupLayoutDescriptor{
		Label:   "blitzen gpu buffer set",
		Entries: entries,
	}
}

// BuildTextureArrayLayout builds the separately allocated, one-shot
// descriptor set for the scene's texture array, bound at TextureArrayGroup
// for the graphics passes. A bindless descriptor-indexed texture array has
// no WebGPU equivalent (no binding arrays in the core model); the same
// contract of material texture ids indexing a flat pool of textures
// through one binding is carried by a single texture_2d_array whose layer
// index is the texture id.
func BuildTextureArrayLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "blitzen texture array set",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2DArray,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	}
}

// BuildDepthPyramidLayout builds the small layout used by the depth-pyramid
// generation compute pass: one sampled source view, one storage destination
// view, the reduction sampler, and the per-mip extent uniform.
func BuildDepthPyramidLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "blitzen depth pyramid set",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageCompute,
				StorageTexture: wgpu.StorageTextureBindingLayout{
					Access:        wgpu.StorageTextureAccessWriteOnly,
					Format:        wgpu.TextureFormatR32Float,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageCompute,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeNonFiltering,
				},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
		},
	}
}

// BuildCompositeLayout builds the small layout used by the
// swapchain-composite compute pass: sampled color attachment in, storage
// swapchain image out (in the surface's own format), the color sampler, and
// the draw-extent uniform.
func BuildCompositeLayout(surfaceFormat wgpu.TextureFormat) wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "blitzen composite set",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageCompute,
				StorageTexture: wgpu.StorageTextureBindingLayout{
					Access:        wgpu.StorageTextureAccessWriteOnly,
					Format:        surfaceFormat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageCompute,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
			{
				Binding:    3,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
		},
	}
}

// BuildBackgroundFillLayout builds the one-binding layout of the empty-scene
// background-fill pass, which paints the clear color straight into the
// offscreen color attachment.
func BuildBackgroundFillLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "blitzen background fill set",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute,
				StorageTexture: wgpu.StorageTextureBindingLayout{
					Access:        wgpu.StorageTextureAccessWriteOnly,
					Format:        wgpu.TextureFormatRGBA16Float,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
		},
	}
}
