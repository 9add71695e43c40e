package device

import "github.com/cogentcore/webgpu/wgpu"

// Capabilities records the optional features Blitzen's device layer probes
// after the hard-required feature set is confirmed: mesh-shading-class
// limits, indirect count draws, and ray tracing. WebGPU has no direct
// equivalent of most of these; each is mapped onto the nearest concept the
// wgpu-native limits surface exposes, or left false when nothing in the
// WebGPU model corresponds, with the cull/compute paths falling back
// accordingly rather than asserting the feature unconditionally.
type Capabilities struct {
	// ComputeQueue reports whether the device can be used for dispatching
	// the cluster-path pre-cull/cluster-cull compute passes. A wgpu device
	// always exposes compute on its
	// single logical queue, so this is true whenever MaxComputeWorkgroupsPerDimension
	// is non-zero.
	ComputeQueue bool

	// MeshShading reports whether the adapter's limits are generous enough
	// to run the meshlet/cluster path's draw-time mesh work as a compute
	// pre-pass followed by ordinary indexed draws (wgpu has no mesh-shader
	// binding at all).
	MeshShading bool

	// IndirectCountDraws reports whether DrawIndexedIndirectCount is
	// available (the wgpu-native multi_draw_indexed_indirect_count
	// extension). When false, the orchestrator falls back to one indirect
	// draw per reserved slot with a fixed count.
	IndirectCountDraws bool

	// RayTracing reports whether acceleration-structure binding is
	// available. wgpu-native has no ray tracing surface at all at the time
	// of writing, so this is always false; kept as a field so the
	// orchestrator's RT branch (descriptor binding 15) has a single place
	// to check and the binding stays an explicit optional entry.
	RayTracing bool

	MaxWorkgroupsPerDimension uint32
	MaxStorageBuffersPerStage uint32
}

// probeCapabilities derives the optional-feature booleans from the limit set
// the device was granted. RequestDevice fails outright when a required limit
// cannot be satisfied, so a successfully created device is known to carry at
// least these limits; probing the granted set rather than re-querying the
// adapter keeps the probe tied to what the renderer may actually use.
func probeCapabilities(granted wgpu.Limits) Capabilities {
	c := Capabilities{
		MaxWorkgroupsPerDimension: granted.MaxComputeWorkgroupsPerDimension,
		MaxStorageBuffersPerStage: granted.MaxStorageBuffersPerShaderStage,
	}
	c.ComputeQueue = granted.MaxComputeWorkgroupsPerDimension > 0
	c.MeshShading = granted.MaxStorageBuffersPerShaderStage >= 13 && granted.MaxComputeInvocationsPerWorkgroup >= 64
	c.IndirectCountDraws = false
	c.RayTracing = false
	return c
}
