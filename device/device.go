// Package device selects and wraps the WebGPU adapter/device pair Blitzen
// renders with, and enumerates the logical queues and optional capabilities
// the draw orchestrator and pipeline cache probe before use.
//
// Vulkan exposes up to four independent queue families (graphics, present,
// dedicated transfer, dedicated compute); wgpu-native exposes a single
// logical queue per device. Queues models the four Blitzen roles as named
// handles over that one wgpu.Queue.
package device

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Device owns the WebGPU instance/adapter/device/queue handles and the
// capability probe results used to decide which optional passes (cluster
// path, ray tracing) the rest of the renderer may enable.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	surface  *wgpu.Surface
	queues   Queues

	caps Capabilities
}

// Config describes the requirements a Device must be created with.
type Config struct {
	// SurfaceDescriptor describes the platform surface the adapter must be
	// compatible with, supplied by the windowing layer
	// (window.Window.SurfaceDescriptor). The wgpu.Surface itself is created
	// here rather than accepted pre-built: a surface must be created from
	// the same wgpu.Instance that later requests the adapter.
	SurfaceDescriptor *wgpu.SurfaceDescriptor
	// ForceFallbackAdapter requests a software adapter, primarily for tests
	// and headless CI environments without a GPU.
	ForceFallbackAdapter bool
	// RequireComputeQueue enables the dedicated-compute logical queue,
	// required only when the cluster path is enabled.
	RequireComputeQueue bool
}

// New selects a physical device meeting Blitzen's hard-required feature set
// (a device and a queue capable of graphics, transfer and, if requested,
// compute) and probes the optional feature set. Returns a non-nil error
// naming the feature that failed if no suitable device is found; callers
// must treat this as fatal at init.
func New(cfg Config) (*Device, error) {
	runtime.LockOSThread()

	instance := wgpu.CreateInstance(nil)

	var surface *wgpu.Surface
	if cfg.SurfaceDescriptor != nil {
		surface = instance.CreateSurface(cfg.SurfaceDescriptor)
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.ForceFallbackAdapter,
		CompatibleSurface:    surface,
	})
	if err != nil {
		return nil, fmt.Errorf("device: unsupported device: no adapter matched requirements: %w", err)
	}

	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 4
	limits.MaxStorageBuffersPerShaderStage = 13
	// The depth-pyramid generation shader runs 32x32 tile workgroups, above
	// the WebGPU default of 256 invocations per workgroup.
	limits.MaxComputeInvocationsPerWorkgroup = 1024

	wgpuDevice, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "blitzen device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("device: unsupported device: required limits not satisfied: %w", err)
	}

	d := &Device{
		instance: instance,
		adapter:  adapter,
		device:   wgpuDevice,
		surface:  surface,
	}
	d.queues = newQueues(wgpuDevice.GetQueue())
	d.caps = probeCapabilities(limits)

	if cfg.RequireComputeQueue && !d.caps.ComputeQueue {
		return nil, fmt.Errorf("device: unsupported device: cluster path requested but no dedicated compute capability")
	}

	return d, nil
}

// Instance returns the WebGPU instance handle.
func (d *Device) Instance() *wgpu.Instance { return d.instance }

// Adapter returns the selected physical adapter.
func (d *Device) Adapter() *wgpu.Adapter { return d.adapter }

// Device returns the logical WebGPU device.
func (d *Device) Device() *wgpu.Device { return d.device }

// Surface returns the surface created from Config.SurfaceDescriptor, or nil
// if Device was constructed without one (headless/offscreen use).
func (d *Device) Surface() *wgpu.Surface { return d.surface }

// Queues returns the four logical queue roles.
func (d *Device) Queues() Queues { return d.queues }

// Capabilities returns the optional-feature probe results.
func (d *Device) Capabilities() Capabilities { return d.caps }

// Release tears down the device and instance. Any resource allocated
// through this device must be released first.
func (d *Device) Release() {
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}
