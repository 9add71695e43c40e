// Package allocator is a thin wrapper over wgpu-native's buffer creation:
// buffers are requested with a (usage, memory class, mapped?) triple, and
// the process-wide device-object handle triple (instance, device,
// allocator) that scoped resource wrappers consult at destruction is
// registered here.
package allocator

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// MemoryClass distinguishes buffers the CPU writes every frame from buffers
// uploaded once and read only by the GPU thereafter.
type MemoryClass int

const (
	// MemoryClassDeviceLocal is GPU-only memory, uploaded once via a staging
	// buffer and transfer submission (the static scene buffers).
	MemoryClassDeviceLocal MemoryClass = iota
	// MemoryClassHostVisible is CPU-writable memory used by the per-frame
	// variable buffers. Rather than persistently mapping, callers keep a CPU
	// staging slice and flush via queue.WriteBuffer, which is the portable
	// WebGPU shape for every-frame uploads.
	MemoryClassHostVisible
)

// BufferRequest is the (usage, memory class, mapped?) triple the allocator
// accepts.
type BufferRequest struct {
	Label        string
	Size         uint64
	Usage        wgpu.BufferUsage
	MemoryClass  MemoryClass
	MappedAtInit bool
}

// handleTriple is the process-wide (instance, device, allocator) singleton
// scoped resource wrappers consult at destruction. No resource handle may
// outlive the triple it was allocated from.
type handleTriple struct {
	instance *wgpu.Instance
	device   *wgpu.Device
	live     bool
}

var (
	registryMu sync.Mutex
	registry   = map[uint64]*handleTriple{}
	nextID     uint64
)

// Allocator allocates GPU buffers for a single registered device-object
// handle triple.
type Allocator struct {
	id     uint64
	device *wgpu.Device
}

// New registers a new process-wide handle triple and returns an Allocator
// bound to it. Call Release at renderer destruction to unregister.
func New(instance *wgpu.Instance, device *wgpu.Device) *Allocator {
	registryMu.Lock()
	defer registryMu.Unlock()

	nextID++
	id := nextID
	registry[id] = &handleTriple{instance: instance, device: device, live: true}

	return &Allocator{id: id, device: device}
}

// CreateBuffer allocates a buffer per req. Usage always includes CopyDst so
// the buffer can be populated via a transfer submission or queue.WriteBuffer.
func (a *Allocator) CreateBuffer(req BufferRequest) (*wgpu.Buffer, error) {
	registryMu.Lock()
	triple, ok := registry[a.id]
	registryMu.Unlock()
	if !ok || !triple.live {
		return nil, fmt.Errorf("allocator: handle triple %d has been released", a.id)
	}

	usage := req.Usage | wgpu.BufferUsageCopyDst
	buf, err := a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            req.Label,
		Size:             req.Size,
		Usage:            usage,
		MappedAtCreation: req.MappedAtInit,
	})
	if err != nil {
		return nil, fmt.Errorf("allocator: create buffer %q: %w", req.Label, err)
	}
	return buf, nil
}

// Release unregisters this allocator's handle triple. Any resource wrapper
// still holding a handle from this triple must release it first.
func (a *Allocator) Release() {
	registryMu.Lock()
	defer registryMu.Unlock()
	if t, ok := registry[a.id]; ok {
		t.live = false
		delete(registry, a.id)
	}
}
