// Package frame owns the double-buffered per-frame state the draw
// orchestrator writes fresh every frame: the camera uniform buffer, the
// transform staging buffer, the command encoders for each logical queue
// role, and the fence/semaphore set gating reuse of a frame's resources.
package frame

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/blitzen-gpu/blitzen/allocator"
	"github.com/blitzen-gpu/blitzen/common"
	"github.com/blitzen-gpu/blitzen/device"
	"github.com/cogentcore/webgpu/wgpu"
)

// InFlightCount is the number of frame slots cycled between: one being
// built on the CPU while the GPU consumes the other, avoiding a
// write-after-read hazard on the per-frame buffers.
const InFlightCount = 2

// Slot holds one frame's variable GPU state plus its completion fence.
// TransformBuffer is resized (recreated) whenever the scene's transform
// count grows past its current capacity; Camera is a single fixed-size
// uniform.
type Slot struct {
	Camera          *wgpu.Buffer
	TransformBuffer *wgpu.Buffer
	transformCap    uint32

	Fence *Fence

	// ClusterFence and ClusterSemaphore gate the cluster path's extra
	// compute submission: the CPU waits on ClusterFence between the cluster
	// compute submission and the graphics submission that follows it, and
	// the graphics queue additionally waits on ClusterSemaphore, signalled
	// once the compute submission completes. Allocated unconditionally
	// alongside Fence, same as every other per-slot resource; the
	// orchestrator only waits/signals them when the cluster path is active.
	ClusterFence     *Fence
	ClusterSemaphore Semaphore

	cameraStaging common.CameraViewData
}

// Ring cycles InFlightCount Slots. Index advances once per DrawFrame call.
type Ring struct {
	alloc *allocator.Allocator
	queue *wgpu.Queue

	slots [InFlightCount]*Slot
	index int
}

// NewRing allocates the initial frame slots. transformCapacityHint sizes
// the first TransformBuffer allocation; it grows on demand thereafter.
func NewRing(dev *device.Device, alloc *allocator.Allocator, transformCapacityHint uint32) (*Ring, error) {
	// Per-frame uploads ride the transfer queue role.
	r := &Ring{alloc: alloc, queue: dev.Queues().Transfer}

	for i := range r.slots {
		slot, err := newSlot(alloc, transformCapacityHint)
		if err != nil {
			return nil, fmt.Errorf("frame: init slot %d: %w", i, err)
		}
		r.slots[i] = slot
	}

	return r, nil
}

func newSlot(alloc *allocator.Allocator, transformCap uint32) (*Slot, error) {
	camera, err := alloc.CreateBuffer(allocator.BufferRequest{
		Label:       "frame camera view uniform",
		Size:        cameraViewDataSize,
		Usage:       wgpu.BufferUsageUniform,
		MemoryClass: allocator.MemoryClassHostVisible,
	})
	if err != nil {
		return nil, err
	}

	if transformCap == 0 {
		transformCap = 1
	}
	xforms, err := alloc.CreateBuffer(allocator.BufferRequest{
		Label:       "frame transform staging buffer",
		Size:        modelMatrixSize * uint64(transformCap),
		Usage:       wgpu.BufferUsageStorage,
		MemoryClass: allocator.MemoryClassHostVisible,
	})
	if err != nil {
		camera.Release()
		return nil, err
	}

	return &Slot{
		Camera:           camera,
		TransformBuffer:  xforms,
		transformCap:     transformCap,
		Fence:            NewSignaledFence(),
		ClusterFence:     NewSignaledFence(),
		ClusterSemaphore: NewSemaphore(),
	}, nil
}

var cameraViewDataSize = uint64(unsafe.Sizeof(common.CameraViewData{}))

const modelMatrixSize = uint64(16 * 4)

// Acquire rotates to the next slot and returns it. The caller must wait on
// the slot's Fence (signaled by the previous cycle's submission, or created
// signaled for a fresh slot) before touching its buffers, then call Reset to
// arm fresh sync objects for this frame's submissions.
func (r *Ring) Acquire() *Slot {
	slot := r.slots[r.index]
	r.index = (r.index + 1) % InFlightCount
	return slot
}

// Reset arms a fresh unsignaled fence for the frame about to be recorded,
// and drains any leftover cluster-semaphore token from a cycle that signaled
// without a matching wait. Call only after the slot's previous Fence has
// been waited on. ClusterFence stays signaled here; the cluster dispatch
// arms its own fence only when the cluster path actually submits, so frames
// (and WaitAllIdle) never block on a submission that was never made.
func (s *Slot) Reset() {
	s.Fence = NewFence()
	s.ClusterFence = NewSignaledFence()
	select {
	case <-s.ClusterSemaphore:
	default:
	}
}

// WriteCamera uploads view data into the slot's camera uniform.
func (r *Ring) WriteCamera(slot *Slot, view common.CameraViewData) {
	slot.cameraStaging = view
	r.queue.WriteBuffer(slot.Camera, 0, common.StructToBytes(&slot.cameraStaging))
}

// WriteTransforms uploads model matrices into the slot's transform staging
// buffer, growing (recreating) it first if capacity is insufficient.
func (r *Ring) WriteTransforms(slot *Slot, matrices [][16]float32) error {
	if uint32(len(matrices)) > slot.transformCap {
		newCap := uint32(len(matrices))
		buf, err := r.alloc.CreateBuffer(allocator.BufferRequest{
			Label:       "frame transform staging buffer",
			Size:        modelMatrixSize * uint64(newCap),
			Usage:       wgpu.BufferUsageStorage,
			MemoryClass: allocator.MemoryClassHostVisible,
		})
		if err != nil {
			return fmt.Errorf("frame: grow transform buffer to %d: %w", newCap, err)
		}
		slot.TransformBuffer.Release()
		slot.TransformBuffer = buf
		slot.transformCap = newCap
	}

	if len(matrices) == 0 {
		return nil
	}
	r.queue.WriteBuffer(slot.TransformBuffer, 0, common.SliceToBytes(matrices))
	return nil
}

// WaitAllIdle waits for every slot's in-flight fence, the nearest local
// substitute for a Vulkan-style device-idle wait; used before a
// window-resize recreates the swapchain and attachments. A slot whose fence
// has already signaled returns immediately.
func (r *Ring) WaitAllIdle(timeout time.Duration) {
	for _, s := range r.slots {
		if s == nil {
			continue
		}
		if s.Fence != nil {
			_ = s.Fence.Wait(timeout)
		}
		if s.ClusterFence != nil {
			_ = s.ClusterFence.Wait(timeout)
		}
	}
}

// Release tears down every slot's buffers.
func (r *Ring) Release() {
	for _, s := range r.slots {
		if s == nil {
			continue
		}
		if s.Camera != nil {
			s.Camera.Release()
		}
		if s.TransformBuffer != nil {
			s.TransformBuffer.Release()
		}
	}
}
