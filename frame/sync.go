package frame

import (
	"context"
	"fmt"
	"time"
)

// Fence is Blitzen's channel-based adaptation of a Vulkan-style fence: the
// CPU side of "may this frame slot's buffers be rewritten yet". The
// orchestrator signals it once the slot's submission is queued; Fence gives
// callers a blocking Wait with a deadline.
type Fence struct {
	done chan struct{}
}

// NewFence returns an unsignaled fence.
func NewFence() *Fence {
	return &Fence{done: make(chan struct{})}
}

// NewSignaledFence returns a fence that is already satisfied. Frame slots
// start with signaled fences so the first acquisition of each slot does not
// wait on work that was never submitted, the same convention as creating a
// Vulkan fence with VK_FENCE_CREATE_SIGNALED_BIT.
func NewSignaledFence() *Fence {
	f := &Fence{done: make(chan struct{})}
	close(f.done)
	return f
}

// Signal marks the fence as satisfied. Safe to call at most once; a second
// call panics, mirroring a double-signal being a programmer error rather
// than a runtime condition.
func (f *Fence) Signal() {
	close(f.done)
}

// Wait blocks until Signal is called or timeout elapses. Returns an error on
// timeout so the caller (the frame scheduler) can decide whether a stalled
// GPU queue is fatal; a submission that never completes must not hang the
// frame loop forever.
func (f *Fence) Wait(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("frame: fence wait timed out after %s", timeout)
	}
}

// Semaphore is Blitzen's channel-based adaptation of a Vulkan (binary)
// semaphore: a GPU-timeline ordering hint the frame scheduler uses to
// order dependent submissions (e.g. "don't begin the late cull dispatch
// until the depth-pyramid generation pass has been submitted"). Buffered to
// one so a Signal never blocks even if nobody is waiting yet.
type Semaphore chan struct{}

// NewSemaphore returns an unsignaled semaphore.
func NewSemaphore() Semaphore {
	return make(Semaphore, 1)
}

// Signal marks the semaphore ready. Non-blocking; a second signal before a
// wait is a no-op rather than a panic, since unlike a fence a semaphore may
// legitimately be reused across frames once drained.
func (s Semaphore) Signal() {
	select {
	case s <- struct{}{}:
	default:
	}
}

// Wait blocks until Signal has been called.
func (s Semaphore) Wait() {
	<-s
}
