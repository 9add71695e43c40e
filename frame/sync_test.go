package frame

import (
	"testing"
	"time"
)

func TestFenceWaitTimesOut(t *testing.T) {
	f := NewFence()
	if err := f.Wait(10 * time.Millisecond); err == nil {
		t.Fatal("expected timeout error on unsignaled fence")
	}
}

func TestFenceWaitReturnsAfterSignal(t *testing.T) {
	f := NewFence()
	go func() {
		time.Sleep(5 * time.Millisecond)
		f.Signal()
	}()
	if err := f.Wait(200 * time.Millisecond); err != nil {
		t.Fatalf("Wait returned error after signal: %v", err)
	}
}

func TestNewSignaledFenceReturnsImmediately(t *testing.T) {
	f := NewSignaledFence()
	if err := f.Wait(10 * time.Millisecond); err != nil {
		t.Fatalf("signaled fence should not wait: %v", err)
	}
}

func TestSlotResetArmsFreshSyncObjects(t *testing.T) {
	s := &Slot{
		Fence:            NewSignaledFence(),
		ClusterFence:     NewSignaledFence(),
		ClusterSemaphore: NewSemaphore(),
	}
	s.ClusterSemaphore.Signal() // leftover token from a cycle with no waiter

	s.Reset()

	if err := s.Fence.Wait(10 * time.Millisecond); err == nil {
		t.Fatal("frame fence must be unsignaled after Reset")
	}
	if err := s.ClusterFence.Wait(10 * time.Millisecond); err != nil {
		t.Fatal("cluster fence must stay signaled until a cluster submission arms it")
	}
	select {
	case <-s.ClusterSemaphore:
		t.Fatal("leftover semaphore token must be drained by Reset")
	default:
	}
}

func TestSemaphoreSignalThenWait(t *testing.T) {
	s := NewSemaphore()
	s.Signal()

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after a prior Signal")
	}
}

func TestSemaphoreSignalIsNonBlocking(t *testing.T) {
	s := NewSemaphore()
	s.Signal()
	s.Signal() // must not block or panic even though nobody has waited yet
}
