// Package window is Blitzen's thin windowing layer: platform surface
// creation and the resize-flag contract, kept deliberately outside the
// renderer's scope.
//
// No mouse/scroll/keyboard callback surface is exposed: input plumbing
// belongs to the embedding application, and nothing in the renderer's
// interface consumes it. Resize handling is the one event the renderer
// needs: rather than firing a callback the draw loop has to thread through,
// the window latches a pending-resize flag the renderer's DrawFrame
// consumes once per call.
package window

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing: surface creation, the message pump,
// and a consumable resize flag. Kept as an interface so tests can
// substitute a fake without a live GLFW context.
type Window interface {
	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for
	// creating a WebGPU surface.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	IsRunning() bool

	// Close closes the window and releases platform resources.
	Close() error

	// ProcessMessages pumps the platform event queue once. Returns false
	// once the window has been closed.
	ProcessMessages() bool

	// Width and Height return the current framebuffer size in pixels.
	Width() int
	Height() int

	// TakeResize returns (width, height, true) exactly once per resize
	// event, and (0, 0, false) otherwise. The renderer's DrawFrame calls
	// this at the top of every frame to decide whether to recreate the
	// swapchain and attachments before recording.
	TakeResize() (uint32, uint32, bool)
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title               string
	minWidth, minHeight int
	maxWidth, maxHeight int
	width, height       int
	internalWindow      any

	resizePendingW, resizePendingH int32
	resizePending                  atomic.Bool
}

var _ Window = &engineWindow{}

// Option configures a Window at construction time.
type Option func(w *engineWindow)

func WithTitle(title string) Option      { return func(w *engineWindow) { w.title = title } }
func WithWidth(width int) Option         { return func(w *engineWindow) { w.width = width } }
func WithHeight(height int) Option       { return func(w *engineWindow) { w.height = height } }
func WithMinWidth(minWidth int) Option   { return func(w *engineWindow) { w.minWidth = minWidth } }
func WithMinHeight(minHeight int) Option { return func(w *engineWindow) { w.minHeight = minHeight } }
func WithMaxWidth(maxWidth int) Option   { return func(w *engineWindow) { w.maxWidth = maxWidth } }
func WithMaxHeight(maxHeight int) Option { return func(w *engineWindow) { w.maxHeight = maxHeight } }

// New creates a platform window sized per the given options (defaults:
// 1280x720, clamped between 200x200 and 7680x4320, generous enough for a
// 4K monitor without special-casing it).
func New(opts ...Option) (Window, error) {
	w := &engineWindow{
		title:     "Blitzen",
		width:     1280,
		height:    720,
		minWidth:  200,
		minHeight: 200,
		maxWidth:  7680,
		maxHeight: 4320,
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) onResize(width, height int) {
	w.width, w.height = width, height
	atomic.StoreInt32(&w.resizePendingW, int32(width))
	atomic.StoreInt32(&w.resizePendingH, int32(height))
	w.resizePending.Store(true)
}

func (w *engineWindow) TakeResize() (uint32, uint32, bool) {
	if !w.resizePending.CompareAndSwap(true, false) {
		return 0, 0, false
	}
	return uint32(atomic.LoadInt32(&w.resizePendingW)), uint32(atomic.LoadInt32(&w.resizePendingH)), true
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool { return platformIsRunningCheck(w) }

func (w *engineWindow) Close() error { return platformCloseWindow(w) }

func (w *engineWindow) ProcessMessages() bool {
	ok := platformProcessMessages(w)
	runtime.Gosched()
	return ok
}

func (w *engineWindow) Width() int  { return w.width }
func (w *engineWindow) Height() int { return w.height }
