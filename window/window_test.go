package window

import "testing"

// newTestWindow builds an engineWindow without touching GLFW, so the
// resize-flag contract can be exercised in a headless test environment.
func newTestWindow() *engineWindow {
	return &engineWindow{
		title:     "test",
		width:     640,
		height:    480,
		minWidth:  200,
		minHeight: 200,
		maxWidth:  7680,
		maxHeight: 4320,
	}
}

func TestTakeResizeFalseWhenNoPendingResize(t *testing.T) {
	w := newTestWindow()
	if _, _, ok := w.TakeResize(); ok {
		t.Fatal("expected no pending resize on a fresh window")
	}
}

func TestTakeResizeConsumedExactlyOnce(t *testing.T) {
	w := newTestWindow()
	w.onResize(1920, 1080)

	width, height, ok := w.TakeResize()
	if !ok {
		t.Fatal("expected a pending resize")
	}
	if width != 1920 || height != 1080 {
		t.Fatalf("TakeResize = (%d, %d), want (1920, 1080)", width, height)
	}

	if _, _, ok := w.TakeResize(); ok {
		t.Fatal("resize flag should be consumed after one TakeResize call")
	}
}

func TestOnResizeUpdatesWidthHeight(t *testing.T) {
	w := newTestWindow()
	w.onResize(800, 600)
	if w.Width() != 800 || w.Height() != 600 {
		t.Fatalf("Width/Height = (%d, %d), want (800, 600)", w.Width(), w.Height())
	}
}

func TestWithOptionsOverrideDefaults(t *testing.T) {
	w := &engineWindow{}
	for _, opt := range []Option{
		WithTitle("custom"),
		WithWidth(1024),
		WithHeight(768),
		WithMinWidth(100),
		WithMinHeight(100),
		WithMaxWidth(2000),
		WithMaxHeight(2000),
	} {
		opt(w)
	}
	if w.title != "custom" || w.width != 1024 || w.height != 768 {
		t.Fatalf("options not applied: %+v", w)
	}
}
