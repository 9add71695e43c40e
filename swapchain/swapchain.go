// Package swapchain owns the presentable surface configuration and the
// per-frame color/depth attachments the draw orchestrator renders into
// before compositing to the swapchain image.
package swapchain

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ColorFormat and DepthFormat are fixed: rgba16float gives the composite
// pass HDR range, depth32float matches the depth pyramid's precision
// requirement.
const (
	ColorFormat = wgpu.TextureFormatRGBA16Float
	DepthFormat = wgpu.TextureFormatDepth32Float
)

// Swapchain wraps the configured surface plus the color and depth
// attachments the opaque/transparent/ONPC passes render into. Resize
// recreates every GPU-sized resource in place.
type Swapchain struct {
	device  *wgpu.Device
	adapter *wgpu.Adapter
	surface *wgpu.Surface

	width, height uint32

	color     *wgpu.Texture
	colorView *wgpu.TextureView
	depth     *wgpu.Texture
	depthView *wgpu.TextureView

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
}

// Config describes the initial swapchain setup.
type Config struct {
	Device  *wgpu.Device
	Adapter *wgpu.Adapter
	Surface *wgpu.Surface
	Width   uint32
	Height  uint32
}

// New configures the surface and allocates the initial color/depth
// attachments.
func New(cfg Config) (*Swapchain, error) {
	caps := cfg.Surface.GetCapabilities(cfg.Adapter)
	if len(caps.Formats) == 0 {
		return nil, fmt.Errorf("swapchain: surface reports no supported formats")
	}

	sc := &Swapchain{
		device:        cfg.Device,
		adapter:       cfg.Adapter,
		surface:       cfg.Surface,
		surfaceFormat: caps.Formats[0],
		alphaMode:     caps.AlphaModes[0],
	}

	sc.configureSurface(cfg.Width, cfg.Height)

	if err := sc.resizeAttachments(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	return sc, nil
}

// configureSurface (re)configures the presentable surface. StorageBinding is
// required on the swapchain images because the composite pass writes them
// from a compute shader rather than a render pass.
func (sc *Swapchain) configureSurface(width, height uint32) {
	sc.surface.Configure(sc.adapter, sc.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageStorageBinding,
		Format:      sc.surfaceFormat,
		Width:       width,
		Height:      height,
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   sc.alphaMode,
	})
}

// Resize reconfigures the surface and recreates the color/depth attachments
// at the new extent. Must be called before the next DrawFrame after the
// window signals a size change.
func (sc *Swapchain) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("swapchain: resize to zero extent is not allowed")
	}

	sc.configureSurface(width, height)

	return sc.resizeAttachments(width, height)
}

func (sc *Swapchain) resizeAttachments(width, height uint32) error {
	sc.releaseAttachments()

	color, err := sc.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "blitzen color attachment",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		Format:        ColorFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageStorageBinding,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("swapchain: create color attachment: %w", err)
	}

	depth, err := sc.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "blitzen depth attachment",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		color.Release()
		return fmt.Errorf("swapchain: create depth attachment: %w", err)
	}

	colorView, err := color.CreateView(nil)
	if err != nil {
		depth.Release()
		color.Release()
		return fmt.Errorf("swapchain: create color view: %w", err)
	}
	depthView, err := depth.CreateView(nil)
	if err != nil {
		colorView.Release()
		depth.Release()
		color.Release()
		return fmt.Errorf("swapchain: create depth view: %w", err)
	}

	sc.color = color
	sc.colorView = colorView
	sc.depth = depth
	sc.depthView = depthView
	sc.width, sc.height = width, height

	return nil
}

func (sc *Swapchain) releaseAttachments() {
	if sc.colorView != nil {
		sc.colorView.Release()
		sc.colorView = nil
	}
	if sc.color != nil {
		sc.color.Release()
		sc.color = nil
	}
	if sc.depthView != nil {
		sc.depthView.Release()
		sc.depthView = nil
	}
	if sc.depth != nil {
		sc.depth.Release()
		sc.depth = nil
	}
}

// ColorView returns the offscreen HDR color attachment view the opaque,
// transparent and ONPC passes render into.
func (sc *Swapchain) ColorView() *wgpu.TextureView { return sc.colorView }

// DepthView returns the depth attachment view.
func (sc *Swapchain) DepthView() *wgpu.TextureView { return sc.depthView }

// Extent returns the current attachment width and height.
func (sc *Swapchain) Extent() (uint32, uint32) { return sc.width, sc.height }

// SurfaceFormat returns the presentable surface's native format, used by
// the loading-triangle pipeline which (unlike the opaque/transparent/ONPC
// passes) renders directly to the swapchain image rather than through the
// offscreen rgba16float color attachment.
func (sc *Swapchain) SurfaceFormat() wgpu.TextureFormat { return sc.surfaceFormat }

// AcquireFrame acquires the next presentable surface texture for the
// composite pass to write into. The caller releases it after Present.
func (sc *Swapchain) AcquireFrame() (*wgpu.Texture, error) {
	tex, err := sc.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("swapchain: acquire frame: %w", err)
	}
	return tex, nil
}

// Present presents the surface's current frame.
func (sc *Swapchain) Present() {
	sc.surface.Present()
}

// Release tears down the attachments. The surface itself is owned by the
// device layer and is not released here.
func (sc *Swapchain) Release() {
	sc.releaseAttachments()
}
