package swapchain

import (
	"fmt"

	"github.com/blitzen-gpu/blitzen/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// DepthPyramidFormat is r32float: the min-reduction compute pass reads and
// writes single-channel depth, never sampled for color.
const DepthPyramidFormat = wgpu.TextureFormatR32Float

// DepthPyramid is the mip-chained, power-of-two-sized min-reduction of the
// depth attachment the late cull pass samples conservatively against.
// Rebuilt whenever the swapchain resizes.
type DepthPyramid struct {
	device *wgpu.Device

	texture  *wgpu.Texture
	fullView *wgpu.TextureView
	mipViews []*wgpu.TextureView

	width, height uint32
	mipCount      uint32
}

// NewDepthPyramid allocates a depth pyramid sized to the previous power of
// two of extentWidth/extentHeight, never the next, so every pyramid texel
// covers at least one depth texel and the reduction stays conservative.
func NewDepthPyramid(device *wgpu.Device, extentWidth, extentHeight uint32) (*DepthPyramid, error) {
	width := common.PreviousPow2(extentWidth)
	height := common.PreviousPow2(extentHeight)
	if width == 0 {
		width = 1
	}
	if height == 0 {
		height = 1
	}

	mipW := common.MipCount(width)
	mipH := common.MipCount(height)
	mipCount := mipW
	if mipH > mipCount {
		mipCount = mipH
	}

	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "blitzen depth pyramid",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		Format:        DepthPyramidFormat,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageStorageBinding,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: mipCount,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("swapchain: create depth pyramid: %w", err)
	}

	dp := &DepthPyramid{
		device:   device,
		texture:  tex,
		width:    width,
		height:   height,
		mipCount: mipCount,
	}
	fullView, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:         "blitzen depth pyramid full view",
		Format:        DepthPyramidFormat,
		Dimension:     wgpu.TextureViewDimension2D,
		BaseMipLevel:  0,
		MipLevelCount: mipCount,
	})
	if err != nil {
		dp.Release()
		return nil, fmt.Errorf("swapchain: create depth pyramid view: %w", err)
	}
	dp.fullView = fullView

	dp.mipViews = make([]*wgpu.TextureView, mipCount)
	for i := uint32(0); i < mipCount; i++ {
		view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:         fmt.Sprintf("blitzen depth pyramid mip %d", i),
			Format:        DepthPyramidFormat,
			Dimension:     wgpu.TextureViewDimension2D,
			BaseMipLevel:  i,
			MipLevelCount: 1,
		})
		if err != nil {
			dp.Release()
			return nil, fmt.Errorf("swapchain: create depth pyramid mip view %d: %w", i, err)
		}
		dp.mipViews[i] = view
	}

	return dp, nil
}

// MipView returns the storage-bindable view of mip level i, used as the
// write target of the generation compute pass.
func (dp *DepthPyramid) MipView(i uint32) *wgpu.TextureView { return dp.mipViews[i] }

// FullView returns the sampled view spanning every mip, bound to the late
// cull pass at BindingDepthPyramid.
func (dp *DepthPyramid) FullView() *wgpu.TextureView { return dp.fullView }

// MipCount returns the number of mip levels generated.
func (dp *DepthPyramid) MipCount() uint32 { return dp.mipCount }

// Extent returns the pyramid's base mip dimensions (the previous
// power-of-two of the depth attachment's extent).
func (dp *DepthPyramid) Extent() (uint32, uint32) { return dp.width, dp.height }

// MipExtent returns the dimensions of mip level i.
func (dp *DepthPyramid) MipExtent(i uint32) (uint32, uint32) {
	w := dp.width >> i
	h := dp.height >> i
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return w, h
}

// Release tears down the pyramid texture and its views.
func (dp *DepthPyramid) Release() {
	for _, v := range dp.mipViews {
		if v != nil {
			v.Release()
		}
	}
	dp.mipViews = nil
	if dp.fullView != nil {
		dp.fullView.Release()
		dp.fullView = nil
	}
	if dp.texture != nil {
		dp.texture.Release()
		dp.texture = nil
	}
}
