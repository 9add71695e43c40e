package texture

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// WGPUFormat maps a decoded DDS Format onto the matching wgpu
// block-compressed texture format, covering the full BC1-BC7 set.
func WGPUFormat(f Format) (wgpu.TextureFormat, error) {
	switch f {
	case FormatBC1Unorm:
		return wgpu.TextureFormatBC1RGBAUnorm, nil
	case FormatBC1UnormSRGB:
		return wgpu.TextureFormatBC1RGBAUnormSrgb, nil
	case FormatBC2Unorm:
		return wgpu.TextureFormatBC2RGBAUnorm, nil
	case FormatBC2UnormSRGB:
		return wgpu.TextureFormatBC2RGBAUnormSrgb, nil
	case FormatBC3Unorm:
		return wgpu.TextureFormatBC3RGBAUnorm, nil
	case FormatBC3UnormSRGB:
		return wgpu.TextureFormatBC3RGBAUnormSrgb, nil
	case FormatBC4Unorm:
		return wgpu.TextureFormatBC4RUnorm, nil
	case FormatBC4Snorm:
		return wgpu.TextureFormatBC4RSnorm, nil
	case FormatBC5Unorm:
		return wgpu.TextureFormatBC5RGUnorm, nil
	case FormatBC5Snorm:
		return wgpu.TextureFormatBC5RGSnorm, nil
	case FormatBC6HUF16:
		return wgpu.TextureFormatBC6HRGBUfloat, nil
	case FormatBC6HSF16:
		return wgpu.TextureFormatBC6HRGBFloat, nil
	case FormatBC7Unorm:
		return wgpu.TextureFormatBC7RGBAUnorm, nil
	case FormatBC7UnormSRGB:
		return wgpu.TextureFormatBC7RGBAUnormSrgb, nil
	default:
		return wgpu.TextureFormatUndefined, fmt.Errorf("texture: unsupported format %d", f)
	}
}

// Upload creates a GPU texture for a decoded DDS Image and writes its full
// mip chain, one queue.WriteTexture call per level, driven by the
// mip/format data BlockSize and MipChainSize already compute.
func Upload(device *wgpu.Device, queue *wgpu.Queue, label string, img Image) (*wgpu.Texture, *wgpu.TextureView, error) {
	format, err := WGPUFormat(img.Format)
	if err != nil {
		return nil, nil, err
	}

	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              img.Width,
			Height:             img.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: img.MipCount,
		SampleCount:   1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("texture: create %q: %w", label, err)
	}

	offset := uint64(0)
	w, h := img.Width, img.Height
	for level := uint32(0); level < img.MipCount; level++ {
		blocksWide := (w + 3) / 4
		blocksHigh := (h + 3) / 4
		levelSize := uint64(blocksWide) * uint64(blocksHigh) * uint64(img.BlockSize)

		queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: level,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			img.Data[offset:offset+levelSize],
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  blocksWide * img.BlockSize,
				RowsPerImage: blocksHigh,
			},
			&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		)

		offset += levelSize
		if w > 1 {
			w /= 2
		}
		if h > 1 {
			h /= 2
		}
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("texture: create view %q: %w", label, err)
	}
	return tex, view, nil
}

// BuildArray creates the scene's texture array: one texture_2d_array layer
// per decoded image, in upload order, so a material's texture id is its
// layer index. Every image must share extent, format and mip count: the
// asset pipeline's job, the same constraint a Vulkan descriptor array does
// not impose but a portable WebGPU array texture does. With no images at
// all, a single white 1x1 layer is created so the layout's array binding is
// always satisfiable (materials then sample flat white).
func BuildArray(device *wgpu.Device, queue *wgpu.Queue, images []Image) (*wgpu.Texture, *wgpu.TextureView, error) {
	if len(images) == 0 {
		return buildWhiteFallback(device, queue)
	}

	first := images[0]
	for i, img := range images[1:] {
		if img.Width != first.Width || img.Height != first.Height ||
			img.Format != first.Format || img.MipCount != first.MipCount {
			return nil, nil, fmt.Errorf("texture: array layer %d (%dx%d fmt %d mips %d) does not match layer 0 (%dx%d fmt %d mips %d)",
				i+1, img.Width, img.Height, img.Format, img.MipCount,
				first.Width, first.Height, first.Format, first.MipCount)
		}
	}

	format, err := WGPUFormat(first.Format)
	if err != nil {
		return nil, nil, err
	}

	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     "blitzen texture array",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              first.Width,
			Height:             first.Height,
			DepthOrArrayLayers: uint32(len(images)),
		},
		Format:        format,
		MipLevelCount: first.MipCount,
		SampleCount:   1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("texture: create array: %w", err)
	}

	for layer, img := range images {
		offset := uint64(0)
		w, h := img.Width, img.Height
		for level := uint32(0); level < img.MipCount; level++ {
			blocksWide := (w + 3) / 4
			blocksHigh := (h + 3) / 4
			levelSize := uint64(blocksWide) * uint64(blocksHigh) * uint64(img.BlockSize)

			queue.WriteTexture(
				&wgpu.ImageCopyTexture{
					Texture:  tex,
					MipLevel: level,
					Origin:   wgpu.Origin3D{Z: uint32(layer)},
					Aspect:   wgpu.TextureAspectAll,
				},
				img.Data[offset:offset+levelSize],
				&wgpu.TextureDataLayout{
					Offset:       0,
					BytesPerRow:  blocksWide * img.BlockSize,
					RowsPerImage: blocksHigh,
				},
				&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
			)

			offset += levelSize
			if w > 1 {
				w /= 2
			}
			if h > 1 {
				h /= 2
			}
		}
	}

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           "blitzen texture array view",
		Format:          format,
		Dimension:       wgpu.TextureViewDimension2DArray,
		BaseMipLevel:    0,
		MipLevelCount:   first.MipCount,
		BaseArrayLayer:  0,
		ArrayLayerCount: uint32(len(images)),
	})
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("texture: create array view: %w", err)
	}
	return tex, view, nil
}

func buildWhiteFallback(device *wgpu.Device, queue *wgpu.Queue) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "blitzen white fallback texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("texture: create white fallback: %w", err)
	}

	queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		[]byte{0xFF, 0xFF, 0xFF, 0xFF},
		&wgpu.TextureDataLayout{Offset: 0, BytesPerRow: 4, RowsPerImage: 1},
		&wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)

	view, err := tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           "blitzen white fallback view",
		Format:          wgpu.TextureFormatRGBA8Unorm,
		Dimension:       wgpu.TextureViewDimension2DArray,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
	})
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("texture: create white fallback view: %w", err)
	}
	return tex, view, nil
}
