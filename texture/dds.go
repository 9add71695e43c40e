// Package texture decodes DDS block-compressed textures for GPU upload:
// the magic/header layout, the DX10 extension header, cubemap/volume
// rejection, the per-format block size table, and the mip-chain byte-size
// formula.
package texture

import (
	"encoding/binary"
	"fmt"
)

// Format identifies a block-compressed DDS pixel format this decoder accepts.
type Format int

const (
	FormatUnknown Format = iota
	FormatBC1Unorm
	FormatBC1UnormSRGB
	FormatBC2Unorm
	FormatBC2UnormSRGB
	FormatBC3Unorm
	FormatBC3UnormSRGB
	FormatBC4Unorm
	FormatBC4Snorm
	FormatBC5Unorm
	FormatBC5Snorm
	FormatBC6HUF16
	FormatBC6HSF16
	FormatBC7Unorm
	FormatBC7UnormSRGB
)

const (
	ddsMagic        = "DDS "
	ddsHeaderSize   = 124
	ddsPixelFmtSize = 32
	dx10FourCC      = "DX10"
	ddsCaps2Cubemap = 0x00000200
	ddsCaps2Volume  = 0x00200000
	dx10Dimension2D = 3
	dxt1FourCC      = "DXT1"
	dxt3FourCC      = "DXT3"
	dxt5FourCC      = "DXT5"
)

// dxgiFormat mirrors the subset of DXGI_FORMAT values the DX10 header may carry.
type dxgiFormat uint32

const (
	dxgiBC1Unorm     dxgiFormat = 71
	dxgiBC1UnormSRGB dxgiFormat = 72
	dxgiBC2Unorm     dxgiFormat = 74
	dxgiBC2UnormSRGB dxgiFormat = 75
	dxgiBC3Unorm     dxgiFormat = 77
	dxgiBC3UnormSRGB dxgiFormat = 78
	dxgiBC4Unorm     dxgiFormat = 80
	dxgiBC4Snorm     dxgiFormat = 81
	dxgiBC5Unorm     dxgiFormat = 83
	dxgiBC5Snorm     dxgiFormat = 84
	dxgiBC6HUF16     dxgiFormat = 95
	dxgiBC6HSF16     dxgiFormat = 96
	dxgiBC7Unorm     dxgiFormat = 98
	dxgiBC7UnormSRGB dxgiFormat = 99
)

// pixelFormat is the on-disk DDS_PIXELFORMAT layout.
type pixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      [4]byte
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

// header is the on-disk DDS_HEADER layout (without the leading magic).
type header struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       pixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

// header10 is the on-disk DDS_HEADER_DXT10 extension, present only when
// PixelFormat.FourCC == "DX10".
type header10 struct {
	DXGIFormat        dxgiFormat
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// Image is a decoded DDS texture ready for GPU upload: the block-compressed
// bytes for the full mip chain plus the information needed to interpret them.
type Image struct {
	Width     uint32
	Height    uint32
	MipCount  uint32
	Format    Format
	BlockSize uint32
	Data      []byte
}

// Decode parses a DDS file's bytes (including the leading "DDS " magic) and
// returns the block-compressed mip chain. Cubemap and volume textures, and
// any DX10 resource dimension other than TEXTURE2D, are rejected; Blitzen
// only renders flat 2D textures.
func Decode(buf []byte) (Image, error) {
	const magicSize = 4
	if len(buf) < magicSize+ddsHeaderSize {
		return Image{}, fmt.Errorf("texture: dds: file too small")
	}
	if string(buf[:magicSize]) != ddsMagic {
		return Image{}, fmt.Errorf("texture: dds: bad magic")
	}

	off := magicSize
	var h header
	if err := decodeHeader(buf[off:off+ddsHeaderSize], &h); err != nil {
		return Image{}, err
	}
	off += ddsHeaderSize

	if h.Size != ddsHeaderSize || h.PixelFormat.Size != ddsPixelFmtSize {
		return Image{}, fmt.Errorf("texture: dds: malformed header")
	}
	if h.Caps2&(ddsCaps2Cubemap|ddsCaps2Volume) != 0 {
		return Image{}, fmt.Errorf("texture: dds: cubemap/volume textures are not supported")
	}

	var h10 header10
	isDX10 := string(h.PixelFormat.FourCC[:]) == dx10FourCC
	if isDX10 {
		const h10Size = 20
		if len(buf) < off+h10Size {
			return Image{}, fmt.Errorf("texture: dds: truncated DX10 header")
		}
		decodeHeader10(buf[off:off+h10Size], &h10)
		off += h10Size
		if h10.ResourceDimension != dx10Dimension2D {
			return Image{}, fmt.Errorf("texture: dds: only 2D DX10 resources are supported")
		}
	}

	format := classifyFormat(h, h10, isDX10)
	if format == FormatUnknown {
		return Image{}, fmt.Errorf("texture: dds: unsupported pixel format")
	}
	blockSize := BlockSize(format)

	mipCount := h.MipMapCount
	if mipCount == 0 {
		mipCount = 1
	}

	size := MipChainSize(h.Width, h.Height, mipCount, blockSize)
	if len(buf[off:]) < int(size) {
		return Image{}, fmt.Errorf("texture: dds: truncated pixel data")
	}

	return Image{
		Width:     h.Width,
		Height:    h.Height,
		MipCount:  mipCount,
		Format:    format,
		BlockSize: blockSize,
		Data:      buf[off : off+int(size)],
	}, nil
}

func classifyFormat(h header, h10 header10, isDX10 bool) Format {
	switch string(h.PixelFormat.FourCC[:]) {
	case dxt1FourCC:
		return FormatBC1Unorm
	case dxt3FourCC:
		return FormatBC2Unorm
	case dxt5FourCC:
		return FormatBC3Unorm
	}
	if !isDX10 {
		return FormatUnknown
	}
	switch h10.DXGIFormat {
	case dxgiBC1Unorm:
		return FormatBC1Unorm
	case dxgiBC1UnormSRGB:
		return FormatBC1UnormSRGB
	case dxgiBC2Unorm:
		return FormatBC2Unorm
	case dxgiBC2UnormSRGB:
		return FormatBC2UnormSRGB
	case dxgiBC3Unorm:
		return FormatBC3Unorm
	case dxgiBC3UnormSRGB:
		return FormatBC3UnormSRGB
	case dxgiBC4Unorm:
		return FormatBC4Unorm
	case dxgiBC4Snorm:
		return FormatBC4Snorm
	case dxgiBC5Unorm:
		return FormatBC5Unorm
	case dxgiBC5Snorm:
		return FormatBC5Snorm
	case dxgiBC6HUF16:
		return FormatBC6HUF16
	case dxgiBC6HSF16:
		return FormatBC6HSF16
	case dxgiBC7Unorm:
		return FormatBC7Unorm
	case dxgiBC7UnormSRGB:
		return FormatBC7UnormSRGB
	default:
		return FormatUnknown
	}
}

// BlockSize returns the compressed block size in bytes for format: 8 for
// BC1/BC4, 16 for everything else.
func BlockSize(f Format) uint32 {
	switch f {
	case FormatBC1Unorm, FormatBC1UnormSRGB, FormatBC4Unorm, FormatBC4Snorm:
		return 8
	default:
		return 16
	}
}

// MipChainSize returns the total byte size of a block-compressed mip chain
// of mipCount levels starting at width x height, per level halving (floor,
// minimum 1) and summing ceil(w/4)*ceil(h/4)*blockSize.
func MipChainSize(width, height, mipCount, blockSize uint32) uint64 {
	var total uint64
	w, h := width, height
	for i := uint32(0); i < mipCount; i++ {
		blocksWide := uint64((w + 3) / 4)
		blocksHigh := uint64((h + 3) / 4)
		total += blocksWide * blocksHigh * uint64(blockSize)
		if w > 1 {
			w /= 2
		}
		if h > 1 {
			h /= 2
		}
	}
	return total
}

func decodeHeader(b []byte, h *header) error {
	if len(b) < ddsHeaderSize {
		return fmt.Errorf("texture: dds: short header")
	}
	r := byteReader{buf: b}
	h.Size = r.u32()
	h.Flags = r.u32()
	h.Height = r.u32()
	h.Width = r.u32()
	h.PitchOrLinearSize = r.u32()
	h.Depth = r.u32()
	h.MipMapCount = r.u32()
	for i := range h.Reserved1 {
		h.Reserved1[i] = r.u32()
	}
	h.PixelFormat.Size = r.u32()
	h.PixelFormat.Flags = r.u32()
	copy(h.PixelFormat.FourCC[:], r.bytes(4))
	h.PixelFormat.RGBBitCount = r.u32()
	h.PixelFormat.RBitMask = r.u32()
	h.PixelFormat.GBitMask = r.u32()
	h.PixelFormat.BBitMask = r.u32()
	h.PixelFormat.ABitMask = r.u32()
	h.Caps = r.u32()
	h.Caps2 = r.u32()
	h.Caps3 = r.u32()
	h.Caps4 = r.u32()
	h.Reserved2 = r.u32()
	return nil
}

func decodeHeader10(b []byte, h *header10) {
	r := byteReader{buf: b}
	h.DXGIFormat = dxgiFormat(r.u32())
	h.ResourceDimension = r.u32()
	h.MiscFlag = r.u32()
	h.ArraySize = r.u32()
	h.MiscFlags2 = r.u32()
}

// byteReader walks a little-endian DDS header byte slice.
type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) u32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *byteReader) bytes(n int) []byte {
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}
