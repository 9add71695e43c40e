package texture

import "testing"

func TestBlockSize(t *testing.T) {
	cases := []struct {
		format Format
		want   uint32
	}{
		{FormatBC1Unorm, 8},
		{FormatBC1UnormSRGB, 8},
		{FormatBC4Unorm, 8},
		{FormatBC4Snorm, 8},
		{FormatBC2Unorm, 16},
		{FormatBC3Unorm, 16},
		{FormatBC5Unorm, 16},
		{FormatBC6HUF16, 16},
		{FormatBC7UnormSRGB, 16},
	}
	for _, c := range cases {
		if got := BlockSize(c.format); got != c.want {
			t.Errorf("BlockSize(%v) = %d, want %d", c.format, got, c.want)
		}
	}
}

func TestMipChainSize(t *testing.T) {
	// Single 4x4 BC1 block: one block, 8 bytes.
	if got := MipChainSize(4, 4, 1, 8); got != 8 {
		t.Errorf("MipChainSize(4,4,1,8) = %d, want 8", got)
	}

	// 8x8 BC1 with full mip chain down to 1x1: 4 levels (8,4,2,1).
	// level sizes (blocks): 8x8->2x2=4 blocks, 4x4->1x1=1, 2x2->1x1=1, 1x1->1x1=1
	got := MipChainSize(8, 8, 4, 8)
	want := uint64((4+1+1+1))*8
	if got != want {
		t.Errorf("MipChainSize(8,8,4,8) = %d, want %d", got, want)
	}

	// Non-multiple-of-4 dimensions round up to the next whole block: 5x5
	// needs ceil(5/4)=2 blocks per side, 2x2 blocks of 16 bytes.
	if got := MipChainSize(5, 5, 1, 16); got != 64 {
		t.Errorf("MipChainSize(5,5,1,16) = %d, want 64 (rounds up to 2x2 blocks)", got)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	buf := make([]byte, 200)
	copy(buf, []byte("BADF"))
	if _, err := Decode(buf); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestDecodeRejectsShortBuffer(t *testing.T) {
	if _, err := Decode([]byte("DDS ")); err == nil {
		t.Fatal("expected error for truncated file")
	}
}
