package texture

import "testing"

func TestWGPUFormatKnownFormats(t *testing.T) {
	cases := []Format{
		FormatBC1Unorm, FormatBC1UnormSRGB, FormatBC2Unorm, FormatBC2UnormSRGB,
		FormatBC3Unorm, FormatBC3UnormSRGB, FormatBC4Unorm, FormatBC4Snorm,
		FormatBC5Unorm, FormatBC5Snorm, FormatBC6HUF16, FormatBC6HSF16,
		FormatBC7Unorm, FormatBC7UnormSRGB,
	}
	for _, f := range cases {
		if _, err := WGPUFormat(f); err != nil {
			t.Errorf("WGPUFormat(%d): %v", f, err)
		}
	}
}

func TestWGPUFormatUnknownIsError(t *testing.T) {
	if _, err := WGPUFormat(FormatUnknown); err == nil {
		t.Fatal("expected error for FormatUnknown")
	}
}
