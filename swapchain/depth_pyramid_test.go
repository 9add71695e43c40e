package swapchain

import "testing"

func TestDepthPyramidMipExtentHalves(t *testing.T) {
	dp := &DepthPyramid{width: 256, height: 128}
	cases := []struct {
		mip          uint32
		wantW, wantH uint32
	}{
		{0, 256, 128},
		{1, 128, 64},
		{2, 64, 32},
		{7, 2, 1},
		{8, 1, 1},
	}
	for _, c := range cases {
		w, h := dp.MipExtent(c.mip)
		if w != c.wantW || h != c.wantH {
			t.Errorf("MipExtent(%d) = (%d,%d), want (%d,%d)", c.mip, w, h, c.wantW, c.wantH)
		}
	}
}
