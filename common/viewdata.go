package common

import "math"

// ScalarFrustum is the cheap six-scalar frustum test used by the cull
// compute shaders, as opposed to a full six-plane extraction. It only
// supports a symmetric perspective projection (the kind Perspective
// produces) and is meant to be recomputed once per frame by whatever
// supplies CameraViewData.
type ScalarFrustum struct {
	Right, Left, Top, Bottom float32
	Proj0, Proj5             float32
}

// ExtractScalarFrustum derives the six frustum scalars from a projection
// matrix built by Perspective. Right/Left/Top/Bottom are the tangent of the
// half-angle of the symmetric frustum at each side; Proj0/Proj5 are the
// matrix's own [0][0] and [1][1] terms, reused by the cull shader to project
// an object's bounding sphere into screen space without re-deriving them.
func ExtractScalarFrustum(proj []float32) ScalarFrustum {
	var f ScalarFrustum
	f.Proj0 = proj[0]
	f.Proj5 = proj[5]
	if proj[0] != 0 {
		f.Right = 1.0 / proj[0]
		f.Left = -f.Right
	}
	if proj[5] != 0 {
		f.Top = 1.0 / proj[5]
		f.Bottom = -f.Top
	}
	return f
}

// CameraViewData is the uniform buffer layout Blitzen's cull and draw
// shaders read from binding 0. Field order matches the WGSL CameraView
// struct declaration in every shader asset; the trailing pad rounds the
// size to 192 bytes, the WGSL uniform struct size (mat4x4 members give the
// struct 16-byte alignment, and a binding smaller than the shader-side
// struct fails validation).
type CameraViewData struct {
	View           [16]float32
	ProjectionView [16]float32
	CameraPosition [3]float32
	ZNear          float32
	Frustum        ScalarFrustum
	ZFar           float32
	PyramidWidth   float32
	PyramidHeight  float32
	LodTarget      float32
	_pad           [2]float32
}

// PreviousPow2 returns the largest power of two that is ≤ v, used to size
// the depth pyramid's base mip from the draw extent.
func PreviousPow2(v uint32) uint32 {
	if v == 0 {
		return 0
	}
	return uint32(1) << uint(math.Floor(math.Log2(float64(v))))
}

// MipCount returns the number of mip levels in a chain starting at extent and
// halving down to 1x1.
func MipCount(extent uint32) uint32 {
	if extent == 0 {
		return 1
	}
	return uint32(math.Floor(math.Log2(float64(extent)))) + 1
}
