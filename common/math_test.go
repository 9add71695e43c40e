package common

import (
	"math"
	"testing"
)

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestIdentity(t *testing.T) {
	var m [16]float32
	Identity(m[:])
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			if m[i*4+j] != want {
				t.Fatalf("m[%d][%d] = %v, want %v", i, j, m[i*4+j], want)
			}
		}
	}
}

func TestMul4IdentityIsNoop(t *testing.T) {
	var id [16]float32
	Identity(id[:])
	a := [16]float32{2, 0, 0, 0, 0, 3, 0, 0, 0, 0, 4, 0, 1, 2, 3, 1}

	var out [16]float32
	Mul4(out[:], id[:], a[:])
	if out != a {
		t.Fatalf("I*A = %v, want %v", out, a)
	}
	Mul4(out[:], a[:], id[:])
	if out != a {
		t.Fatalf("A*I = %v, want %v", out, a)
	}
}

func TestMul4InPlaceAliasing(t *testing.T) {
	a := [16]float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 1}
	want := [16]float32{4, 0, 0, 0, 0, 4, 0, 0, 0, 0, 4, 0, 0, 0, 0, 1}

	Mul4(a[:], a[:], a[:])
	if a != want {
		t.Fatalf("A*A in place = %v, want %v", a, want)
	}
}

func TestInvert4RoundTrip(t *testing.T) {
	var m, inv, out [16]float32
	BuildModelMatrix(m[:], 1, 2, 3, 0.4, 0.5, 0.6, 1, 1, 1)

	if !Invert4(inv[:], m[:]) {
		t.Fatal("Invert4 reported singular for an invertible model matrix")
	}
	Mul4(out[:], m[:], inv[:])
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			if absf(out[i*4+j]-want) > 1e-5 {
				t.Fatalf("M*M^-1 [%d][%d] = %v, want %v", i, j, out[i*4+j], want)
			}
		}
	}
}

func TestInvert4Singular(t *testing.T) {
	var zero, out [16]float32
	if Invert4(out[:], zero[:]) {
		t.Fatal("Invert4 inverted the zero matrix")
	}
}

// The model matrix derived from MeshTransform must equal
// Translate(pos) * QuatToMat4(orientation) * Scale(scale) per element.
func TestComposeModelMatrixMatchesFactoredForm(t *testing.T) {
	tr := MeshTransform{
		Position:    [3]float32{1, -2, 3},
		Scale:       2.5,
		Orientation: FromAxisAngle([3]float32{1, 1, 0}, 0.7),
	}

	var composed [16]float32
	tr.ComposeModelMatrix(composed[:])

	var trans, rot, scale, tmp, want [16]float32
	Identity(trans[:])
	trans[12], trans[13], trans[14] = tr.Position[0], tr.Position[1], tr.Position[2]
	tr.Orientation.ToMat4(rot[:])
	Identity(scale[:])
	scale[0], scale[5], scale[10] = tr.Scale, tr.Scale, tr.Scale

	Mul4(tmp[:], rot[:], scale[:])
	Mul4(want[:], trans[:], tmp[:])

	for i := range want {
		if absf(composed[i]-want[i]) > 1e-5 {
			t.Fatalf("element %d: composed %v, factored %v", i, composed[i], want[i])
		}
	}
}

// decompose(compose(t, r, s)) must reconstruct a uniform-scale transform to
// within 1e-5 per component.
func TestDecomposeRoundTrip(t *testing.T) {
	cases := []MeshTransform{
		{Position: [3]float32{0, 0, 0}, Scale: 1, Orientation: IdentityQuat()},
		{Position: [3]float32{5, -3, 2}, Scale: 0.25, Orientation: FromAxisAngle([3]float32{0, 1, 0}, 1.2)},
		{Position: [3]float32{-1, 4, 9}, Scale: 3, Orientation: FromAxisAngle([3]float32{1, 2, 3}, 2.9)},
	}
	for ci, want := range cases {
		var m [16]float32
		want.ComposeModelMatrix(m[:])
		got := DecomposeModelMatrix(m[:])

		for i := 0; i < 3; i++ {
			if absf(got.Position[i]-want.Position[i]) > 1e-5 {
				t.Fatalf("case %d: position[%d] = %v, want %v", ci, i, got.Position[i], want.Position[i])
			}
		}
		if absf(got.Scale-want.Scale) > 1e-5 {
			t.Fatalf("case %d: scale = %v, want %v", ci, got.Scale, want.Scale)
		}

		// q and -q represent the same rotation; compare the rebuilt matrices.
		var rebuilt [16]float32
		got.ComposeModelMatrix(rebuilt[:])
		for i := range m {
			if absf(rebuilt[i]-m[i]) > 1e-5 {
				t.Fatalf("case %d: rebuilt[%d] = %v, want %v", ci, i, rebuilt[i], m[i])
			}
		}
	}
}

func TestQuatRotateVec3(t *testing.T) {
	q := FromAxisAngle([3]float32{0, 0, 1}, float32(math.Pi/2))
	got := q.RotateVec3([3]float32{1, 0, 0})
	want := [3]float32{0, 1, 0}
	for i := range want {
		if absf(got[i]-want[i]) > 1e-5 {
			t.Fatalf("rotated[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExtractScalarFrustum(t *testing.T) {
	var proj [16]float32
	Perspective(proj[:], 1.0, 16.0/9.0, 0.1, 100)

	f := ExtractScalarFrustum(proj[:])
	if f.Proj0 != proj[0] || f.Proj5 != proj[5] {
		t.Fatalf("Proj0/Proj5 = %v/%v, want %v/%v", f.Proj0, f.Proj5, proj[0], proj[5])
	}
	if absf(f.Right*proj[0]-1) > 1e-6 || f.Left != -f.Right {
		t.Fatalf("Right/Left scalars inconsistent: %v/%v", f.Right, f.Left)
	}
	if absf(f.Top*proj[5]-1) > 1e-6 || f.Bottom != -f.Top {
		t.Fatalf("Top/Bottom scalars inconsistent: %v/%v", f.Top, f.Bottom)
	}
}

func TestPerspectiveReverseZEndpoints(t *testing.T) {
	const near, far = 0.1, 100.0
	var proj [16]float32
	PerspectiveReverseZ(proj[:], 1.0, 1.0, near, far)

	// Project a point on the near plane and one on the far plane; after the
	// perspective divide, near must land at depth 1 and far at depth 0.
	for _, c := range []struct {
		z    float32
		want float32
	}{
		{-near, 1},
		{-far, 0},
	} {
		clipZ := proj[10]*c.z + proj[14]
		clipW := proj[11] * c.z
		if absf(clipZ/clipW-c.want) > 1e-4 {
			t.Fatalf("depth at z=%v: %v, want %v", c.z, clipZ/clipW, c.want)
		}
	}
}

func TestPreviousPow2(t *testing.T) {
	cases := []struct{ in, want uint32 }{
		{0, 0}, {1, 1}, {2, 2}, {3, 2}, {1024, 1024}, {1920, 1024}, {1080, 1024}, {720, 512},
	}
	for _, c := range cases {
		if got := PreviousPow2(c.in); got != c.want {
			t.Errorf("PreviousPow2(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestMipCount(t *testing.T) {
	cases := []struct{ in, want uint32 }{
		{0, 1}, {1, 1}, {2, 2}, {256, 9}, {1024, 11},
	}
	for _, c := range cases {
		if got := MipCount(c.in); got != c.want {
			t.Errorf("MipCount(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
