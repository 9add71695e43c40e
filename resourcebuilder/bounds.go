// Package resourcebuilder turns raw mesh data (positions, indices) into the
// LOD chains, meshlet clusters and bounding spheres Blitzen's static GPU
// buffers store. Work fans out across primitives on a reusable worker pool
// rather than spawning a goroutine per primitive.
package resourcebuilder

import "math"

// BoundingSphere computes the enclosing sphere approximation used
// throughout Blitzen for cull tests: the centroid of the position set as
// center, and the farthest vertex's distance as radius. A plain two-pass
// approach with no Ritter/Welzl refinement; the cull shaders only need a
// conservative bound, not a minimal one.
func BoundingSphere(positions [][3]float32) (center [3]float32, radius float32) {
	if len(positions) == 0 {
		return center, 0
	}

	var sum [3]float32
	for _, p := range positions {
		sum[0] += p[0]
		sum[1] += p[1]
		sum[2] += p[2]
	}
	n := float32(len(positions))
	center = [3]float32{sum[0] / n, sum[1] / n, sum[2] / n}

	var maxDistSq float32
	for _, p := range positions {
		dx := p[0] - center[0]
		dy := p[1] - center[1]
		dz := p[2] - center[2]
		distSq := dx*dx + dy*dy + dz*dz
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}

	return center, sqrt32(maxDistSq)
}

// mergeSpheres returns a sphere enclosing both input spheres.
func mergeSpheres(aCenter [3]float32, aRadius float32, bCenter [3]float32, bRadius float32) ([3]float32, float32) {
	dx := bCenter[0] - aCenter[0]
	dy := bCenter[1] - aCenter[1]
	dz := bCenter[2] - aCenter[2]
	dist := sqrt32(dx*dx + dy*dy + dz*dz)

	if dist+bRadius <= aRadius {
		return aCenter, aRadius
	}
	if dist+aRadius <= bRadius {
		return bCenter, bRadius
	}

	newRadius := (aRadius + bRadius + dist) / 2
	if dist == 0 {
		return aCenter, newRadius
	}
	t := (newRadius - aRadius) / dist
	center := [3]float32{
		aCenter[0] + dx*t,
		aCenter[1] + dy*t,
		aCenter[2] + dz*t,
	}
	return center, newRadius
}

func sqrt32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}
