// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import "github.com/paulmach/orb"

// scoreMatrix maps a score (2 worst to 10 best) to the maximum bbox diagonal in kilometers.
var scoreMatrix = [...]struct {
	score   int
	maximum float64
}{
	{2, 25},
	{3, 20},
	{4, 15},
	{5, 10},
	{6, 7.5},
	{7, 5},
	{8, 1},
	{9, 0.5},
	{10, 0.25},
}

// BoundFromBBox builds a bound from a [minX, minY, maxX, maxY] slice.
// It returns nil unless exactly four values are given.
func BoundFromBBox(bbox []float64) *orb.Bound {
	if len(bbox) != 4 {
		return nil
	}

	return &orb.Bound{
		Min: orb.Point{bbox[0], bbox[1]},
		Max: orb.Point{bbox[2], bbox[3]},
	}
}

// ConfidenceScore generates a confidence score from 1 (worst) to 10 (best)
// from the diagonal of a bounding box. A nil bound scores 0.
//
//	ConfidenceScore(BoundFromBBox([]float64{-75.1, 45.1, -75, 45}))     // 4
//	ConfidenceScore(BoundFromBBox([]float64{-75.001, 45.001, -75, 45})) // 10
func ConfidenceScore(b *orb.Bound) int {
	if b == nil {
		return 0
	}

	sw := FromOrb(b.Min)
	ne := FromOrb(b.Max)
	d := sw.HaversineDistance(ne)

	result := 0

	for _, step := range scoreMatrix {
		if d < step.maximum {
			result = step.score
		}

		if d >= 25 {
			result = 1
		}
	}

	return result
}
