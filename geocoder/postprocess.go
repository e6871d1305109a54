// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/geocode-go/geocode/spatial"
	"github.com/geocode-go/geocode/utils/textutils"
)

// PostProcess applies the options shared by every provider, in order:
// places filter, nearest selection within Radius, Limit and coordinate
// rounding. Features are modified in place; the returned collection is new.
func PostProcess(fc *geojson.FeatureCollection, options Options) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out
	}

	out.BBox = fc.BBox
	out.ExtraMembers = fc.ExtraMembers

	features := slices.Clone(fc.Features)

	if len(options.Places) > 0 {
		features = slices.DeleteFunc(features, func(f *geojson.Feature) bool {
			return !matchesPlaces(f, options.Places)
		})
	}

	if options.Nearest != nil && len(features) > 0 {
		features = nearest(features, *options.Nearest, options.Radius)
	}

	if options.Limit > 0 && len(features) > options.Limit {
		features = features[:options.Limit]
	}

	for _, f := range features {
		roundFeature(f)
	}

	out.Features = features

	return out
}

// matchesPlaces reports whether the feature places property shares an element with places.
func matchesPlaces(f *geojson.Feature, places []string) bool {
	values, ok := textutils.AnyToStringSlice(f.Properties["places"])
	if !ok || len(values) == 0 {
		return false
	}

	for _, v := range values {
		if slices.Contains(places, v) {
			return true
		}
	}

	return false
}

// nearest keeps the closest point feature to center, storing its distance in
// kilometers. Nothing is kept, or annotated, when that distance exceeds a
// positive radius.
func nearest(features []*geojson.Feature, center spatial.Point, radius float64) []*geojson.Feature {
	var (
		best     *geojson.Feature
		bestDist = math.Inf(1)
	)

	for _, f := range features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}

		if d := center.HaversineDistance(spatial.FromOrb(p)); d < bestDist {
			best, bestDist = f, d
		}
	}

	if best == nil {
		return nil
	}

	dist := spatial.Round(bestDist, spatial.Precision)
	if radius > 0 && dist > radius {
		return nil
	}

	if best.Properties == nil {
		best.Properties = geojson.Properties{}
	}

	best.Properties["distance"] = dist

	return []*geojson.Feature{best}
}

func roundFeature(f *geojson.Feature) {
	if p, ok := f.Geometry.(orb.Point); ok {
		f.Geometry = orb.Point{
			spatial.Round(p[0], spatial.Precision),
			spatial.Round(p[1], spatial.Precision),
		}
	}

	for i, v := range f.BBox {
		f.BBox[i] = spatial.Round(v, spatial.Precision)
	}
}
