// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geocode-go/geocode/spatial"
)

func feature(lng, lat float64, props geojson.Properties) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{lng, lat})
	for k, v := range props {
		f.Properties[k] = v
	}

	return f
}

func collection(features ...*geojson.Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f)
	}

	return fc
}

func TestPostProcessPlaces(t *testing.T) {
	fc := collection(
		feature(1, 1, geojson.Properties{"id": "a", "places": []any{"city", "capital"}}),
		feature(2, 2, geojson.Properties{"id": "b", "places": []string{"town"}}),
		feature(3, 3, geojson.Properties{"id": "c"}),
		feature(4, 4, geojson.Properties{"id": "d", "places": []any{"City"}}),
	)

	got := PostProcess(fc, Options{Places: []string{"city", "town"}})
	require.Len(t, got.Features, 2)
	assert.Equal(t, "a", got.Features[0].Properties["id"])
	assert.Equal(t, "b", got.Features[1].Properties["id"])

	assert.Len(t, fc.Features, 4, "input collection is left untouched")
}

func TestPostProcessNearest(t *testing.T) {
	newCollection := func() *geojson.FeatureCollection {
		return collection(
			feature(-75.7, 45.4, geojson.Properties{"id": "ottawa"}),
			feature(-73.56, 45.5, geojson.Properties{"id": "montreal"}),
			feature(-79.38, 43.65, geojson.Properties{"id": "toronto"}),
		)
	}

	nearest := &spatial.Point{Lng: -75, Lat: 45}

	got := PostProcess(newCollection(), Options{Nearest: nearest})
	require.Len(t, got.Features, 1)
	assert.Equal(t, "ottawa", got.Features[0].Properties["id"])
	assert.InDelta(t, 70.614, got.Features[0].Properties["distance"], 0.001)

	got = PostProcess(newCollection(), Options{Nearest: nearest, Radius: 100})
	assert.Len(t, got.Features, 1)

	got = PostProcess(newCollection(), Options{Nearest: nearest, Radius: 50})
	assert.Empty(t, got.Features)

	got = PostProcess(collection(), Options{Nearest: nearest, Radius: 50})
	assert.Empty(t, got.Features)
}

func TestPostProcessNearestOutsideRadiusLeavesInput(t *testing.T) {
	f := feature(-79.38, 43.65, geojson.Properties{"id": "toronto"})

	got := PostProcess(collection(f), Options{Nearest: &spatial.Point{Lng: -75, Lat: 45}, Radius: 50})
	assert.Empty(t, got.Features)
	assert.Equal(t, geojson.Properties{"id": "toronto"}, f.Properties)
}

func TestPostProcessDistanceRounded(t *testing.T) {
	got := PostProcess(collection(feature(-75.7, 45.4, nil)), Options{Nearest: &spatial.Point{Lng: -75, Lat: 45}})
	require.Len(t, got.Features, 1)

	d, ok := got.Features[0].Properties["distance"].(float64)
	require.True(t, ok)
	assert.Equal(t, spatial.Round(d, spatial.Precision), d)
}

func TestPostProcessLimit(t *testing.T) {
	fc := collection(feature(1, 1, nil), feature(2, 2, nil), feature(3, 3, nil))

	assert.Len(t, PostProcess(fc, Options{Limit: 2}).Features, 2)
	assert.Len(t, PostProcess(fc, Options{Limit: 5}).Features, 3)
	assert.Len(t, PostProcess(fc, Options{}).Features, 3)
}

func TestPostProcessRounding(t *testing.T) {
	f := feature(-75.123456789, 45.987654321, nil)
	f.BBox = geojson.BBox{-75.1234567, 45.9876543, -75.0000001, 46.0000004}

	got := PostProcess(collection(f), Options{})
	require.Len(t, got.Features, 1)
	assert.Equal(t, orb.Point{-75.123457, 45.987654}, got.Features[0].Geometry)
	assert.Equal(t, geojson.BBox{-75.123457, 45.987654, -75, 46}, got.Features[0].BBox)
}

func TestPostProcessOrder(t *testing.T) {
	// the place filter runs first, so the closest feature without the place is ignored
	fc := collection(
		feature(-75.01, 45.01, geojson.Properties{"id": "close", "places": []any{"village"}}),
		feature(-75.5, 45.5, geojson.Properties{"id": "far", "places": []any{"city"}}),
	)

	got := PostProcess(fc, Options{Places: []string{"city"}, Nearest: &spatial.Point{Lng: -75, Lat: 45}})
	require.Len(t, got.Features, 1)
	assert.Equal(t, "far", got.Features[0].Properties["id"])
}

func TestPostProcessNil(t *testing.T) {
	got := PostProcess(nil, Options{Limit: 1})
	require.NotNil(t, got)
	assert.Empty(t, got.Features)
}
