// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"net/url"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/geocode-go/geocode/spatial"
)

const opencageURL = "https://api.opencagedata.com/geocode/v1/geojson"

type opencageProvider struct{}

func (opencageProvider) Name() string { return "opencage" }

func (opencageProvider) Defaults() Options { return Options{Limit: 10} }

func (opencageProvider) Credential() Credential {
	return Credential{Env: "OPENCAGE_API_KEY", Required: true}
}

func (o opencageProvider) fetch(ctx context.Context, f Fetcher, q string, options Options) (*Payload, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("key", options.Key)
	params.Set("no_annotations", "1")

	if options.Limit > 0 {
		params.Set("limit", strconv.Itoa(options.Limit))
	}

	if options.Language != "" {
		params.Set("language", options.Language)
	}

	body, err := f.Fetch(ctx, opencageURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	return &Payload{Body: body, Adapter: AdapterFunc(OpencageToGeoJSON)}, nil
}

func (o opencageProvider) Geocode(ctx context.Context, f Fetcher, address string, options Options) (*Payload, error) {
	return o.fetch(ctx, f, address, options)
}

func (o opencageProvider) Reverse(ctx context.Context, f Fetcher, p spatial.Point, options Options) (*Payload, error) {
	return o.fetch(ctx, f, spatial.FormatFloat(p.Lat)+","+spatial.FormatFloat(p.Lng), options)
}

// OpencageToGeoJSON wraps the features of an OpenCage GeoJSON response.
// Geometries other than points are replaced by the center of their bound.
func OpencageToGeoJSON(body []byte, _ Options) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, newError(ErrorTypeMalformedResponse, err, "decoding opencage response")
	}

	for _, feature := range fc.Features {
		if feature.Properties == nil {
			feature.Properties = geojson.Properties{}
		}

		if feature.Geometry == nil {
			return nil, newError(ErrorTypeMalformedResponse, nil, "opencage feature without geometry")
		}

		if _, ok := feature.Geometry.(orb.Point); !ok {
			feature.Geometry = feature.Geometry.Bound().Center()
		}
	}

	return fc, nil
}
