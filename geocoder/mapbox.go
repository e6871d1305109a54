// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/paulmach/orb/geojson"

	"github.com/geocode-go/geocode/spatial"
)

const mapboxURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

type mapboxProvider struct{}

func (mapboxProvider) Name() string { return "mapbox" }

func (mapboxProvider) Defaults() Options { return Options{} }

func (mapboxProvider) Credential() Credential {
	return Credential{Env: "MAPBOX_ACCESS_TOKEN", Required: true, Token: true}
}

func (m mapboxProvider) fetch(ctx context.Context, f Fetcher, search string, options Options) (*Payload, error) {
	params := url.Values{}
	params.Set("access_token", options.AccessToken)

	if options.Limit > 0 {
		params.Set("limit", strconv.Itoa(options.Limit))
	}

	if options.Language != "" {
		params.Set("language", options.Language)
	}

	reqURL := fmt.Sprintf("%s/%s.json?%s", mapboxURL, url.PathEscape(search), params.Encode())

	body, err := f.Fetch(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	return &Payload{Body: body, Adapter: AdapterFunc(MapboxToGeoJSON)}, nil
}

func (m mapboxProvider) Geocode(ctx context.Context, f Fetcher, address string, options Options) (*Payload, error) {
	return m.fetch(ctx, f, address, options)
}

func (m mapboxProvider) Reverse(ctx context.Context, f Fetcher, p spatial.Point, options Options) (*Payload, error) {
	return m.fetch(ctx, f, spatial.FormatFloat(p.Lng)+","+spatial.FormatFloat(p.Lat), options)
}

// mapboxFeature holds the Mapbox members that live outside the GeoJSON properties.
type mapboxFeature struct {
	PlaceName string   `json:"place_name"`
	Text      string   `json:"text"`
	Relevance *float64 `json:"relevance"`
	Address   string   `json:"address"`
}

// MapboxToGeoJSON converts a Mapbox Geocoding response into GeoJSON.
// Features are kept as returned; place_name, text, relevance and address are
// copied into the properties unless already present.
func MapboxToGeoJSON(body []byte, _ Options) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, newError(ErrorTypeMalformedResponse, err, "decoding mapbox response")
	}

	var extra struct {
		Features []mapboxFeature `json:"features"`
	}
	if err := json.Unmarshal(body, &extra); err != nil {
		return nil, newError(ErrorTypeMalformedResponse, err, "decoding mapbox features")
	}

	for i, feature := range fc.Features {
		if feature.Properties == nil {
			feature.Properties = geojson.Properties{}
		}

		if i >= len(extra.Features) {
			continue
		}

		e := extra.Features[i]
		setMissing(feature.Properties, "place_name", e.PlaceName)
		setMissing(feature.Properties, "text", e.Text)
		setMissing(feature.Properties, "address", e.Address)

		if e.Relevance != nil {
			if _, ok := feature.Properties["relevance"]; !ok {
				feature.Properties["relevance"] = *e.Relevance
			}
		}
	}

	return fc, nil
}

func setMissing(props geojson.Properties, key, value string) {
	if value == "" {
		return
	}

	if _, ok := props[key]; !ok {
		props[key] = value
	}
}
