// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/geocode-go/geocode/spatial"
)

const googleURL = "https://maps.googleapis.com/maps/api/geocode/json"

type googleProvider struct{}

func (googleProvider) Name() string { return "google" }

func (googleProvider) Defaults() Options { return Options{} }

func (googleProvider) Credential() Credential {
	return Credential{Env: "GOOGLE_API_KEY", KeySource: true}
}

func (g googleProvider) fetch(ctx context.Context, f Fetcher, params url.Values, options Options) (*Payload, error) {
	if options.Key != "" {
		params.Set("key", options.Key)
	}

	if options.Language != "" {
		params.Set("language", options.Language)
	}

	body, err := f.Fetch(ctx, googleURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	return &Payload{Body: body, Adapter: AdapterFunc(GoogleToGeoJSON)}, nil
}

func (g googleProvider) Geocode(ctx context.Context, f Fetcher, address string, options Options) (*Payload, error) {
	params := url.Values{}
	params.Set("address", address)

	return g.fetch(ctx, f, params, options)
}

func (g googleProvider) Reverse(ctx context.Context, f Fetcher, p spatial.Point, options Options) (*Payload, error) {
	params := url.Values{}
	params.Set("latlng", spatial.FormatFloat(p.Lat)+","+spatial.FormatFloat(p.Lng))

	return g.fetch(ctx, f, params, options)
}

// googleOSMTags maps address component types to OSM address tags.
var googleOSMTags = map[string]string{
	"street_number": "addr:housenumber",
	"route":         "addr:street",
	"postal_code":   "addr:postcode",
	"locality":      "addr:city",
}

type googleLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleBounds struct {
	Northeast googleLatLng `json:"northeast"`
	Southwest googleLatLng `json:"southwest"`
}

type googleResult struct {
	AddressComponents []struct {
		LongName  string   `json:"long_name"`
		ShortName string   `json:"short_name"`
		Types     []string `json:"types"`
	} `json:"address_components"`
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Bounds       *googleBounds `json:"bounds"`
		Location     googleLatLng  `json:"location"`
		LocationType string        `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		Viewport     *googleBounds `json:"viewport"`
	} `json:"geometry"`
	PlaceID string   `json:"place_id"`
	Types   []string `json:"types"`
}

type googleResponse struct {
	Results      []googleResult `json:"results"`
	Status       string         `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string         `json:"error_message"`
}

func googleStatusError(resp googleResponse) error {
	switch resp.Status {
	case "", "OK", "ZERO_RESULTS":
		return nil
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return newError(ErrorTypeQuotaExceeded, nil, "google: %s %s", resp.Status, resp.ErrorMessage)
	case "REQUEST_DENIED", "INVALID_REQUEST":
		return newError(ErrorTypeInvalidRequest, nil, "google: %s %s", resp.Status, resp.ErrorMessage)
	default:
		return newError(ErrorTypeUpstream, nil, "google: %s %s", resp.Status, resp.ErrorMessage)
	}
}

// GoogleToGeoJSON converts a Google Geocoding API response into GeoJSON.
// Address components are keyed by their first type, using short names when
// options.Short is set.
func GoogleToGeoJSON(body []byte, options Options) (*geojson.FeatureCollection, error) {
	var resp googleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, newError(ErrorTypeMalformedResponse, err, "decoding google response")
	}

	if err := googleStatusError(resp); err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()

	for _, result := range resp.Results {
		loc := result.Geometry.Location
		feature := geojson.NewFeature(orb.Point{loc.Lng, loc.Lat})

		var bound *orb.Bound
		if vp := result.Geometry.Viewport; vp != nil {
			feature.BBox = geojson.BBox{vp.Southwest.Lng, vp.Southwest.Lat, vp.Northeast.Lng, vp.Northeast.Lat}
			bound = spatial.BoundFromBBox(feature.BBox)
		}

		confidence := spatial.ConfidenceScore(bound)
		if result.Geometry.LocationType == "ROOFTOP" {
			confidence = 10
		}

		props := feature.Properties
		props["confidence"] = confidence
		props["location_type"] = result.Geometry.LocationType
		props["formatted_address"] = result.FormattedAddress
		props["place_id"] = result.PlaceID
		props["types"] = result.Types

		for _, component := range result.AddressComponents {
			if len(component.Types) == 0 {
				continue
			}

			if options.Short {
				props[component.Types[0]] = component.ShortName
			} else {
				props[component.Types[0]] = component.LongName
			}

			tag, ok := googleOSMTags[component.Types[0]]
			if !ok {
				continue
			}

			value := component.LongName
			if tag == "addr:street" {
				value = ReplaceStreetSuffix(value)
			}

			props[tag] = value
		}

		fc.Append(feature)
	}

	return fc, nil
}
