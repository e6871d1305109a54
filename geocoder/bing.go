// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/geocode-go/geocode/spatial"
)

const bingURL = "https://dev.virtualearth.net/REST/v1/Locations"

// bingMaxResults is the largest maxResults Bing accepts.
const bingMaxResults = 20

type bingProvider struct{}

func (bingProvider) Name() string { return "bing" }

func (bingProvider) Defaults() Options { return Options{} }

func (bingProvider) Credential() Credential {
	return Credential{Env: "BING_API_KEY", Required: true}
}

func (b bingProvider) params(options Options) url.Values {
	params := url.Values{}
	params.Set("inclnb", "1")
	params.Set("key", options.Key)
	params.Set("o", "json")

	if options.Limit > 0 {
		params.Set("maxResults", strconv.Itoa(min(options.Limit, bingMaxResults)))
	}

	if options.Language != "" {
		params.Set("culture", options.Language)
	}

	return params
}

func (b bingProvider) Geocode(ctx context.Context, f Fetcher, address string, options Options) (*Payload, error) {
	params := b.params(options)
	params.Set("q", address)

	body, err := f.Fetch(ctx, bingURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	return &Payload{Body: body, Adapter: AdapterFunc(BingToGeoJSON)}, nil
}

func (b bingProvider) Reverse(ctx context.Context, f Fetcher, p spatial.Point, options Options) (*Payload, error) {
	reqURL := fmt.Sprintf("%s/%s,%s?%s", bingURL,
		spatial.FormatFloat(p.Lat), spatial.FormatFloat(p.Lng), b.params(options).Encode())

	body, err := f.Fetch(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	return &Payload{Body: body, Adapter: AdapterFunc(BingToGeoJSON)}, nil
}

type bingResponse struct {
	AuthenticationResultCode string   `json:"authenticationResultCode"`
	BrandLogoURI             string   `json:"brandLogoUri"`
	Copyright                string   `json:"copyright"`
	ErrorDetails             []string `json:"errorDetails"`
	ResourceSets             []struct {
		EstimatedTotal int            `json:"estimatedTotal"`
		Resources      []bingResource `json:"resources"`
	} `json:"resourceSets"`
	StatusCode        int    `json:"statusCode"`
	StatusDescription string `json:"statusDescription"`
	TraceID           string `json:"traceId"`
}

type bingResource struct {
	BBox  []float64 `json:"bbox"` // south, west, north, east
	Name  string    `json:"name"`
	Point struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"` // lat, lng
	} `json:"point"`
	Address    map[string]any `json:"address"`
	Confidence string         `json:"confidence"` // High, Medium, Low
	EntityType string         `json:"entityType"`
	MatchCodes []string       `json:"matchCodes"`
}

// BingToGeoJSON converts a Bing Locations response into GeoJSON.
func BingToGeoJSON(body []byte, _ Options) (*geojson.FeatureCollection, error) {
	var resp bingResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, newError(ErrorTypeMalformedResponse, err, "decoding bing response")
	}

	if resp.StatusCode != 0 && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		e := ClassifyHTTPError(resp.StatusCode, strings.Join(append([]string{resp.StatusDescription}, resp.ErrorDetails...), " "))
		e.Message = "bing: " + e.Message

		return nil, e
	}

	fc := geojson.NewFeatureCollection()

	if len(resp.ResourceSets) == 0 {
		return fc, nil
	}

	for i, result := range resp.ResourceSets[0].Resources {
		if len(result.Point.Coordinates) != 2 {
			return nil, newError(ErrorTypeMalformedResponse, nil,
				"bing resource %d: point must have 2 coordinates, got %d", i, len(result.Point.Coordinates))
		}

		lat, lng := result.Point.Coordinates[0], result.Point.Coordinates[1]
		feature := geojson.NewFeature(orb.Point{lng, lat})

		var bound *orb.Bound
		if len(result.BBox) == 4 {
			south, west, north, east := result.BBox[0], result.BBox[1], result.BBox[2], result.BBox[3]
			feature.BBox = geojson.BBox{west, south, east, north}
			bound = spatial.BoundFromBBox(feature.BBox)
		}

		props := feature.Properties
		props["confidence"] = spatial.ConfidenceScore(bound)
		props["authenticationResultCode"] = resp.AuthenticationResultCode
		props["brandLogoUri"] = resp.BrandLogoURI
		props["copyright"] = resp.Copyright
		props["entityType"] = result.EntityType
		props["matchCodes"] = result.MatchCodes
		props["name"] = result.Name
		props["statusCode"] = resp.StatusCode
		props["statusDescription"] = resp.StatusDescription
		props["traceId"] = resp.TraceID

		if result.Confidence != "" {
			props["bing_confidence"] = result.Confidence
		}

		for k, v := range result.Address {
			if s, ok := v.(string); v == nil || ok && s == "" {
				continue
			}

			props[k] = v
		}

		// OSM tags
		if postcode, ok := result.Address["postalCode"].(string); ok && postcode != "" {
			props["addr:postcode"] = postcode
		}

		if city, ok := result.Address["locality"].(string); ok && city != "" {
			props["addr:city"] = city
		}

		fc.Append(feature)
	}

	return fc, nil
}
