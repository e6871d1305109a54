// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

// Package spatial provides coordinate validation, distances and confidence scoring.
package spatial

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// earthRadius is the mean earth radius in kilometers.
const earthRadius = 6371.0088

// Precision is the number of decimal digits kept on coordinates and distances.
const Precision = 6

// ErrInvalidCoordinate is returned when a longitude or latitude is out of range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Point represents a geographical point with longitude and latitude.
// Its JSON form is the GeoJSON position [lng, lat].
type Point struct {
	Lng float64
	Lat float64
}

// FromOrb converts an orb.Point into a Point.
func FromOrb(p orb.Point) Point {
	return Point{Lng: p.Lon(), Lat: p.Lat()}
}

// Orb returns the point as an orb.Point.
func (p Point) Orb() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// String returns the point as a WKT literal, e.g. Point(-75 45).
func (p Point) String() string {
	return fmt.Sprintf("Point(%s %s)", FormatFloat(p.Lng), FormatFloat(p.Lat))
}

// MarshalJSON implements json.Marshaler.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lng, p.Lat})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("spatial: decoding lnglat: %w", err)
	}

	if len(pair) != 2 {
		return fmt.Errorf("spatial: lnglat must have 2 elements, got %d", len(pair))
	}

	p.Lng, p.Lat = pair[0], pair[1]

	return nil
}

// ParsePoint extracts a point from a WKT point literal. Prefixes before the
// literal, such as the globe IRI Wikidata adds for non-earth bodies, are ignored.
func ParsePoint(literal string) (Point, error) {
	s := strings.ToUpper(strings.TrimSpace(literal))

	idx := strings.Index(s, "POINT")
	if idx == -1 {
		return Point{}, fmt.Errorf("spatial: not a WKT point: %q", literal)
	}

	p, err := wkt.UnmarshalPoint(s[idx:])
	if err != nil {
		return Point{}, fmt.Errorf("spatial: parsing %q: %w", literal, err)
	}

	return FromOrb(p), nil
}

// HaversineDistance calculates the great-circle distance between two points in kilometers.
func (p Point) HaversineDistance(other Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// ValidateLngLat checks the point is within WGS84 ranges and returns it unchanged.
// Latitude is checked first.
func ValidateLngLat(p Point) (Point, error) {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return Point{}, fmt.Errorf("%w: lnglat [lat] must be within -90 to 90 degrees", ErrInvalidCoordinate)
	}

	if math.IsNaN(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return Point{}, fmt.Errorf("%w: lnglat [lng] must be within -180 to 180 degrees", ErrInvalidCoordinate)
	}

	return p, nil
}

// ParseLngLat decodes a string encoded longitude/latitude pair and validates it.
// Both the JSON form "[-75.7,45.4]" and the bare form "-75.7,45.4" are accepted.
func ParseLngLat(s string) (Point, error) {
	s = strings.TrimSpace(s)

	var p Point

	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return Point{}, fmt.Errorf("%w: %q: %w", ErrInvalidCoordinate, s, err)
		}

		return ValidateLngLat(p)
	}

	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("%w: %q is not a lng,lat pair", ErrInvalidCoordinate, s)
	}

	var err error

	if p.Lng, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return Point{}, fmt.Errorf("%w: lng %q: %w", ErrInvalidCoordinate, parts[0], err)
	}

	if p.Lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return Point{}, fmt.Errorf("%w: lat %q: %w", ErrInvalidCoordinate, parts[1], err)
	}

	return ValidateLngLat(p)
}

// Round rounds v to the given number of decimal digits.
func Round(v float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))

	return math.Round(v*pow) / pow
}

// FormatFloat formats v with the minimal number of digits, e.g. -75 or 45.25.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
