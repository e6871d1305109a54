// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"slices"

	"github.com/geocode-go/geocode/spatial"
)

// Options tunes a geocoding request and the post-processing of its results.
type Options struct {
	// Nearest keeps only the closest feature to this point
	Nearest *spatial.Point `json:"nearest,omitempty" yaml:"-"`

	// Radius in kilometers around Nearest. Zero means unlimited.
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`

	// Places keeps features whose places property intersects this list
	Places []string `json:"places,omitempty" yaml:"places,omitempty"`

	// Limit the amount of features, zero means no limit
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`

	// Short address components instead of long ones (Google)
	Short bool `json:"short,omitempty" yaml:"short,omitempty"`

	// Raw returns the provider payload untouched
	Raw bool `json:"raw,omitempty" yaml:"raw,omitempty"`

	// Key is the API key (Bing, Google, Opencage)
	Key string `json:"-" yaml:"key,omitempty"`

	// AccessToken is the Mapbox access token
	AccessToken string `json:"-" yaml:"access_token,omitempty"`

	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// Languages used by Wikidata to match labels
	Languages []string `json:"languages,omitempty" yaml:"languages,omitempty"`

	// Subclasses restrict Wikidata results to instances of these entities
	Subclasses []string `json:"subclasses,omitempty" yaml:"subclasses,omitempty"`
}

// MergeOptions returns user options completed with defaults. Neither argument
// is modified and the result shares no slices or pointers with them.
func MergeOptions(user, defaults Options) Options {
	merged := Options{
		Radius:      defaults.Radius,
		Places:      slices.Clone(defaults.Places),
		Limit:       defaults.Limit,
		Short:       defaults.Short || user.Short,
		Raw:         defaults.Raw || user.Raw,
		Key:         defaults.Key,
		AccessToken: defaults.AccessToken,
		Language:    defaults.Language,
		Languages:   slices.Clone(defaults.Languages),
		Subclasses:  slices.Clone(defaults.Subclasses),
	}

	switch {
	case user.Nearest != nil:
		p := *user.Nearest
		merged.Nearest = &p
	case defaults.Nearest != nil:
		p := *defaults.Nearest
		merged.Nearest = &p
	}

	if user.Radius != 0 {
		merged.Radius = user.Radius
	}

	if len(user.Places) > 0 {
		merged.Places = slices.Clone(user.Places)
	}

	if user.Limit != 0 {
		merged.Limit = user.Limit
	}

	if user.Key != "" {
		merged.Key = user.Key
	}

	if user.AccessToken != "" {
		merged.AccessToken = user.AccessToken
	}

	if user.Language != "" {
		merged.Language = user.Language
	}

	if len(user.Languages) > 0 {
		merged.Languages = slices.Clone(user.Languages)
	}

	if len(user.Subclasses) > 0 {
		merged.Subclasses = slices.Clone(user.Subclasses)
	}

	return merged
}
