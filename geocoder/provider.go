// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocoder normalizes the answers of several geocoding providers into
// GeoJSON point feature collections.
package geocoder

import (
	"context"
	"slices"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/geocode-go/geocode/spatial"
)

// Adapter converts a provider payload into a point feature collection.
// Adapters do no I/O.
type Adapter interface {
	ToGeoJSON(body []byte, options Options) (*geojson.FeatureCollection, error)
}

// AdapterFunc is a function implementing Adapter.
type AdapterFunc func(body []byte, options Options) (*geojson.FeatureCollection, error)

// ToGeoJSON implements Adapter.
func (f AdapterFunc) ToGeoJSON(body []byte, options Options) (*geojson.FeatureCollection, error) {
	return f(body, options)
}

// Fetcher issues a GET request and returns the response body.
// Non-2xx answers are returned as *Error.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Payload is the answer of a provider together with the adapter able to read it.
type Payload struct {
	Body    []byte
	Adapter Adapter
}

// Credential describes how a provider authenticates.
type Credential struct {
	// Env is the environment variable holding the credential
	Env string

	// Required providers fail before any request when no credential is found
	Required bool

	// Token credentials go into Options.AccessToken, others into Options.Key
	Token bool

	// KeySource allows falling back to the client KeySource
	KeySource bool
}

// Provider is a geocoding service.
type Provider interface {
	Name() string

	// Defaults returns a fresh copy of the provider default options.
	Defaults() Options

	Credential() Credential

	Geocode(ctx context.Context, f Fetcher, address string, options Options) (*Payload, error)
	Reverse(ctx context.Context, f Fetcher, p spatial.Point, options Options) (*Payload, error)
}

// Querier is implemented by providers able to show the query they would run.
type Querier interface {
	Query(address string, options Options) (string, error)
}

var providers = map[string]Provider{}

func register(p Provider) {
	providers[p.Name()] = p
}

func init() {
	register(bingProvider{})
	register(googleProvider{})
	register(mapboxProvider{})
	register(opencageProvider{})
	register(wikidataProvider{})
}

// Providers returns the names of the registered providers, sorted.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// ProviderFor returns the provider registered under name (case insensitive).
func ProviderFor(name string) (Provider, error) {
	p, ok := providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, newError(ErrorTypeUnknownProvider, nil,
			"unknown provider %q (available: %s)", name, strings.Join(Providers(), ", "))
	}

	return p, nil
}
