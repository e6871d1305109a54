// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCredential(t *testing.T) {
	env := mapEnv(map[string]string{
		"BING_API_KEY":        "bing-env",
		"MAPBOX_ACCESS_TOKEN": "mapbox-env",
	})

	tests := []struct {
		name        string
		provider    Provider
		options     Options
		keys        KeySource
		wantKey     string
		wantToken   string
		wantMissing bool
	}{
		{name: "explicit key", provider: bingProvider{}, options: Options{Key: "flag"}, wantKey: "flag"},
		{name: "key from env", provider: bingProvider{}, wantKey: "bing-env"},
		{name: "token from env", provider: mapboxProvider{}, wantToken: "mapbox-env"},
		{name: "missing key", provider: opencageProvider{}, wantMissing: true},
		{name: "google key source", provider: googleProvider{}, keys: &stubKeySource{key: "adc"}, wantKey: "adc"},
		{name: "google keyless", provider: googleProvider{}},
		{name: "wikidata keyless", provider: wikidataProvider{}, keys: &stubKeySource{key: "unused"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveCredential(context.Background(), tc.provider, tc.options, env, tc.keys)
			if tc.wantMissing {
				assert.True(t, IsType(err, ErrorTypeMissingCredential))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantKey, got.Key)
			assert.Equal(t, tc.wantToken, got.AccessToken)
		})
	}
}

func TestNewADCKeySource(t *testing.T) {
	s := NewADCKeySource("my-project", "")
	assert.Equal(t, "my-project", s.ProjectID)
	assert.Equal(t, DefaultKeyDisplayName, s.DisplayName)

	assert.Equal(t, "Maps", NewADCKeySource("", "Maps").DisplayName)
}

func TestADCKeySourceRetriesFailures(t *testing.T) {
	var calls int

	s := NewADCKeySource("my-project", "")
	s.fetch = func(ctx context.Context) (string, error) {
		calls++
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if calls == 1 {
			return "", errors.New("transient failure")
		}

		return "adc-key", nil
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.APIKey(context.Background())
	require.Error(t, err)

	key, err := s.APIKey(cancelled)
	require.NoError(t, err, "lookup ignores the cancellation of the caller")
	assert.Equal(t, "adc-key", key)

	key, err = s.APIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "adc-key", key)
	assert.Equal(t, 2, calls, "a successful key is cached")
}

func TestEnvironmentFunc(t *testing.T) {
	t.Setenv("GEOCODE_TEST_VALUE", "42")

	v, ok := OSEnvironment.Lookup("GEOCODE_TEST_VALUE")
	assert.True(t, ok)
	assert.Equal(t, "42", v)
}
