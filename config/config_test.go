// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geocode-go/geocode/geocoder"
)

const sample = `
provider: wikidata
user_agent: geocode-test/1.0
timeout: 15s
google:
  adc: true
  project_id: my-project
server:
  addr: ":9090"
providers:
  Bing:
    key: ${GEOCODE_TEST_BING}
    limit: 5
  wikidata:
    distance: 50
    languages: [en, fr]
    subclasses: [city, town]
  mapbox:
    access_token: pk.abc
    radius: 10
    distance: 99
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "geocode.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("GEOCODE_TEST_BING", "bing-secret")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "wikidata", cfg.Provider)
	assert.Equal(t, "geocode-test/1.0", cfg.UserAgent)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.True(t, cfg.Google.ADC)
	assert.Equal(t, "my-project", cfg.Google.ProjectID)
	assert.Equal(t, ":9090", cfg.Server.Addr)

	assert.Equal(t, geocoder.Options{Key: "bing-secret", Limit: 5}, cfg.ProviderOptions("bing"))
	assert.Equal(t, geocoder.Options{
		Radius:     50,
		Languages:  []string{"en", "fr"},
		Subclasses: []string{"city", "town"},
	}, cfg.ProviderOptions("Wikidata"))
	assert.Equal(t, geocoder.Options{AccessToken: "pk.abc", Radius: 10}, cfg.ProviderOptions("mapbox"))
	assert.Equal(t, geocoder.Options{}, cfg.ProviderOptions("google"))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "providers: [nope"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "providers:\n  yahoo:\n    limit: 1\n"))
	require.Error(t, err)
	assert.True(t, geocoder.IsType(err, geocoder.ErrorTypeUnknownProvider))
}

func TestLoadOrDefault(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)

	require.NoError(t, os.WriteFile(DefaultPath, []byte("provider: google\n"), 0o600))

	cfg, err = LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "google", cfg.Provider)
}
