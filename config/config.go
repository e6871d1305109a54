// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

// Package config handles the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/geocode-go/geocode/geocoder"
)

// DefaultPath is read when no configuration file is given.
const DefaultPath = "geocode.yaml"

// Config represents the root configuration file structure.
type Config struct {
	// Provider used when none is given on the command line
	Provider string `yaml:"provider,omitempty"`

	UserAgent string        `yaml:"user_agent,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`

	Google GoogleConfig `yaml:"google,omitempty"`
	Server ServerConfig `yaml:"server,omitempty"`

	// Providers holds per provider default options, keyed by provider name
	Providers map[string]ProviderConfig `yaml:"providers,omitempty"`
}

// GoogleConfig controls the Google API key lookup with Application Default Credentials.
type GoogleConfig struct {
	ADC       bool   `yaml:"adc,omitempty"`
	ProjectID string `yaml:"project_id,omitempty"`
	KeyName   string `yaml:"key_name,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// ProviderConfig are the options of a provider. Distance is an alias of radius.
type ProviderConfig struct {
	geocoder.Options `yaml:",inline"`

	Distance float64 `yaml:"distance,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
// Environment variables in the file, like ${BING_API_KEY}, are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	normalized := make(map[string]ProviderConfig, len(cfg.Providers))
	for name, p := range cfg.Providers {
		name = strings.ToLower(name)
		if _, err := geocoder.ProviderFor(name); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		normalized[name] = p
	}

	cfg.Providers = normalized

	return &cfg, nil
}

// LoadOrDefault loads path, or DefaultPath when path is empty. A missing
// DefaultPath yields an empty configuration.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	cfg, err := Load(DefaultPath)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}

	return cfg, err
}

// ProviderOptions returns the configured options of a provider.
func (c *Config) ProviderOptions(name string) geocoder.Options {
	p, ok := c.Providers[strings.ToLower(name)]
	if !ok {
		return geocoder.Options{}
	}

	options := p.Options
	if options.Radius == 0 {
		options.Radius = p.Distance
	}

	return options
}
