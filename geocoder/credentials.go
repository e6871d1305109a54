// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// Environment looks up environment variables.
type Environment interface {
	Lookup(name string) (string, bool)
}

// EnvironmentFunc is a function implementing Environment.
type EnvironmentFunc func(name string) (string, bool)

// Lookup implements Environment.
func (f EnvironmentFunc) Lookup(name string) (string, bool) {
	return f(name)
}

// OSEnvironment reads the process environment.
var OSEnvironment Environment = EnvironmentFunc(os.LookupEnv)

// KeySource provides a Google API key when none is configured.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// DefaultKeyDisplayName is the display name of the API key looked up by ADCKeySource.
const DefaultKeyDisplayName = "Geocode Key"

const keyLookupTimeout = 30 * time.Second

// ADCKeySource retrieves a Google API key from the API Keys service using
// Application Default Credentials. Only a successful lookup is cached, failed
// ones are retried on the next call.
type ADCKeySource struct {
	// ProjectID overrides the project of the default credentials
	ProjectID string

	// DisplayName of the key to use
	DisplayName string

	mu  sync.Mutex
	key string

	// fetch replaces the API Keys service in tests
	fetch func(ctx context.Context) (string, error)
}

// NewADCKeySource creates an ADCKeySource.
func NewADCKeySource(projectID, displayName string) *ADCKeySource {
	if displayName == "" {
		displayName = DefaultKeyDisplayName
	}

	s := &ADCKeySource{ProjectID: projectID, DisplayName: displayName}
	s.fetch = s.lookup

	return s
}

// APIKey implements KeySource. The lookup outlives the cancellation of ctx,
// which is often a single HTTP request.
func (s *ADCKeySource) APIKey(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != "" {
		return s.key, nil
	}

	fetch := s.fetch
	if fetch == nil {
		fetch = s.lookup
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), keyLookupTimeout)
	defer cancel()

	key, err := fetch(ctx)
	if err != nil {
		return "", err
	}

	s.key = key

	return key, nil
}

func (s *ADCKeySource) lookup(ctx context.Context) (string, error) {
	projectID := s.ProjectID
	if projectID == "" {
		creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
		if err != nil {
			return "", fmt.Errorf("finding default credentials: %w", err)
		}

		projectID = creds.ProjectID
	}

	if projectID == "" {
		return "", errors.New("no project id in default credentials")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != s.DisplayName {
			continue
		}

		// ListKeys redacts the secret
		log.Debug().Str("key", key.Name).Msg("retrieving api key string")

		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key %q has an empty key string", s.DisplayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("no api key named %q in project %s", s.DisplayName, projectID)
}

// resolveCredential fills the provider credential from, in order, the
// options, the environment and, for keys, the key source. Providers that
// require a credential fail when none is found.
func resolveCredential(ctx context.Context, p Provider, options Options, env Environment, keys KeySource) (Options, error) {
	cred := p.Credential()

	current := &options.Key
	if cred.Token {
		current = &options.AccessToken
	}

	if *current == "" && cred.Env != "" && env != nil {
		if v, ok := env.Lookup(cred.Env); ok {
			*current = v
		}
	}

	if *current == "" && cred.KeySource && keys != nil {
		key, err := keys.APIKey(ctx)
		if err != nil {
			log.Warn().Err(err).Str("provider", p.Name()).Msg("api key lookup failed, continuing without key")
		} else {
			*current = key
		}
	}

	if *current == "" && cred.Required {
		flag := "--key"
		if cred.Token {
			flag = "--access-token"
		}

		return options, newError(ErrorTypeMissingCredential, nil,
			"%s: %s or environment variable %s is required", p.Name(), flag, cred.Env)
	}

	return options, nil
}
