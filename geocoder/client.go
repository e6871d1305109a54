// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/geocode-go/geocode/spatial"
	"github.com/geocode-go/geocode/utils/httputils"
)

// maxBodySize bounds the provider payload read into memory.
const maxBodySize = 32 << 20

// Doer sends HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result is either a normalized feature collection or, in raw mode, the
// provider payload as received.
type Result struct {
	Collection *geojson.FeatureCollection
	Raw        json.RawMessage
}

// MarshalJSON implements json.Marshaler.
func (r *Result) MarshalJSON() ([]byte, error) {
	if r.Raw != nil {
		return r.Raw, nil
	}

	if r.Collection == nil {
		return json.Marshal(geojson.NewFeatureCollection())
	}

	return json.Marshal(r.Collection)
}

// Client dispatches geocoding requests to the providers. It is safe for
// concurrent use.
type Client struct {
	doer Doer
	env  Environment
	keys KeySource
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEnvironment sets where credentials are looked up. Defaults to OSEnvironment.
func WithEnvironment(env Environment) ClientOption {
	return func(c *Client) { c.env = env }
}

// WithKeySource sets the fallback source of Google API keys.
func WithKeySource(keys KeySource) ClientOption {
	return func(c *Client) { c.keys = keys }
}

// NewClient creates a Client. A nil doer uses an http client from httputils.
func NewClient(doer Doer, opts ...ClientOption) *Client {
	if doer == nil {
		doer = httputils.NewClient(httputils.ClientOptions{})
	}

	c := &Client{doer: doer, env: OSEnvironment}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	host := req.URL.Host
	start := time.Now()

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, classify(fmt.Errorf("requesting %s: %w", host, redact(err)))
	}
	defer resp.Body.Close()

	r, err := httputils.AsReader(resp)
	if err != nil {
		return nil, newError(ErrorTypeMalformedResponse, err, "reading %s", host)
	}

	body, err := io.ReadAll(io.LimitReader(r, maxBodySize))
	if err != nil {
		return nil, classify(fmt.Errorf("reading %s: %w", host, err))
	}

	log.Debug().
		Str("host", host).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("provider response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := ClassifyHTTPError(resp.StatusCode, string(body))
		e.Message = host + ": " + e.Message

		return nil, e
	}

	return body, nil
}

// redact removes the query string, which holds credentials, from url errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, perr := url.Parse(urlErr.URL); perr == nil {
			u.RawQuery = ""
			urlErr.URL = u.String()
		}
	}

	return err
}

func (c *Client) prepare(ctx context.Context, provider string, options Options) (Provider, Options, error) {
	p, err := ProviderFor(provider)
	if err != nil {
		return nil, options, err
	}

	options = MergeOptions(options, p.Defaults())

	if options.Nearest != nil {
		if _, err := spatial.ValidateLngLat(*options.Nearest); err != nil {
			return nil, options, classify(err)
		}
	}

	options, err = resolveCredential(ctx, p, options, c.env, c.keys)
	if err != nil {
		return nil, options, err
	}

	return p, options, nil
}

func (c *Client) finish(p Provider, payload *Payload, options Options) (*Result, error) {
	if options.Raw {
		return &Result{Raw: json.RawMessage(payload.Body)}, nil
	}

	fc, err := payload.Adapter.ToGeoJSON(payload.Body, options)
	if err != nil {
		return nil, err
	}

	found := len(fc.Features)
	fc = PostProcess(fc, options)

	log.Debug().
		Str("provider", p.Name()).
		Int("found", found).
		Int("kept", len(fc.Features)).
		Msg("post-processed")

	return &Result{Collection: fc}, nil
}

// Geocode resolves address with the named provider.
func (c *Client) Geocode(ctx context.Context, provider, address string, options Options) (*Result, error) {
	p, options, err := c.prepare(ctx, provider, options)
	if err != nil {
		return nil, err
	}

	payload, err := p.Geocode(ctx, c, address, options)
	if err != nil {
		return nil, err
	}

	return c.finish(p, payload, options)
}

// Reverse resolves the point with the named provider. The point is validated
// before anything else.
func (c *Client) Reverse(ctx context.Context, provider string, lnglat spatial.Point, options Options) (*Result, error) {
	point, err := spatial.ValidateLngLat(lnglat)
	if err != nil {
		return nil, classify(err)
	}

	p, options, err := c.prepare(ctx, provider, options)
	if err != nil {
		return nil, err
	}

	payload, err := p.Reverse(ctx, c, point, options)
	if err != nil {
		return nil, err
	}

	return c.finish(p, payload, options)
}

// Query returns the query the provider would run for address, without
// running it. Only query based providers support it.
func (c *Client) Query(provider, address string, options Options) (string, error) {
	p, err := ProviderFor(provider)
	if err != nil {
		return "", err
	}

	q, ok := p.(Querier)
	if !ok {
		return "", newError(ErrorTypeUnsupported, nil, "%s does not support query mode", p.Name())
	}

	options = MergeOptions(options, p.Defaults())
	if options.Nearest != nil {
		if _, err := spatial.ValidateLngLat(*options.Nearest); err != nil {
			return "", classify(err)
		}
	}

	return q.Query(address, options)
}
