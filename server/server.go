// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the geocoder over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/geocode-go/geocode/geocoder"
	"github.com/geocode-go/geocode/spatial"
)

// Geocoder is the subset of *geocoder.Client used by the server.
type Geocoder interface {
	Geocode(ctx context.Context, provider, address string, options geocoder.Options) (*geocoder.Result, error)
	Reverse(ctx context.Context, provider string, lnglat spatial.Point, options geocoder.Options) (*geocoder.Result, error)
	Query(provider, address string, options geocoder.Options) (string, error)
}

// Server serves the geocoding API.
type Server struct {
	geocoder Geocoder
	defaults func(provider string) geocoder.Options
}

// NewServer creates a Server. defaults, when not nil, returns the configured
// options of a provider; request parameters take precedence.
func NewServer(g Geocoder, defaults func(provider string) geocoder.Options) *Server {
	if defaults == nil {
		defaults = func(string) geocoder.Options { return geocoder.Options{} }
	}

	return &Server{geocoder: g, defaults: defaults}
}

// Router builds the gin engine with the API routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(), gin.Recovery())

	r.GET("/api/providers", s.listProviders)
	r.GET("/api/geocode/:provider", s.geocode)
	r.GET("/api/reverse/:provider", s.reverse)

	return r
}

// Run serves the API on addr until the listener fails.
func (s *Server) Run(addr string) error {
	log.Info().Str("addr", addr).Msg("serving geocode API")

	return s.Router().Run(addr)
}

type providerInfo struct {
	Name     string           `json:"name"`
	Env      string           `json:"env,omitempty"`
	Required bool             `json:"credential_required"`
	Query    bool             `json:"query"`
	Defaults geocoder.Options `json:"defaults"`
}

func (s *Server) listProviders(ctx *gin.Context) {
	var infos []providerInfo

	for _, name := range geocoder.Providers() {
		p, err := geocoder.ProviderFor(name)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

			return
		}

		_, querier := p.(geocoder.Querier)
		cred := p.Credential()
		infos = append(infos, providerInfo{
			Name:     name,
			Env:      cred.Env,
			Required: cred.Required,
			Query:    querier,
			Defaults: p.Defaults(),
		})
	}

	ctx.JSON(http.StatusOK, infos)
}

func (s *Server) geocode(ctx *gin.Context) {
	provider := ctx.Param("provider")

	address := strings.TrimSpace(ctx.Query("q"))
	if address == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})

		return
	}

	options, err := s.parseOptions(ctx, provider)
	if err != nil {
		s.fail(ctx, err)

		return
	}

	if sparql, _ := strconv.ParseBool(ctx.Query("sparql")); sparql {
		query, err := s.geocoder.Query(provider, address, options)
		if err != nil {
			s.fail(ctx, err)

			return
		}

		ctx.String(http.StatusOK, query)

		return
	}

	res, err := s.geocoder.Geocode(ctx.Request.Context(), provider, address, options)
	if err != nil {
		s.fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, res)
}

func (s *Server) reverse(ctx *gin.Context) {
	provider := ctx.Param("provider")

	lnglat := ctx.Query("lnglat")
	if lnglat == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "lnglat query parameter is required"})

		return
	}

	p, err := spatial.ParseLngLat(lnglat)
	if err != nil {
		s.fail(ctx, &geocoder.Error{Type: geocoder.ErrorTypeInvalidCoordinate, Message: "invalid lnglat", Err: err})

		return
	}

	options, err := s.parseOptions(ctx, provider)
	if err != nil {
		s.fail(ctx, err)

		return
	}

	res, err := s.geocoder.Reverse(ctx.Request.Context(), provider, p, options)
	if err != nil {
		s.fail(ctx, err)

		return
	}

	ctx.JSON(http.StatusOK, res)
}

// listParam returns the values of a repeated or comma separated parameter.
func listParam(ctx *gin.Context, name string) []string {
	var values []string

	for _, v := range ctx.QueryArray(name) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}

	return values
}

func badParam(name string, err error) error {
	return &geocoder.Error{Type: geocoder.ErrorTypeInvalidRequest, Message: "invalid " + name, Err: err}
}

func (s *Server) parseOptions(ctx *gin.Context, provider string) (geocoder.Options, error) {
	var options geocoder.Options

	if v := ctx.Query("nearest"); v != "" {
		p, err := spatial.ParseLngLat(v)
		if err != nil {
			return options, &geocoder.Error{Type: geocoder.ErrorTypeInvalidCoordinate, Message: "invalid nearest", Err: err}
		}

		options.Nearest = &p
	}

	for _, name := range []string{"radius", "distance"} {
		v := ctx.Query(name)
		if v == "" {
			continue
		}

		radius, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return options, badParam(name, err)
		}

		options.Radius = radius

		break
	}

	if v := ctx.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return options, badParam("limit", err)
		}

		options.Limit = limit
	}

	for name, target := range map[string]*bool{"short": &options.Short, "raw": &options.Raw} {
		if v := ctx.Query(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return options, badParam(name, err)
			}

			*target = b
		}
	}

	options.Places = listParam(ctx, "places")
	options.Language = ctx.Query("language")
	options.Languages = listParam(ctx, "languages")
	options.Subclasses = listParam(ctx, "subclasses")

	return geocoder.MergeOptions(options, s.defaults(provider)), nil
}

func statusFor(err error) int {
	var geoErr *geocoder.Error
	if !errors.As(err, &geoErr) {
		return http.StatusInternalServerError
	}

	switch geoErr.Type {
	case geocoder.ErrorTypeInvalidCoordinate,
		geocoder.ErrorTypeMissingParameter,
		geocoder.ErrorTypeInvalidLanguage,
		geocoder.ErrorTypeInvalidRequest,
		geocoder.ErrorTypeUnsupported:
		return http.StatusBadRequest
	case geocoder.ErrorTypeMissingCredential:
		return http.StatusUnauthorized
	case geocoder.ErrorTypeUnknownProvider:
		return http.StatusNotFound
	case geocoder.ErrorTypeRateLimit:
		return http.StatusTooManyRequests
	case geocoder.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) fail(ctx *gin.Context, err error) {
	_ = ctx.Error(err)

	body := gin.H{"error": err.Error()}

	var geoErr *geocoder.Error
	if errors.As(err, &geoErr) {
		body["type"] = geoErr.Type.String()
	}

	ctx.JSON(statusFor(err), body)
}
