// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/geocode-go/geocode/spatial"
	"github.com/geocode-go/geocode/wikidata"
)

// Error is the error returned by every geocoder operation.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies geocoding errors.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit rate limit reached.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded quota exceeded or access denied.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout connection timeout.
	ErrorTypeTimeout
	// ErrorTypeNotFound provider answered 404.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest provider rejected the request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError transport failure or unavailable service.
	ErrorTypeNetworkError
	// ErrorTypeUpstream any other provider failure.
	ErrorTypeUpstream
	// ErrorTypeInvalidCoordinate longitude or latitude out of range.
	ErrorTypeInvalidCoordinate
	// ErrorTypeMissingCredential provider requires a key or token.
	ErrorTypeMissingCredential
	// ErrorTypeMissingParameter a required option is absent.
	ErrorTypeMissingParameter
	// ErrorTypeInvalidLanguage unsupported language code.
	ErrorTypeInvalidLanguage
	// ErrorTypeUnknownProvider no provider with that name.
	ErrorTypeUnknownProvider
	// ErrorTypeUnsupported operation not offered by the provider.
	ErrorTypeUnsupported
	// ErrorTypeMalformedResponse provider payload could not be decoded.
	ErrorTypeMalformedResponse
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeUnknown:           "unknown",
	ErrorTypeRateLimit:         "rate_limit",
	ErrorTypeQuotaExceeded:     "quota_exceeded",
	ErrorTypeTimeout:           "timeout",
	ErrorTypeNotFound:          "not_found",
	ErrorTypeInvalidRequest:    "invalid_request",
	ErrorTypeNetworkError:      "network_error",
	ErrorTypeUpstream:          "upstream",
	ErrorTypeInvalidCoordinate: "invalid_coordinate",
	ErrorTypeMissingCredential: "missing_credential",
	ErrorTypeMissingParameter:  "missing_parameter",
	ErrorTypeInvalidLanguage:   "invalid_language",
	ErrorTypeUnknownProvider:   "unknown_provider",
	ErrorTypeUnsupported:       "unsupported",
	ErrorTypeMalformedResponse: "malformed_response",
}

func (t ErrorType) String() string {
	if name, ok := errorTypeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("ErrorType(%d)", int(t))
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(t ErrorType, err error, format string, args ...any) *Error {
	return &Error{Type: t, Message: fmt.Sprintf(format, args...), Err: err}
}

// IsType reports whether err carries an *Error of type t.
func IsType(err error, t ErrorType) bool {
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr.Type == t
	}

	return false
}

// IsRateLimitError checks whether the provider throttled the request.
func IsRateLimitError(err error) bool {
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError checks whether the provider quota is exhausted.
func IsQuotaExceededError(err error) bool {
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeQuotaExceeded
	}

	// Google Maps status codes
	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError checks whether the request timed out.
func IsTimeoutError(err error) bool {
	var geoErr *Error
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeTimeout
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// ClassifyHTTPError maps a provider HTTP status into an *Error.
// The body, when present, is appended to the message.
func ClassifyHTTPError(statusCode int, body string) *Error {
	var e *Error

	switch statusCode {
	case http.StatusTooManyRequests:
		e = &Error{Type: ErrorTypeRateLimit, Message: "rate limit reached"}
	case http.StatusForbidden, http.StatusUnauthorized:
		e = &Error{Type: ErrorTypeQuotaExceeded, Message: "quota exceeded or access denied"}
	case http.StatusBadRequest:
		e = &Error{Type: ErrorTypeInvalidRequest, Message: "invalid request"}
	case http.StatusNotFound:
		e = &Error{Type: ErrorTypeNotFound, Message: "location not found"}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		e = &Error{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("service unavailable (code %d)", statusCode),
		}
	default:
		e = &Error{Type: ErrorTypeUpstream, Message: fmt.Sprintf("HTTP error %d", statusCode)}
	}

	if body = strings.TrimSpace(body); body != "" {
		const maxBody = 256
		if len(body) > maxBody {
			body = body[:maxBody] + "…"
		}

		e.Message += ": " + body
	}

	return e
}

// classify converts errors coming from leaf packages and the transport into *Error.
func classify(err error) error {
	var (
		geoErr  *Error
		timeout interface{ Timeout() bool }
	)

	switch {
	case err == nil:
		return nil
	case errors.As(err, &geoErr):
		return err
	case errors.Is(err, spatial.ErrInvalidCoordinate):
		return newError(ErrorTypeInvalidCoordinate, err, "invalid coordinate")
	case errors.Is(err, wikidata.ErrMissingParameter):
		return newError(ErrorTypeMissingParameter, err, "missing parameter")
	case errors.Is(err, wikidata.ErrInvalidLanguage):
		return newError(ErrorTypeInvalidLanguage, err, "invalid language")
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &timeout) && timeout.Timeout():
		return newError(ErrorTypeTimeout, err, "request timed out")
	default:
		return newError(ErrorTypeNetworkError, err, "request failed")
	}
}
