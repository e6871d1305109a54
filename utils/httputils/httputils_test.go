// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package httputils

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dummyRoundTripper is useful to simulate a response.
type dummyRoundTripper struct {
	response *http.Response
}

func (d *dummyRoundTripper) RoundTrip(_ *http.Request) (*http.Response, error) {
	if d.response != nil {
		return d.response, nil
	}

	return nil, nil
}

//////////////////////////////////
// Test LoggingRoundTripper

// TestLoggingRoundTripper verifies that the LoggingRoundTripper logs both the request and
// the response (including timing information).
func TestLoggingRoundTripper(t *testing.T) {
	// Buffer to capture log output.
	var logBuffer bytes.Buffer

	// Set up a dummy transport that returns a dummy response.
	drt := &dummyRoundTripper{
		response: &http.Response{
			Status:     "200 OK",
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader("response body")),
		},
	}

	lt := &LoggingRoundTripper{
		Transport: drt,
		Writer:    &logBuffer,
		DumpBody:  true, // include body in the dump
	}

	// Create a basic request.
	req, err := http.NewRequest(http.MethodGet, "http://example.com/abc?q=Ottawa&key=s3cr3t", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	// RoundTrip through our logging round tripper.
	_, err = lt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}

	// Check log contents.
	logContent := logBuffer.String()
	if strings.Contains(logContent, "s3cr3t") {
		t.Errorf("log leaks the api key. Got: %s", logContent)
	}

	if !strings.Contains(logContent, "key=REDACTED") {
		t.Errorf("log does not contain the redacted key. Got: %s", logContent)
	}

	if !strings.Contains(logContent, "> GET /abc") {
		t.Errorf("log does not contain request info. Got: %s", logContent)
	}

	if !strings.Contains(logContent, "< RESPONSE: [") {
		t.Errorf("log does not contain response header with timing info. Got: %s", logContent)
	}

	if !strings.Contains(logContent, "response body") {
		t.Errorf("log does not contain response body. Got: %s", logContent)
	}
}

// failingWriter accepts a number of writes and fails afterwards.
type failingWriter struct {
	writes int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.writes == 0 {
		return 0, errors.New("disk full")
	}

	w.writes--

	return len(p), nil
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true

	return nil
}

func TestLoggingRoundTripperClosesBodyOnTraceError(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("response body")}
	lt := &LoggingRoundTripper{
		Transport: &dummyRoundTripper{response: &http.Response{
			Status:     "200 OK",
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       body,
		}},
		Writer: &failingWriter{writes: 1},
	}

	req, err := http.NewRequest(http.MethodGet, "http://example.com/abc", nil)
	require.NoError(t, err)

	resp, err := lt.RoundTrip(req)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, body.closed)
}

//////////////////////////////////
// Test AppendRequestHeadersRoundTripper

// dummyHeadersRoundTripper is used to verify that the headers are added.
type dummyHeadersRoundTripper struct {
	lastRequest *http.Request
}

func (d *dummyHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	d.lastRequest = req

	return &http.Response{
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func TestAppendRequestHeadersRoundTripper(t *testing.T) {
	// Create a dummy transport that captures the request.
	dummy := &dummyHeadersRoundTripper{}

	// Wrap it with AppendRequestHeadersRoundTripper.
	headersToAdd := map[string]string{
		"X-Test-Header": "TestValue",
	}
	atr := &AppendRequestHeadersRoundTripper{
		Transport: dummy,
		Headers:   headersToAdd,
	}

	req, err := http.NewRequest(http.MethodPost, "http://example.org", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	// Ensure the header is not originally set.
	if req.Header.Get("X-Test-Header") != "" {
		t.Fatalf("the test header should not be pre-set in the request")
	}

	// Issue the request.
	_, err = atr.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}

	// Verify that our header was added.
	if dummy.lastRequest == nil {
		t.Fatalf("dummy transport did not receive any request")
	}

	if got := dummy.lastRequest.Header.Get("X-Test-Header"); got != "TestValue" {
		t.Errorf("expected header X-Test-Header to have value 'TestValue', but got '%s'", got)
	}
}

//////////////////////////////////
// Test NewClient

func TestNewClientSetsUserAgent(t *testing.T) {
	client := NewClient(ClientOptions{UserAgent: "geocode/test"})

	headers, ok := client.Transport.(*AppendRequestHeadersRoundTripper)
	require.True(t, ok)
	assert.Equal(t, "geocode/test", headers.Headers["User-Agent"])
	assert.Equal(t, "application/json", headers.Headers["Accept"])

	logging, ok := headers.Transport.(*LoggingRoundTripper)
	require.True(t, ok)
	assert.Nil(t, logging.Writer)
}

//////////////////////////////////
// Test AsReader

func TestAsReader(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        []byte
		expected    string
	}{
		{"no content type", "", []byte(`{"name":"Montréal"}`), `{"name":"Montréal"}`},
		{"utf-8", "application/json; charset=UTF-8", []byte(`{"name":"Montréal"}`), `{"name":"Montréal"}`},
		{"latin1", "application/json; charset=ISO-8859-1", []byte("{\"name\":\"Montr\xe9al\"}"), `{"name":"Montréal"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       io.NopCloser(bytes.NewReader(tc.body)),
			}
			if tc.contentType != "" {
				resp.Header.Set("Content-Type", tc.contentType)
			}

			r, err := AsReader(resp)
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(got))
		})
	}
}
