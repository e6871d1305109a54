// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceStreetSuffix(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Elgin St", "Elgin Street"},
		{"Elgin St.", "Elgin Street"},
		{"Elgin st", "Elgin Street"},
		{"Bank Ave", "Bank Avenue"},
		{"Riverside Dr", "Riverside Drive"},
		{"Saint-Laurent Blvd.", "Saint-Laurent Boulevard"},
		{"St Patrick Rd", "St Patrick Road"},
		{"Laurier Ave W", "Laurier Ave W"},
		{"Wellington Street", "Wellington Street"},
		{"Stanley", "Stanley"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, ReplaceStreetSuffix(tc.input))
		})
	}
}
