// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"strings"

	"github.com/geocode-go/geocode/utils/textutils"
)

// streetSuffixes maps abbreviated street types, folded, to their full form.
var streetSuffixes = map[string]string{
	"aly":  "Alley",
	"av":   "Avenue",
	"ave":  "Avenue",
	"blvd": "Boulevard",
	"cir":  "Circle",
	"cres": "Crescent",
	"crt":  "Court",
	"ct":   "Court",
	"dr":   "Drive",
	"expy": "Expressway",
	"fwy":  "Freeway",
	"gdns": "Gardens",
	"hwy":  "Highway",
	"ln":   "Lane",
	"pkwy": "Parkway",
	"pl":   "Place",
	"plz":  "Plaza",
	"pvt":  "Private",
	"rd":   "Road",
	"sq":   "Square",
	"st":   "Street",
	"ter":  "Terrace",
	"trl":  "Trail",
	"way":  "Way",
}

// ReplaceStreetSuffix expands an abbreviated street type at the end of a
// street name, e.g. "Bank St." becomes "Bank Street". Only the last word is
// considered and the match is case insensitive.
func ReplaceStreetSuffix(street string) string {
	trimmed := strings.TrimRight(street, " ")

	idx := strings.LastIndex(trimmed, " ")
	prefix, last := trimmed[:idx+1], trimmed[idx+1:]

	full, ok := streetSuffixes[textutils.LowerASCIIFolding(strings.TrimSuffix(last, "."))]
	if !ok {
		return street
	}

	return prefix + full
}
