// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package wikidata

import (
	"strings"

	"github.com/geocode-go/geocode/utils/textutils"
)

// subclassCodes maps human readable subclass names to Wikidata entity codes.
// Keys are ASCII folded.
var subclassCodes = map[string]string{
	"administrative territorial entity": "Q56061",
	"airport":                           "Q1248784",
	"bridge":                            "Q12280",
	"building":                          "Q41176",
	"capital":                           "Q5119",
	"church":                            "Q16970",
	"city":                              "Q515",
	"country":                           "Q6256",
	"county":                            "Q28575",
	"district":                          "Q149621",
	"hamlet":                            "Q5084",
	"hospital":                          "Q16917",
	"human settlement":                  "Q486972",
	"island":                            "Q23442",
	"lake":                              "Q23397",
	"mountain":                          "Q8502",
	"municipality":                      "Q15284",
	"museum":                            "Q33506",
	"national park":                     "Q46169",
	"neighborhood":                      "Q123705",
	"neighbourhood":                     "Q123705",
	"park":                              "Q22698",
	"protected area":                    "Q473972",
	"province":                          "Q34876",
	"railway station":                   "Q55488",
	"river":                             "Q4022",
	"school":                            "Q3914",
	"settlement":                        "Q486972",
	"sovereign state":                   "Q3624078",
	"stadium":                           "Q483110",
	"suburb":                            "Q188509",
	"town":                              "Q3957",
	"university":                        "Q3918",
	"village":                           "Q532",
}

// ResolveSubclass returns the Wikidata entity code for a subclass alias.
// Codes without an alias are returned verbatim, minus any "wd:" prefix.
func ResolveSubclass(code string) string {
	if resolved, ok := subclassCodes[textutils.LowerASCIIFolding(code)]; ok {
		return resolved
	}

	return strings.TrimPrefix(strings.TrimSpace(code), "wd:")
}
