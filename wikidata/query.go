// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

// Package wikidata builds SPARQL queries for the Wikidata Query Service.
package wikidata

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/geocode-go/geocode/spatial"
)

// Common errors returned by the query builder.
var (
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidLanguage  = errors.New("invalid language")
)

// QueryOptions drives CreateQuery. Zero values fall back to DefaultQueryOptions.
type QueryOptions struct {
	// Nearest is the center of the search, required
	Nearest *spatial.Point

	// Radius of the search around Nearest, in kilometers
	Radius float64

	// Subclasses are entity codes or aliases (see ResolveSubclass)
	Subclasses []string

	// Languages in which the label must match the address exactly
	Languages []string
}

// DefaultQueryOptions returns the defaults used for unset QueryOptions fields.
// Every call returns fresh slices.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		Radius:     15,
		Subclasses: []string{"Q486972"},
		Languages:  []string{"en", "fr", "es", "de", "it", "ru"},
	}
}

// CreateQuery builds a SPARQL query that finds instances of the given
// subclasses around Nearest whose label, in any of the languages, is exactly
// address. Results are ordered by distance. Identical inputs always produce
// identical output.
func CreateQuery(address string, options QueryOptions) (string, error) {
	if options.Nearest == nil {
		return "", fmt.Errorf("%w: nearest is required", ErrMissingParameter)
	}

	defaults := DefaultQueryOptions()

	radius := options.Radius
	if radius <= 0 {
		radius = defaults.Radius
	}

	subclasses := options.Subclasses
	if len(subclasses) == 0 {
		subclasses = defaults.Subclasses
	}

	languages := options.Languages
	if len(languages) == 0 {
		languages = defaults.Languages
	}

	for _, language := range languages {
		if !IsLanguage(language) {
			return "", fmt.Errorf("%w: wikidata language code [%s] is invalid", ErrInvalidLanguage, language)
		}
	}

	codes := make([]string, 0, len(subclasses))
	for _, code := range subclasses {
		codes = append(codes, "wd:"+ResolveSubclass(code))
	}

	pattern := escapeString("^" + regexp.QuoteMeta(address) + "$")

	var sb strings.Builder

	sb.WriteString("SELECT DISTINCT ?place ?location ?distance ?placeDescription")

	for _, language := range languages {
		sb.WriteString(" ?name_" + language)
	}

	sb.WriteString(" WHERE {\n")
	sb.WriteString("  # Search Instance of & Subclasses\n")
	sb.WriteString("  ?place wdt:P31/wdt:P279* ?subclass\n")
	fmt.Fprintf(&sb, "  FILTER (?subclass in (%s))\n", strings.Join(codes, ", "))

	sb.WriteString("\n  # Search by Nearest\n")
	sb.WriteString("  SERVICE wikibase:around {\n")
	sb.WriteString("    ?place wdt:P625 ?location .\n")
	fmt.Fprintf(&sb, "    bd:serviceParam wikibase:center \"%s\"^^geo:wktLiteral .\n", options.Nearest)
	fmt.Fprintf(&sb, "    bd:serviceParam wikibase:radius \"%s\" .\n", spatial.FormatFloat(radius))
	sb.WriteString("    bd:serviceParam wikibase:distance ?distance .\n")
	sb.WriteString("  }\n")

	sb.WriteString("\n  # Filter by Exact Name\n")

	filters := make([]string, 0, len(languages))

	for _, language := range languages {
		fmt.Fprintf(&sb, "  OPTIONAL {?place rdfs:label ?name_%[1]s FILTER (lang(?name_%[1]s) = \"%[1]s\") . }\n", language)

		filters = append(filters, fmt.Sprintf("regex(?name_%s, \"%s\")", language, pattern))
	}

	fmt.Fprintf(&sb, "\n  FILTER (%s) .\n", strings.Join(filters, " || "))

	sb.WriteString("\n  # Get Descriptions\n")
	sb.WriteString("  SERVICE wikibase:label {\n")
	fmt.Fprintf(&sb, "    bd:serviceParam wikibase:language \"%s\"\n", strings.Join(languages, ","))
	sb.WriteString("  }\n")
	sb.WriteString("\n} ORDER BY ASC(?distance)\n")

	return sb.String(), nil
}

// escapeString escapes s for use inside a double quoted SPARQL string.
func escapeString(s string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
	).Replace(s)
}
