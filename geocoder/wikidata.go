// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"github.com/geocode-go/geocode/spatial"
	"github.com/geocode-go/geocode/wikidata"
)

const (
	wikidataSPARQLURL = "https://query.wikidata.org/sparql"
	wikidataAPIURL    = "https://www.wikidata.org/w/api.php"
)

var entityIDRegex = regexp.MustCompile(`entity/(.+)`)

type wikidataProvider struct{}

func (wikidataProvider) Name() string { return "wikidata" }

func (wikidataProvider) Defaults() Options {
	q := wikidata.DefaultQueryOptions()

	return Options{
		Radius:     q.Radius,
		Language:   "en",
		Languages:  q.Languages,
		Subclasses: q.Subclasses,
	}
}

func (wikidataProvider) Credential() Credential { return Credential{} }

func (wikidataProvider) Query(address string, options Options) (string, error) {
	query, err := wikidata.CreateQuery(address, wikidata.QueryOptions{
		Nearest:    options.Nearest,
		Radius:     options.Radius,
		Subclasses: options.Subclasses,
		Languages:  options.Languages,
	})
	if err != nil {
		return "", classify(err)
	}

	return query, nil
}

// Geocode runs the SPARQL query when a nearest point is given. Otherwise it
// searches entities by label and fetches the matching ones.
func (w wikidataProvider) Geocode(ctx context.Context, f Fetcher, address string, options Options) (*Payload, error) {
	if options.Nearest == nil {
		return w.searchEntities(ctx, f, address, options)
	}

	query, err := w.Query(address, options)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("query", query)

	body, err := f.Fetch(ctx, wikidataSPARQLURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	return &Payload{Body: body, Adapter: AdapterFunc(WikidataToGeoJSON)}, nil
}

func (wikidataProvider) Reverse(context.Context, Fetcher, spatial.Point, Options) (*Payload, error) {
	return nil, newError(ErrorTypeUnsupported, nil, "wikidata does not support reverse geocoding")
}

type wikidataAPIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *wikidataAPIError) asError() error {
	return newError(ErrorTypeUpstream, nil, "wikidata: %s: %s", e.Code, e.Info)
}

func (w wikidataProvider) searchEntities(ctx context.Context, f Fetcher, address string, options Options) (*Payload, error) {
	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("format", "json")
	params.Set("type", "item")
	params.Set("language", options.Language)
	params.Set("search", address)

	if options.Limit > 0 {
		params.Set("limit", strconv.Itoa(options.Limit))
	}

	body, err := f.Fetch(ctx, wikidataAPIURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var search struct {
		Search []struct {
			ID string `json:"id"`
		} `json:"search"`
		Error *wikidataAPIError `json:"error"`
	}
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, newError(ErrorTypeMalformedResponse, err, "decoding wikidata search")
	}

	if search.Error != nil {
		return nil, search.Error.asError()
	}

	ids := make([]string, 0, len(search.Search))
	for _, s := range search.Search {
		ids = append(ids, s.ID)
	}

	log.Debug().Str("address", address).Strs("ids", ids).Msg("wikidata search")

	adapter := EntitiesAdapter{IDs: ids}
	if len(ids) == 0 {
		// the search payload has no entities and converts to an empty collection
		return &Payload{Body: body, Adapter: adapter}, nil
	}

	params = url.Values{}
	params.Set("action", "wbgetentities")
	params.Set("format", "json")
	params.Set("ids", strings.Join(ids, "|"))
	params.Set("props", "labels|descriptions|claims")

	body, err = f.Fetch(ctx, wikidataAPIURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	return &Payload{Body: body, Adapter: adapter}, nil
}

type sparqlValue struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype"`
	Lang     string `json:"xml:lang"`
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

// WikidataToGeoJSON converts SPARQL query results into GeoJSON. Every row
// must bind place and location; distance and placeDescription are optional.
// Rows located on other globes than Earth are skipped.
func WikidataToGeoJSON(body []byte, _ Options) (*geojson.FeatureCollection, error) {
	var resp sparqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, newError(ErrorTypeMalformedResponse, err, "decoding wikidata results")
	}

	fc := geojson.NewFeatureCollection()

	for i, binding := range resp.Results.Bindings {
		place, ok := binding["place"]
		if !ok {
			return nil, newError(ErrorTypeMalformedResponse, nil, "wikidata row %d: missing place", i)
		}

		location, ok := binding["location"]
		if !ok {
			return nil, newError(ErrorTypeMalformedResponse, nil, "wikidata row %d: missing location", i)
		}

		if !onEarth(location.Value) {
			continue
		}

		p, err := spatial.ParsePoint(location.Value)
		if err != nil {
			return nil, newError(ErrorTypeMalformedResponse, err, "wikidata row %d", i)
		}

		feature := geojson.NewFeature(p.Orb())

		id := place.Value
		if m := entityIDRegex.FindStringSubmatch(place.Value); m != nil {
			id = m[1]
		}

		feature.ID = id
		feature.Properties["id"] = id

		if distance, ok := binding["distance"]; ok {
			d, err := strconv.ParseFloat(distance.Value, 64)
			if err != nil {
				return nil, newError(ErrorTypeMalformedResponse, err, "wikidata row %d: distance", i)
			}

			feature.Properties["distance"] = d
		}

		if description, ok := binding["placeDescription"]; ok {
			feature.Properties["description"] = description.Value
		}

		for key, value := range binding {
			if lang, ok := strings.CutPrefix(key, "name_"); ok {
				feature.Properties["name:"+lang] = value.Value
			}
		}

		fc.Append(feature)
	}

	return fc, nil
}

type wikidataText struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

type wikidataEntity struct {
	ID           string                  `json:"id"`
	Labels       map[string]wikidataText `json:"labels"`
	Descriptions map[string]wikidataText `json:"descriptions"`
	Claims       map[string][]struct {
		Mainsnak struct {
			Snaktype  string `json:"snaktype"`
			Datavalue struct {
				Value json.RawMessage `json:"value"`
				Type  string          `json:"type"`
			} `json:"datavalue"`
		} `json:"mainsnak"`
	} `json:"claims"`
}

type globeCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Globe     string  `json:"globe"`
}

// earthGlobe is the entity used by Wikidata for coordinates on Earth.
const earthGlobe = "http://www.wikidata.org/entity/Q2"

// onEarth reports whether a WKT literal is on Earth. Wikidata prefixes the
// literal with the globe IRI, as in "<http://www.wikidata.org/entity/Q405> Point(1 2)",
// for any other body and omits it for Earth.
func onEarth(literal string) bool {
	rest, ok := strings.CutPrefix(strings.TrimSpace(literal), "<")
	if !ok {
		return true
	}

	globe, _, ok := strings.Cut(rest, ">")

	return ok && globe == earthGlobe
}

// coordinates returns the first Earth coordinate location (P625) of the entity.
func (e wikidataEntity) coordinates() (spatial.Point, bool) {
	for _, claim := range e.Claims["P625"] {
		snak := claim.Mainsnak
		if snak.Snaktype != "value" || snak.Datavalue.Type != "globecoordinate" {
			continue
		}

		var c globeCoordinate
		if err := json.Unmarshal(snak.Datavalue.Value, &c); err != nil {
			continue
		}

		if c.Globe != "" && c.Globe != earthGlobe {
			continue
		}

		return spatial.Point{Lng: c.Longitude, Lat: c.Latitude}, true
	}

	return spatial.Point{}, false
}

// EntitiesAdapter converts a wbgetentities response into GeoJSON. Features
// follow the order of IDs, or the entity id order when IDs is empty. Entities
// without a coordinate location are left out.
type EntitiesAdapter struct {
	IDs []string
}

// ToGeoJSON implements Adapter.
func (a EntitiesAdapter) ToGeoJSON(body []byte, options Options) (*geojson.FeatureCollection, error) {
	var resp struct {
		Entities map[string]wikidataEntity `json:"entities"`
		Error    *wikidataAPIError         `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, newError(ErrorTypeMalformedResponse, err, "decoding wikidata entities")
	}

	if resp.Error != nil {
		return nil, resp.Error.asError()
	}

	ids := a.IDs
	if len(ids) == 0 {
		for id := range resp.Entities {
			ids = append(ids, id)
		}

		slices.Sort(ids)
	}

	fc := geojson.NewFeatureCollection()

	for _, id := range ids {
		entity, ok := resp.Entities[id]
		if !ok {
			continue
		}

		p, ok := entity.coordinates()
		if !ok {
			continue
		}

		feature := geojson.NewFeature(p.Orb())
		feature.ID = id
		feature.Properties["id"] = id

		for lang, label := range entity.Labels {
			if len(options.Languages) == 0 || slices.Contains(options.Languages, lang) {
				feature.Properties["name:"+lang] = label.Value
			}
		}

		if d, ok := entity.Descriptions[options.Language]; ok {
			feature.Properties["description"] = d.Value
		}

		fc.Append(feature)
	}

	return fc, nil
}
