package resolve

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/parigo/parigo/pkg/feed"
	"github.com/parigo/parigo/pkg/transit"
	"github.com/parigo/parigo/pkg/util"
	"github.com/rs/zerolog/log"
)

// Error texts are part of the caller contract, do not reword them.
var (
	ErrBlockedMode = errors.New("Tram and TER connections are not supported.")
	ErrNotFound    = errors.New("No station found matching that name. ask the user for clarification.")
)

const maxCandidates = 5

// blockedKeywords are matched as folded tokens so "Tramway T3a" and
// "tram 3" both reject.
var blockedKeywords = map[string]bool{
	"tram":       true,
	"tramway":    true,
	"ter":        true,
	"transilien": true,
}

// substitutions repair the misspellings we actually see in queries.
var substitutions = map[string]string{
	"st":      "saint",
	"ste":     "sainte",
	"lion":    "lyon",
	"defence": "defense",
	"chatele": "chatelet",
}

var modeHints = map[string]bool{
	"metro": true,
	"bus":   true,
	"rer":   true,
}

type Candidate struct {
	Name string `json:"name" groups:"basic"`
	Mode string `json:"mode" groups:"basic"`
}

type ResolvedStation struct {
	ID          string            `json:"id" groups:"basic"`
	Name        string            `json:"name" groups:"basic"`
	Mode        string            `json:"mode" groups:"basic"`
	Coordinates *feed.Coordinates `json:"coordinates,omitempty" groups:"basic"`
	Candidates  []Candidate       `json:"candidates,omitempty" groups:"basic"`
}

type PlacesAPI interface {
	Places(ctx context.Context, query string) ([]transit.Place, error)
}

// Resolver turns free text station names into canonical station
// identities, searching the station index first and falling back to the
// upstream places lookup when the index has nothing.
type Resolver struct {
	Searcher StationSearcher
	Places   PlacesAPI
}

func (r *Resolver) Resolve(ctx context.Context, name string) (*ResolvedStation, error) {
	folded := util.NormalizeText(name)
	if folded == "" {
		return nil, ErrNotFound
	}

	tokens := strings.Fields(folded)
	for _, token := range tokens {
		if blockedKeywords[token] {
			return nil, ErrBlockedMode
		}
	}

	for index, token := range tokens {
		if replacement, ok := substitutions[token]; ok {
			tokens[index] = replacement
		}
	}

	tokens, modeHint := extractModeHint(tokens)
	query := strings.Join(tokens, " ")
	if query == "" {
		query = folded
	}

	if r.Searcher != nil {
		records, err := r.Searcher.SearchStations(ctx, query, modeHint, maxCandidates)
		if err != nil {
			log.Error().Err(err).Str("query", query).Msg("Station index search failed")
		} else if len(records) > 0 {
			return resolvedFromRecords(records), nil
		}
	}

	return r.resolveFromPlaces(ctx, name)
}

// extractModeHint strips a leading or trailing mode token (and an
// adjacent short line token like "1" or "a") so "metro 1 chatelet"
// searches for "chatelet" filtered to metro.
func extractModeHint(tokens []string) ([]string, string) {
	if len(tokens) < 2 {
		return tokens, ""
	}

	if modeHints[tokens[0]] {
		hint := tokens[0]
		rest := tokens[1:]
		if len(rest) > 1 && isLineToken(rest[0]) {
			rest = rest[1:]
		}
		return rest, hint
	}

	last := len(tokens) - 1
	if modeHints[tokens[last]] {
		hint := tokens[last]
		rest := tokens[:last]
		if len(rest) > 1 && isLineToken(rest[len(rest)-1]) {
			rest = rest[:len(rest)-1]
		}
		return rest, hint
	}

	return tokens, ""
}

func isLineToken(token string) bool {
	if len(token) > 2 {
		return false
	}
	for _, character := range token {
		if (character < '0' || character > '9') && (character < 'a' || character > 'z') {
			return false
		}
	}
	return true
}

func resolvedFromRecords(records []feed.StationRecord) *ResolvedStation {
	top := records[0]

	resolved := &ResolvedStation{
		ID:          top.ID,
		Name:        top.Name,
		Mode:        top.Mode,
		Coordinates: top.Coordinates,
	}

	for _, record := range records {
		if len(resolved.Candidates) == maxCandidates {
			break
		}
		resolved.Candidates = append(resolved.Candidates, Candidate{Name: record.Name, Mode: record.Mode})
	}

	return resolved
}

func (r *Resolver) resolveFromPlaces(ctx context.Context, name string) (*ResolvedStation, error) {
	if r.Places == nil {
		return nil, ErrNotFound
	}

	// Upstream failures keep their kind - a broken API key must not read
	// as "no such station". Only a genuinely empty result is a not-found.
	places, err := r.Places.Places(ctx, name)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("Places fallback failed")
		return nil, err
	}
	if len(places) == 0 {
		return nil, ErrNotFound
	}

	sort.SliceStable(places, func(i, j int) bool {
		iStop := places[i].EmbeddedType == "stop_area"
		jStop := places[j].EmbeddedType == "stop_area"
		if iStop != jStop {
			return iStop
		}
		return places[i].Quality > places[j].Quality
	})

	top := places[0]

	resolved := &ResolvedStation{
		ID:   top.ID,
		Name: top.Name,
		Mode: "unknown",
	}

	if top.StopArea != nil {
		resolved.Coordinates = placeCoordinates(top.StopArea.Coord)
	}

	for _, place := range places {
		if len(resolved.Candidates) == maxCandidates {
			break
		}
		resolved.Candidates = append(resolved.Candidates, Candidate{Name: place.Name, Mode: "unknown"})
	}

	return resolved, nil
}

func placeCoordinates(coord *transit.Coord) *feed.Coordinates {
	if coord == nil {
		return nil
	}

	lat, latErr := strconv.ParseFloat(coord.Lat, 64)
	lon, lonErr := strconv.ParseFloat(coord.Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil
	}

	return &feed.Coordinates{Lat: lat, Lon: lon}
}
