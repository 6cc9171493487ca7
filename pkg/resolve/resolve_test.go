package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/parigo/parigo/pkg/feed"
	"github.com/parigo/parigo/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	records   []feed.StationRecord
	err       error
	lastQuery string
	lastMode  string
}

func (f *fakeSearcher) SearchStations(_ context.Context, query string, mode string, _ int) ([]feed.StationRecord, error) {
	f.lastQuery = query
	f.lastMode = mode
	return f.records, f.err
}

type fakePlaces struct {
	places []transit.Place
	err    error
}

func (f *fakePlaces) Places(_ context.Context, _ string) ([]transit.Place, error) {
	return f.places, f.err
}

func TestResolveBlockedModeKeywords(t *testing.T) {
	resolver := &Resolver{Searcher: &fakeSearcher{}}

	for _, name := range []string{"Tramway T3a", "tram 3", "gare TER", "Transilien L"} {
		_, err := resolver.Resolve(context.Background(), name)
		assert.ErrorIs(t, err, ErrBlockedMode, name)
	}

	assert.Equal(t, "Tram and TER connections are not supported.", ErrBlockedMode.Error())
}

func TestResolveAppliesSubstitutions(t *testing.T) {
	searcher := &fakeSearcher{records: []feed.StationRecord{
		{ID: "SA:lyon", Name: "Gare de Lyon", Mode: "rer"},
	}}
	resolver := &Resolver{Searcher: searcher}

	resolved, err := resolver.Resolve(context.Background(), "gare de lion")
	require.NoError(t, err)

	assert.Equal(t, "gare de lyon", searcher.lastQuery)
	assert.Equal(t, "Gare de Lyon", resolved.Name)
}

func TestResolveExtractsModeHint(t *testing.T) {
	searcher := &fakeSearcher{records: []feed.StationRecord{
		{ID: "SA:1", Name: "Châtelet", Mode: "metro"},
	}}
	resolver := &Resolver{Searcher: searcher}

	_, err := resolver.Resolve(context.Background(), "metro 1 Châtelet")
	require.NoError(t, err)

	assert.Equal(t, "chatelet", searcher.lastQuery)
	assert.Equal(t, "metro", searcher.lastMode)
}

func TestResolveTrailingModeHint(t *testing.T) {
	searcher := &fakeSearcher{records: []feed.StationRecord{
		{ID: "SA:2", Name: "République", Mode: "metro"},
	}}
	resolver := &Resolver{Searcher: searcher}

	_, err := resolver.Resolve(context.Background(), "République metro")
	require.NoError(t, err)

	assert.Equal(t, "republique", searcher.lastQuery)
	assert.Equal(t, "metro", searcher.lastMode)
}

func TestResolveReturnsTopHitAndCandidates(t *testing.T) {
	searcher := &fakeSearcher{records: []feed.StationRecord{
		{ID: "SA:1", Name: "Châtelet", Mode: "metro", Coordinates: &feed.Coordinates{Lat: 48.858, Lon: 2.347}},
		{ID: "SA:2", Name: "Châtelet - Les Halles", Mode: "rer"},
	}}
	resolver := &Resolver{Searcher: searcher}

	resolved, err := resolver.Resolve(context.Background(), "chatelet")
	require.NoError(t, err)

	assert.Equal(t, "SA:1", resolved.ID)
	assert.Equal(t, "metro", resolved.Mode)
	require.NotNil(t, resolved.Coordinates)
	require.Len(t, resolved.Candidates, 2)
	assert.Equal(t, "Châtelet - Les Halles", resolved.Candidates[1].Name)
}

func TestResolvePlacesFallbackPrefersStopAreas(t *testing.T) {
	resolver := &Resolver{
		Searcher: &fakeSearcher{},
		Places: &fakePlaces{places: []transit.Place{
			{ID: "admin:paris", Name: "Paris", Quality: 90, EmbeddedType: "administrative_region"},
			{ID: "SA:3", Name: "Bercy", Quality: 60, EmbeddedType: "stop_area",
				StopArea: &transit.StopArea{Coord: &transit.Coord{Lat: "48.84", Lon: "2.38"}}},
		}},
	}

	resolved, err := resolver.Resolve(context.Background(), "bercy")
	require.NoError(t, err)

	assert.Equal(t, "SA:3", resolved.ID)
	assert.Equal(t, "unknown", resolved.Mode)
	require.NotNil(t, resolved.Coordinates)
	assert.InDelta(t, 48.84, resolved.Coordinates.Lat, 0.0001)
}

func TestResolveFallsBackWhenSearchErrors(t *testing.T) {
	resolver := &Resolver{
		Searcher: &fakeSearcher{err: errors.New("index unavailable")},
		Places: &fakePlaces{places: []transit.Place{
			{ID: "SA:4", Name: "Nation", Quality: 80, EmbeddedType: "stop_area"},
		}},
	}

	resolved, err := resolver.Resolve(context.Background(), "nation")
	require.NoError(t, err)
	assert.Equal(t, "SA:4", resolved.ID)
}

func TestResolvePlacesFailureKeepsErrorKind(t *testing.T) {
	authErr := &transit.Error{
		Kind:    transit.KindAuthRejected,
		Message: "PRIM API rejected the key (check PARIGO_PRIM_API_KEY)",
	}
	resolver := &Resolver{
		Searcher: &fakeSearcher{},
		Places:   &fakePlaces{err: authErr},
	}

	_, err := resolver.Resolve(context.Background(), "nation")
	require.Error(t, err)

	assert.NotErrorIs(t, err, ErrNotFound)
	kind, ok := transit.ErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, transit.KindAuthRejected, kind)
	assert.Contains(t, err.Error(), "PARIGO_PRIM_API_KEY")
}

func TestResolveNotFound(t *testing.T) {
	resolver := &Resolver{Searcher: &fakeSearcher{}, Places: &fakePlaces{}}

	_, err := resolver.Resolve(context.Background(), "xyzzy")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "No station found matching that name. ask the user for clarification.", ErrNotFound.Error())
}
