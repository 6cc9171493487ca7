package transit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendsAPIKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		json.NewEncoder(w).Encode(PlacesResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.Places(context.Background(), "chatelet")
	assert.NoError(t, err)
}

func TestClientAuthRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key")
	_, err := client.Places(context.Background(), "chatelet")

	require.Error(t, err)
	kind, ok := ErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindAuthRejected, kind)
	assert.Contains(t, err.Error(), "PARIGO_PRIM_API_KEY")
}

func TestClientRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(PlacesResponse{Places: []Place{{ID: "SA:1"}}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key")
	places, err := client.Places(context.Background(), "chatelet")

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	require.Len(t, places, 1)
	assert.Equal(t, "SA:1", places[0].ID)
}

func TestClientMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "key")
	_, err := client.LineReports(context.Background(), "Metro")

	require.Error(t, err)
	kind, ok := ErrorKindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindMalformedPayload, kind)
}

func TestJourneysKeepsRawCoordinateSeparator(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(JourneysResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key")
	_, err := client.Journeys(context.Background(), "2.347;48.858", "2.237;48.892", 6)

	require.NoError(t, err)
	assert.Equal(t, "from=2.347;48.858&to=2.237;48.892&count=6", rawQuery)
}

func TestAllStopAreasPaginates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("start_page")

		var stopAreas []StopArea
		if page == "0" {
			for i := 0; i < stopAreasPageSize; i++ {
				stopAreas = append(stopAreas, StopArea{ID: fmt.Sprintf("SA:%d", i)})
			}
		} else {
			stopAreas = []StopArea{{ID: "SA:last"}}
		}

		json.NewEncoder(w).Encode(StopAreasResponse{StopAreas: stopAreas})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key")
	stopAreas, err := client.AllStopAreas(context.Background(), "Metro")

	require.NoError(t, err)
	assert.Len(t, stopAreas, stopAreasPageSize+1)
	assert.Equal(t, "SA:last", stopAreas[len(stopAreas)-1].ID)
}
