package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedEmptyText(t *testing.T) {
	embedder := NewNvidiaEmbedder("http://unused", "key", "model")

	vector, err := embedder.Embed(context.Background(), "", InputTypePassage)
	assert.NoError(t, err)
	assert.Nil(t, vector)
}

func TestEmbedDecodesVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "passage", payload["input_type"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer server.Close()

	embedder := NewNvidiaEmbedder(server.URL, "test-key", "model")
	vector, err := embedder.Embed(context.Background(), "Ligne 14 interrompue", InputTypePassage)

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
}

func TestEmbedAuthRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	embedder := NewNvidiaEmbedder(server.URL, "bad", "model")
	_, err := embedder.Embed(context.Background(), "text", InputTypeQuery)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PARIGO_NVIDIA_API_KEY")
}
