package embedding

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/parigo/parigo/pkg/redis_client"
	"github.com/parigo/parigo/pkg/util"
)

// Embedder turns text into a semantic vector. The pipeline treats it as an
// opaque function - a failure skips the record, never the batch.
type Embedder interface {
	Embed(ctx context.Context, text string, inputType string) ([]float32, error)
}

const InputTypePassage = "passage"
const InputTypeQuery = "query"

const defaultEndpoint = "https://integrate.api.nvidia.com/v1/embeddings"
const defaultModel = "nvidia/nv-embedqa-e5-v5"
const requestTimeout = 10 * time.Second

// Vectors for text longer than this are not cached.
const cacheTextLimit = 2000

type NvidiaEmbedder struct {
	endpoint string
	apiKey   string
	model    string

	httpClient *http.Client
	cache      *cache.Cache[string]
}

func NewNvidiaEmbedder(endpoint string, apiKey string, model string) *NvidiaEmbedder {
	return &NvidiaEmbedder{
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func NewNvidiaEmbedderFromEnvironment() (*NvidiaEmbedder, error) {
	apiKey := util.GetEnvironmentVariable("PARIGO_NVIDIA_API_KEY", "")
	if apiKey == "" {
		return nil, errors.New("NVIDIA API key not set (PARIGO_NVIDIA_API_KEY)")
	}

	endpoint := util.GetEnvironmentVariable("PARIGO_NVIDIA_ENDPOINT", defaultEndpoint)
	model := util.GetEnvironmentVariable("PARIGO_NVIDIA_MODEL", defaultModel)

	return NewNvidiaEmbedder(endpoint, apiKey, model), nil
}

// SetupCache attaches a redis backed vector cache. Requires
// redis_client.Connect to have run.
func (e *NvidiaEmbedder) SetupCache() {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(24*time.Hour))

	e.cache = cache.New[string](redisStore)
}

func (e *NvidiaEmbedder) Embed(ctx context.Context, text string, inputType string) ([]float32, error) {
	if text == "" {
		return nil, nil
	}

	cacheKey := fmt.Sprintf("parigo:embedding:%s:%x", inputType, sha256.Sum256([]byte(text)))
	cacheable := e.cache != nil && len(text) <= cacheTextLimit

	if cacheable {
		if cached, err := e.cache.Get(ctx, cacheKey); err == nil {
			var vector []float32
			if err := json.Unmarshal([]byte(cached), &vector); err == nil {
				return vector, nil
			}
		}
	}

	vector, err := e.fetch(ctx, text, inputType)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if vectorJSON, err := json.Marshal(vector); err == nil {
			e.cache.Set(ctx, cacheKey, string(vectorJSON))
		}
	}

	return vector, nil
}

func (e *NvidiaEmbedder) fetch(ctx context.Context, text string, inputType string) ([]float32, error) {
	payload := map[string]interface{}{
		"input":           []string{text},
		"model":           e.model,
		"input_type":      inputType,
		"encoding_format": "float",
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Authorization", fmt.Sprintf("Bearer %s", e.apiKey))
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := e.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusUnauthorized {
		return nil, errors.New("embedding API rejected the API key (401) - check PARIGO_NVIDIA_API_KEY")
	}
	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		return nil, fmt.Errorf("embedding API returned %s: %s", response.Status, util.TrimString(string(body), 200))
	}

	var decoded struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	if len(decoded.Data) == 0 || len(decoded.Data[0].Embedding) == 0 {
		return nil, errors.New("embedding API returned no vector")
	}

	return decoded.Data[0].Embedding, nil
}
