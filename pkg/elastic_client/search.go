package elastic_client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type SearchHit struct {
	ID     string
	Score  float64
	Source json.RawMessage
}

type searchEnvelope struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Score  float64         `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a raw query body against an index and returns the decoded hits.
func Search(ctx context.Context, index string, body io.Reader) ([]SearchHit, error) {
	searchReq := esapi.SearchRequest{
		Index: []string{index},
		Body:  body,
	}

	resp, err := searchReq.Do(ctx, Client)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.IsError() {
		responseBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search failed: [%s] %s", resp.Status(), string(responseBytes))
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		hits = append(hits, SearchHit{ID: hit.ID, Score: hit.Score, Source: hit.Source})
	}

	return hits, nil
}

// KNNSearch runs a k-nearest-neighbour query over a dense vector field.
func KNNSearch(ctx context.Context, index string, field string, vector []float32, k int, numCandidates int) ([]SearchHit, error) {
	body := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          field,
			"query_vector":   vector,
			"k":              k,
			"num_candidates": numCandidates,
		},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	return Search(ctx, index, strings.NewReader(string(bodyBytes)))
}
