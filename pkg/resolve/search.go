package resolve

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/parigo/parigo/pkg/elastic_client"
	"github.com/parigo/parigo/pkg/feed"
)

type StationSearcher interface {
	SearchStations(ctx context.Context, query string, mode string, limit int) ([]feed.StationRecord, error)
}

// ElasticStationSearcher runs a fuzzy multi_match over the station
// index, optionally filtered to a mode extracted from the query.
type ElasticStationSearcher struct {
	IndexName string
}

func NewElasticStationSearcher() *ElasticStationSearcher {
	return &ElasticStationSearcher{IndexName: elastic_client.StationsIndex}
}

func (s *ElasticStationSearcher) SearchStations(ctx context.Context, query string, mode string, limit int) ([]feed.StationRecord, error) {
	boolQuery := map[string]interface{}{
		"must": []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":     query,
					"fields":    []string{"name^3", "name_normalized^2", "label", "city"},
					"fuzziness": "AUTO",
				},
			},
		},
	}

	if mode != "" {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{
				"term": map[string]interface{}{"mode": mode},
			},
		}
	}

	body, err := json.Marshal(map[string]interface{}{
		"size":  limit,
		"query": map[string]interface{}{"bool": boolQuery},
	})
	if err != nil {
		return nil, err
	}

	hits, err := elastic_client.Search(ctx, s.IndexName, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	records := make([]feed.StationRecord, 0, len(hits))
	for _, hit := range hits {
		var record feed.StationRecord
		if err := json.Unmarshal(hit.Source, &record); err != nil {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}
