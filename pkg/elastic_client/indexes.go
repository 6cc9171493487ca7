package elastic_client

import (
	"context"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/rs/zerolog/log"
)

const DisruptionsIndex = "disruptions"
const StationsIndex = "stations"

// EmbeddingVectorDims matches the embedding model output size.
const EmbeddingVectorDims = 1024

const disruptionsMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 1
	},
	"mappings": {
		"properties": {
			"id": {"type": "keyword"},
			"mode": {"type": "keyword"},
			"physical_mode": {"type": "keyword"},
			"status": {"type": "keyword"},
			"severity": {"type": "keyword"},
			"title": {"type": "text"},
			"description": {"type": "text"},
			"period": {"type": "object"},
			"updated_at": {"type": "date"},
			"embedding_vector": {
				"type": "dense_vector",
				"dims": 1024,
				"index": true,
				"similarity": "cosine"
			}
		}
	}
}`

const stationsMapping = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 1
	},
	"mappings": {
		"properties": {
			"id": {"type": "keyword"},
			"mode": {"type": "keyword"},
			"embedded_type": {"type": "keyword"},
			"name": {"type": "text"},
			"name_normalized": {"type": "text"},
			"label": {"type": "text"},
			"city": {"type": "text"},
			"coordinates": {"type": "object"}
		}
	}
}`

// EnsureIndexes creates the disruption and station indexes when they do not
// exist yet. Existing indexes are left untouched - document lifecycle is
// owned by the sinks.
func EnsureIndexes() error {
	indexes := map[string]string{
		DisruptionsIndex: disruptionsMapping,
		StationsIndex:    stationsMapping,
	}

	for indexName, mapping := range indexes {
		exists, err := indexExists(indexName)
		if err != nil {
			return err
		}
		if exists {
			log.Info().Str("index", indexName).Msg("Index already exists")
			continue
		}

		createReq := esapi.IndicesCreateRequest{
			Index: indexName,
			Body:  strings.NewReader(mapping),
		}

		resp, err := createReq.Do(context.Background(), Client)
		if err != nil {
			return err
		}
		responseBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.IsError() {
			log.Error().Str("index", indexName).Str("response", string(responseBytes)).Msg("Failed to create index")
			continue
		}

		log.Info().Str("index", indexName).Msg("Created index")
	}

	return nil
}

func indexExists(indexName string) (bool, error) {
	existsReq := esapi.IndicesExistsRequest{
		Index: []string{indexName},
	}

	resp, err := existsReq.Do(context.Background(), Client)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == 200, nil
}
