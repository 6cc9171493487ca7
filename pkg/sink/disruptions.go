package sink

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/cenkalti/backoff/v4"
	"github.com/parigo/parigo/pkg/elastic_client"
	"github.com/parigo/parigo/pkg/embedding"
	"github.com/parigo/parigo/pkg/feed"
	"github.com/rs/zerolog/log"
)

const defaultClearRetryWait = 5 * time.Second
const defaultClearRetries = 3

// DisruptionSink indexes disruption records with their semantic vector and
// honours clear-by-mode control messages. Deliveries that fail against the
// store are Rejected so the harness retries them; deliveries that fail to
// embed are skipped, one bad vector must not stall the stream.
type DisruptionSink struct {
	Store    Store
	Embedder embedding.Embedder

	IndexName string

	ClearRetryWait time.Duration
	ClearRetries   uint64
}

func NewDisruptionSink(store Store, embedder embedding.Embedder) *DisruptionSink {
	return &DisruptionSink{
		Store:     store,
		Embedder:  embedder,
		IndexName: elastic_client.DisruptionsIndex,
	}
}

type indexedDisruption struct {
	feed.DisruptionRecord
	EmbeddingVector []float32 `json:"embedding_vector"`
}

func (s *DisruptionSink) Consume(batch rmq.Deliveries) {
	for _, delivery := range batch {
		s.consumeDelivery(delivery)
	}
}

func (s *DisruptionSink) consumeDelivery(delivery rmq.Delivery) {
	payload := []byte(delivery.Payload())

	if control, ok := feed.ParseControlMessage(payload); ok {
		handleClear(delivery, control, s.Store, s.IndexName, s.ClearRetryWait, s.ClearRetries)
		return
	}

	var record feed.DisruptionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		log.Error().Err(err).Msg("Undecodable disruption payload, dropping")
		ack(delivery)
		return
	}

	text := strings.TrimSpace(record.Title + " " + record.Description)

	vector, err := s.Embedder.Embed(context.Background(), text, embedding.InputTypePassage)
	if err != nil || len(vector) == 0 {
		log.Warn().Err(err).Str("disruption", record.ID).Str("mode", record.Mode).
			Msg("Skipped indexing (no vector)")
		ack(delivery)
		return
	}

	document, err := json.Marshal(indexedDisruption{DisruptionRecord: record, EmbeddingVector: vector})
	if err != nil {
		log.Error().Err(err).Str("disruption", record.ID).Msg("Failed to encode disruption document")
		ack(delivery)
		return
	}

	s.Store.Upsert(s.IndexName, record.UniquenessKey(), document, func(err error) {
		if err != nil {
			reject(delivery)
			return
		}
		ack(delivery)
	})
}

// handleClear drains queued writes, then runs the scoped delete with a
// fixed backoff. The flush is the ordering barrier: buffered pre-clear
// upserts must land before the delete or they survive it as stale
// documents. On persistent failure the delivery is Rejected so the clear
// is replayed - the records that follow it are idempotent upserts,
// replaying them is safe.
func handleClear(delivery rmq.Delivery, control *feed.ControlMessage, store Store, indexName string, retryWait time.Duration, retries uint64) {
	if retryWait == 0 {
		retryWait = defaultClearRetryWait
	}
	if retries == 0 {
		retries = defaultClearRetries
	}

	if control.Mode == "" {
		log.Info().Str("index", indexName).Msg("Clearing all documents")
	} else {
		log.Info().Str("index", indexName).Str("mode", control.Mode).Msg("Clearing documents for mode")
	}

	err := backoff.Retry(func() error {
		if err := store.Flush(context.Background()); err != nil {
			return err
		}
		return store.DeleteByMode(context.Background(), indexName, control.Mode)
	}, backoff.WithMaxRetries(backoff.NewConstantBackOff(retryWait), retries))

	if err != nil {
		log.Error().Err(err).Str("index", indexName).Str("mode", control.Mode).Msg("Clear failed")
		reject(delivery)
		return
	}

	ack(delivery)
}

func ack(delivery rmq.Delivery) {
	if err := delivery.Ack(); err != nil {
		log.Error().Err(err).Msg("Failed to ack delivery")
	}
}

func reject(delivery rmq.Delivery) {
	if err := delivery.Reject(); err != nil {
		log.Error().Err(err).Msg("Failed to reject delivery")
	}
}
