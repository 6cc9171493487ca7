package sink

import (
	"encoding/json"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/parigo/parigo/pkg/elastic_client"
	"github.com/parigo/parigo/pkg/feed"
	"github.com/parigo/parigo/pkg/util"
	"github.com/rs/zerolog/log"
)

// StationSink indexes station records with their folded name and honours
// clear-by-mode control messages.
type StationSink struct {
	Store Store

	IndexName string

	ClearRetryWait time.Duration
	ClearRetries   uint64
}

func NewStationSink(store Store) *StationSink {
	return &StationSink{
		Store:     store,
		IndexName: elastic_client.StationsIndex,
	}
}

func (s *StationSink) Consume(batch rmq.Deliveries) {
	for _, delivery := range batch {
		s.consumeDelivery(delivery)
	}
}

func (s *StationSink) consumeDelivery(delivery rmq.Delivery) {
	payload := []byte(delivery.Payload())

	if control, ok := feed.ParseControlMessage(payload); ok {
		handleClear(delivery, control, s.Store, s.IndexName, s.ClearRetryWait, s.ClearRetries)
		return
	}

	var record feed.StationRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		log.Error().Err(err).Msg("Undecodable station payload, dropping")
		ack(delivery)
		return
	}

	if record.ID == "" || record.Name == "" {
		log.Warn().Str("station", record.ID).Msg("Station record missing identity, dropping")
		ack(delivery)
		return
	}

	record.NameNormalized = util.NormalizeText(record.Name)

	document, err := json.Marshal(record)
	if err != nil {
		log.Error().Err(err).Str("station", record.ID).Msg("Failed to encode station document")
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
