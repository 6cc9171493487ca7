package feed

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/parigo/parigo/pkg/channel"
	"github.com/parigo/parigo/pkg/transit"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

type StopAreasAPI interface {
	AllStopAreas(ctx context.Context, commercialMode string) ([]transit.StopArea, error)
}

// StationProducer polls the stop area catalogue per mode group onto the
// mode scoped station topics, clear-then-repopulate like the disruption
// producer.
type StationProducer struct {
	Transit   StopAreasAPI
	Publisher channel.Publisher
	Groups    []ModeGroup
}

type stopAreasResult struct {
	commercialMode string
	stopAreas      []transit.StopArea
}

func (p *StationProducer) RunCycle(ctx context.Context) {
	for _, group := range p.Groups {
		p.runGroup(ctx, group)
	}
}

func (p *StationProducer) runGroup(ctx context.Context, group ModeGroup) {
	log.Info().Str("mode", group.Name).Msg("Fetching stop areas")

	fetchPool := pool.NewWithResults[*stopAreasResult]()

	for _, commercialMode := range group.CommercialModes {
		commercialMode := commercialMode

		fetchPool.Go(func() *stopAreasResult {
			stopAreas, err := p.Transit.AllStopAreas(ctx, commercialMode)
			if err != nil {
				log.Error().Err(err).Str("mode", group.Name).Str("commercialMode", commercialMode).
					Msg("Failed to fetch stop areas")
				return nil
			}

			return &stopAreasResult{commercialMode: commercialMode, stopAreas: stopAreas}
		})
	}

	results := fetchPool.Wait()

	var fetched []*stopAreasResult
	for _, result := range results {
		if result != nil {
			fetched = append(fetched, result)
		}
	}

	if len(fetched) == 0 {
		log.Warn().Str("mode", group.Name).Msg("No stop areas fetched, keeping previous generation")
		return
	}

	topic := StationsTopic(group.Name)

	if err := p.publishClear(topic, group.Name); err != nil {
		log.Error().Err(err).Str("mode", group.Name).Msg("Failed to publish clear")
		return
	}

	published := 0
	seen := map[string]bool{}

	for _, result := range fetched {
		for _, stopArea := range result.stopAreas {
			if stopArea.ID == "" || stopArea.Name == "" {
				continue
			}
			if seen[stopArea.ID] {
				continue
			}
			seen[stopArea.ID] = true

			record := buildStationRecord(&stopArea, group.Name)

			payload, err := json.Marshal(record)
			if err != nil {
				log.Error().Err(err).Str("station", record.ID).Msg("Failed to encode station record")
				continue
			}

			if err := p.Publisher.Publish(topic, record.UniquenessKey(), payload); err != nil {
				log.Error().Err(err).Str("station", record.ID).Msg("Failed to publish station record")
				continue
			}

			published++
		}
	}

	log.Info().Str("mode", group.Name).Int("published", published).Msg("Published station records")
}

func (p *StationProducer) publishClear(topic string, mode string) error {
	payload, _ := json.Marshal(ControlMessage{Control: ControlClear, Mode: mode})

	return p.Publisher.Publish(topic, "", payload)
}

func buildStationRecord(stopArea *transit.StopArea, mode string) *StationRecord {
	record := &StationRecord{
		ID:           stopArea.ID,
		Name:         stopArea.Name,
		Label:        stopArea.Label,
		Mode:         mode,
		EmbeddedType: "stop_area",
		Coordinates:  parseCoordinates(stopArea.Coord),
	}

	if len(stopArea.AdministrativeRegions) > 0 {
		record.City = stopArea.AdministrativeRegions[0].Name
	}

	return record
}

// parseCoordinates returns nil when the upstream coordinates are missing or
// unparseable - such stations stay resolvable by name but are unusable for
// journey planning.
func parseCoordinates(coord *transit.Coord) *Coordinates {
	if coord == nil {
		return nil
	}

	lat, latErr := strconv.ParseFloat(coord.Lat, 64)
	lon, lonErr := strconv.ParseFloat(coord.Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil
	}

	return &Coordinates{Lat: lat, Lon: lon}
}
