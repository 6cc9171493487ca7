package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/parigo/parigo/pkg/channel"
	"github.com/parigo/parigo/pkg/transit"
	"github.com/parigo/parigo/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

type LineReportsAPI interface {
	LineReports(ctx context.Context, physicalMode string) (*transit.LineReportsResponse, error)
}

// DisruptionProducer polls line reports per mode group and republishes them
// as disruption records, each group prefixed by a scoped CLEAR so the sink
// supersedes the previous generation instead of accumulating stale
// documents.
type DisruptionProducer struct {
	Transit   LineReportsAPI
	Publisher channel.Publisher
	Groups    []ModeGroup
	Filter    *DisruptionFilter
}

type lineReportsResult struct {
	physicalMode string
	response     *transit.LineReportsResponse
}

// RunCycle processes every group once. A failing group never aborts the
// others.
func (p *DisruptionProducer) RunCycle(ctx context.Context) {
	for _, group := range p.Groups {
		p.runGroup(ctx, group)
	}
}

func (p *DisruptionProducer) runGroup(ctx context.Context, group ModeGroup) {
	log.Info().Str("mode", group.Name).Msg("Fetching disruptions")

	fetchPool := pool.NewWithResults[*lineReportsResult]()

	for _, physicalMode := range group.PhysicalModes {
		physicalMode := physicalMode

		fetchPool.Go(func() *lineReportsResult {
			response, err := p.Transit.LineReports(ctx, physicalMode)
			if err != nil {
				log.Error().Err(err).Str("mode", group.Name).Str("physicalMode", physicalMode).
					Msg("Failed to fetch line reports")
				return nil
			}

			return &lineReportsResult{physicalMode: physicalMode, response: response}
		})
	}

	results := fetchPool.Wait()

	var fetched []*lineReportsResult
	for _, result := range results {
		if result != nil {
			fetched = append(fetched, result)
		}
	}

	// Every sub-mode failed - wiping the index now would leave the mode
	// empty until the next cycle, so the clear is withheld too.
	if len(fetched) == 0 {
		log.Warn().Str("mode", group.Name).Msg("No line reports fetched, keeping previous generation")
		return
	}

	if err := p.publishClear(group.Name); err != nil {
		log.Error().Err(err).Str("mode", group.Name).Msg("Failed to publish clear")
		return
	}

	published := 0
	seen := map[string]bool{}

	for _, result := range fetched {
		for _, disruption := range result.response.Disruptions {
			disruption := disruption

			if !p.Filter.Matches(&disruption) {
				continue
			}
			if seen[disruption.ID] {
				continue
			}
			seen[disruption.ID] = true

			record := buildDisruptionRecord(&disruption, group.Name, result.physicalMode)

			payload, err := json.Marshal(record)
			if err != nil {
				log.Error().Err(err).Str("disruption", record.ID).Msg("Failed to encode disruption record")
				continue
			}

			if err := p.Publisher.Publish(DisruptionsTopic, record.UniquenessKey(), payload); err != nil {
				log.Error().Err(err).Str("disruption", record.ID).Msg("Failed to publish disruption record")
				continue
			}

			published++
		}
	}

	log.Info().Str("mode", group.Name).Int("published", published).Msg("Published disruption records")
}

func (p *DisruptionProducer) publishClear(mode string) error {
	payload, _ := json.Marshal(ControlMessage{Control: ControlClear, Mode: mode})

	return p.Publisher.Publish(DisruptionsTopic, "", payload)
}

func buildDisruptionRecord(disruption *transit.Disruption, mode string, physicalMode string) *DisruptionRecord {
	var title, description string
	for _, message := range disruption.Messages {
		channels := message.Channel.Types

		if util.ContainsString(channels, "title") && title == "" {
			title = util.CleanDisruptionText(message.Text)
		} else if util.ContainsString(channels, "web") && description == "" {
			description = util.CleanDisruptionText(message.Text)
		}
	}

	var period Period
	if len(disruption.ApplicationPeriods) > 0 {
		period = Period{
			Start: disruption.ApplicationPeriods[0].Begin,
			End:   disruption.ApplicationPeriods[0].End,
		}
	}

	return &DisruptionRecord{
		ID:           disruption.ID,
		Mode:         mode,
		PhysicalMode: physicalMode,
		Status:       disruption.Status,
		Severity:     disruption.Severity.Name,
		Title:        title,
		Description:  description,
		Period:       period,
		UpdatedAt:    time.Now().UTC(),
	}
}
