package feed

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/parigo/parigo/pkg/channel"
	"github.com/parigo/parigo/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStopAreasAPI struct {
	stopAreas map[string][]transit.StopArea
	errors    map[string]error
}

func (f *fakeStopAreasAPI) AllStopAreas(ctx context.Context, commercialMode string) ([]transit.StopArea, error) {
	if err, ok := f.errors[commercialMode]; ok {
		return nil, err
	}
	return f.stopAreas[commercialMode], nil
}

func TestStationProducerPublishesModeScopedTopic(t *testing.T) {
	publisher := channel.NewMemoryPublisher()
	producer := &StationProducer{
		Transit: &fakeStopAreasAPI{stopAreas: map[string][]transit.StopArea{
			"Metro": {
				{
					ID:    "stop_area:IDFM:71517",
					Name:  "Châtelet",
					Label: "Châtelet (Paris)",
					Coord: &transit.Coord{Lat: "48.858", Lon: "2.347"},
					AdministrativeRegions: []transit.AdministrativeRegion{
						{Name: "Paris"},
					},
				},
			},
		}},
		Publisher: publisher,
		Groups:    []ModeGroup{{Name: "metro", CommercialModes: []string{"Metro"}}},
	}

	producer.RunCycle(context.Background())

	messages := publisher.Messages("stations.metro")
	require.Len(t, messages, 2)

	control, ok := ParseControlMessage(messages[0].Payload)
	require.True(t, ok)
	assert.Equal(t, "metro", control.Mode)

	var record StationRecord
	require.NoError(t, json.Unmarshal(messages[1].Payload, &record))
	assert.Equal(t, "stop_area:IDFM:71517", record.ID)
	assert.Equal(t, "metro", record.Mode)
	assert.Equal(t, "Paris", record.City)
	require.NotNil(t, record.Coordinates)
	assert.InDelta(t, 48.858, record.Coordinates.Lat, 0.0001)
	assert.InDelta(t, 2.347, record.Coordinates.Lon, 0.0001)
	assert.Equal(t, "metro:stop_area:IDFM:71517", messages[1].Key)
}

func TestStationProducerSkipsRecordsWithoutIdentity(t *testing.T) {
	publisher := channel.NewMemoryPublisher()
	producer := &StationProducer{
		Transit: &fakeStopAreasAPI{stopAreas: map[string][]transit.StopArea{
			"Bus": {
				{ID: "", Name: "Nameless id"},
				{ID: "stop_area:IDFM:1", Name: ""},
				{ID: "stop_area:IDFM:2", Name: "Valid"},
			},
		}},
		Publisher: publisher,
		Groups:    []ModeGroup{{Name: "bus", CommercialModes: []string{"Bus"}}},
	}

	producer.RunCycle(context.Background())

	// clear + the single valid record
	assert.Len(t, publisher.Messages("stations.bus"), 2)
}

func TestStationProducerMissingCoordinatesStayIndexable(t *testing.T) {
	publisher := channel.NewMemoryPublisher()
	producer := &StationProducer{
		Transit: &fakeStopAreasAPI{stopAreas: map[string][]transit.StopArea{
			"Metro": {
				{ID: "stop_area:IDFM:3", Name: "Sans Coordonnées"},
			},
		}},
		Publisher: publisher,
		Groups:    []ModeGroup{{Name: "metro", CommercialModes: []string{"Metro"}}},
	}

	producer.RunCycle(context.Background())

	messages := publisher.Messages("stations.metro")
	require.Len(t, messages, 2)

	var record StationRecord
	require.NoError(t, json.Unmarshal(messages[1].Payload, &record))
	assert.Nil(t, record.Coordinates)
}

func TestStationProducerDeduplicatesAcrossCommercialModes(t *testing.T) {
	shared := transit.StopArea{ID: "stop_area:IDFM:RER", Name: "Nation"}

	publisher := channel.NewMemoryPublisher()
	producer := &StationProducer{
		Transit: &fakeStopAreasAPI{
			stopAreas: map[string][]transit.StopArea{
				"RapidTransit": {shared},
				"LocalTrain":   {shared},
			},
			errors: map[string]error{"RailShuttle": errors.New("upstream down")},
		},
		Publisher: publisher,
		Groups: []ModeGroup{{
			Name:            "rer",
			CommercialModes: []string{"RapidTransit", "LocalTrain", "RailShuttle"},
		}},
	}

	producer.RunCycle(context.Background())

	assert.Len(t, publisher.Messages("stations.rer"), 2)
}
