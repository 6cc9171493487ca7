package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/parigo/parigo/pkg/resolve"
	"github.com/parigo/parigo/pkg/transit"
	"github.com/rs/zerolog/log"
)

const (
	defaultJourneyCount = 6
	maxRenderedOptions  = 3
)

// EndpointError renders the caller facing text for an endpoint that
// could not be resolved to coordinates. The wording is a contract.
type EndpointError struct {
	Name    string
	Wrapped error
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("Error: Could not find coordinates for '%s'. Please try a more specific name.", e.Name)
}

func (e *EndpointError) Unwrap() error {
	return e.Wrapped
}

type StationResolver interface {
	Resolve(ctx context.Context, name string) (*resolve.ResolvedStation, error)
}

type JourneysAPI interface {
	Journeys(ctx context.Context, from string, to string, count int) (*transit.JourneysResponse, error)
}

// Planner resolves two endpoints, fetches journey options between them
// and renders the mode filtered options as text.
type Planner struct {
	Resolver StationResolver
	Transit  JourneysAPI
}

func (p *Planner) Plan(ctx context.Context, startName string, endName string) (string, error) {
	start, err := p.resolveEndpoint(ctx, startName)
	if err != nil {
		return "", err
	}

	end, err := p.resolveEndpoint(ctx, endName)
	if err != nil {
		return "", err
	}

	response, err := p.Transit.Journeys(ctx, coordinateParameter(start), coordinateParameter(end), defaultJourneyCount)
	if err != nil {
		log.Error().Err(err).Str("start", startName).Str("end", endName).Msg("Journeys request failed")
		return "", err
	}

	if response == nil || len(response.Journeys) == 0 {
		return "No journeys found.", nil
	}

	impacts := buildImpactMap(response.Disruptions)
	journeys := selectJourneys(response.Journeys)

	return renderJourneys(journeys, impacts), nil
}

func (p *Planner) resolveEndpoint(ctx context.Context, name string) (*resolve.ResolvedStation, error) {
	station, err := p.Resolver.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, resolve.ErrBlockedMode) {
			return nil, err
		}
		// Transit failures carry their own actionable message (auth,
		// availability); only not-found collapses to the endpoint text.
		if _, ok := transit.ErrorKindOf(err); ok {
			return nil, err
		}
		return nil, &EndpointError{Name: name, Wrapped: err}
	}

	if station.Coordinates == nil {
		return nil, &EndpointError{Name: name}
	}

	return station, nil
}

// coordinateParameter keeps the upstream's literal lon;lat ordering.
func coordinateParameter(station *resolve.ResolvedStation) string {
	lon := strconv.FormatFloat(station.Coordinates.Lon, 'f', -1, 64)
	lat := strconv.FormatFloat(station.Coordinates.Lat, 'f', -1, 64)
	return lon + ";" + lat
}

// buildImpactMap indexes disruption messages by impacted object id. The
// "titre" channel carries the short headline, anything else falls back
// to a generic label.
func buildImpactMap(disruptions []transit.Disruption) map[string]string {
	impacts := map[string]string{}

	for _, disruption := range disruptions {
		message := "Perturbation"
		for _, candidate := range disruption.Messages {
			if candidate.Channel.Name == "titre" {
				message = candidate.Text
				break
			}
		}

		for _, impacted := range disruption.ImpactedObjects {
			if impacted.PTObject.ID != "" {
				impacts[impacted.PTObject.ID] = message
			}
		}
	}

	return impacts
}

func journeyEligible(journey *transit.Journey) bool {
	for _, section := range journey.Sections {
		if section.Type != "public_transport" {
			continue
		}
		if modeAllowed(section.DisplayInformations.CommercialMode) {
			return true
		}
	}
	return false
}

// selectJourneys keeps the upstream ranking and filters to journeys
// with at least one allowed public transport leg, falling back to the
// unfiltered list when nothing passes.
func selectJourneys(journeys []transit.Journey) []transit.Journey {
	var eligible []transit.Journey
	for index := range journeys {
		if journeyEligible(&journeys[index]) {
			eligible = append(eligible, journeys[index])
		}
	}

	if len(eligible) == 0 {
		return journeys
	}

	return eligible
}
