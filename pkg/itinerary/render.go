package itinerary

import (
	"fmt"
	"strings"

	"github.com/parigo/parigo/pkg/transit"
)

func renderJourneys(journeys []transit.Journey, impacts map[string]string) string {
	if len(journeys) > maxRenderedOptions {
		journeys = journeys[:maxRenderedOptions]
	}

	rendered := make([]string, 0, len(journeys))
	for index := range journeys {
		rendered = append(rendered, renderJourney(index, &journeys[index], impacts))
	}

	return strings.Join(rendered, "\n\n")
}

func renderJourney(index int, journey *transit.Journey, impacts map[string]string) string {
	lines := []string{
		fmt.Sprintf("Option %d: %d mins (%d transfers)", index+1, journey.Duration/60, journey.NbTransfers),
		fmt.Sprintf("   Departure: %s", wallClock(journey.DepartureDateTime)),
		fmt.Sprintf("   Arrival:   %s", wallClock(journey.ArrivalDateTime)),
		"   Itinerary:",
	}

	for _, section := range journey.Sections {
		if line, ok := renderSection(&section, impacts); ok {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

func renderSection(section *transit.Section, impacts map[string]string) (string, bool) {
	minutes := section.Duration / 60

	switch section.Type {
	case "public_transport":
		info := section.DisplayInformations

		mode := info.PhysicalMode
		if mode == "" {
			mode = "line"
		}
		code := info.Code
		if code == "" {
			code = "?"
		}
		direction := info.Direction
		if direction == "" {
			direction = "Unknown"
		}

		alert := ""
		for _, link := range section.Links {
			if message, ok := impacts[link.ID]; ok {
				alert = fmt.Sprintf(" ⚠️ ALERT: %s", message)
				break
			}
		}

		return fmt.Sprintf("    - Take %s %s towards %s (%d min)%s", mode, code, direction, minutes, alert), true

	case "street_network", "walking":
		from := section.From.Name
		if from == "" {
			from = "Origin"
		}
		to := section.To.Name
		if to == "" {
			to = "Dest"
		}
		return fmt.Sprintf("    - Walk from %s to %s (%d min)", from, to, minutes), true

	case "transfer":
		from := section.From.Name
		if from == "" {
			from = "Origin"
		}
		return fmt.Sprintf("    - Transfer at %s (%d min)", from, minutes), true
	}

	return "", false
}

// wallClock slices the compact upstream timestamp (YYYYMMDDTHHMMSS) to
// HH:MM without any timezone conversion.
func wallClock(timestamp string) string {
	if len(timestamp) < 13 {
		return "??:??"
	}
	return timestamp[9:11] + ":" + timestamp[11:13]
}
