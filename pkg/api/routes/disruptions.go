package routes

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/parigo/parigo/pkg/elastic_client"
	"github.com/parigo/parigo/pkg/embedding"
	"github.com/parigo/parigo/pkg/feed"
)

const (
	searchNeighbours    = 3
	searchCandidatePool = 50
)

func DisruptionsRouter(router fiber.Router, embedder embedding.Embedder) {
	router.Get("/search", func(c *fiber.Ctx) error {
		return searchDisruptions(c, embedder)
	})
}

// searchDisruptions answers a free text query with the assistant context
// block built from the nearest disruption documents.
func searchDisruptions(c *fiber.Ctx, embedder embedding.Embedder) error {
	query := c.Query("query")
	if query == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.SendString("A query must be provided")
	}

	vector, err := embedder.Embed(c.UserContext(), query, embedding.InputTypeQuery)
	if err != nil || len(vector) == 0 {
		c.SendStatus(fiber.StatusBadGateway)
		return c.SendString("Error: Could not generate embedding from API.")
	}

	hits, err := elastic_client.KNNSearch(c.UserContext(), elastic_client.DisruptionsIndex,
		"embedding_vector", vector, searchNeighbours, searchCandidatePool)
	if err != nil {
		c.SendStatus(fiber.StatusBadGateway)
		return c.SendString(fmt.Sprintf("Error retrieving context: %s", err))
	}

	return c.SendString(renderDisruptionContext(hits))
}

func renderDisruptionContext(hits []elastic_client.SearchHit) string {
	if len(hits) == 0 {
		return "No active disruptions found regarding your query."
	}

	var builder strings.Builder
	builder.WriteString("Here are the active disruptions found:\n")

	for index, hit := range hits {
		var record feed.DisruptionRecord
		if err := json.Unmarshal(hit.Source, &record); err != nil {
			continue
		}

		fmt.Fprintf(&builder, "%d. [Line %s] %s\n", index+1, record.Mode, record.Title)
		fmt.Fprintf(&builder, "   Details: %s\n", record.Description)
		fmt.Fprintf(&builder, "   Severity: %s\n\n", record.Severity)
	}

	return builder.String()
}
