package routes

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/parigo/parigo/pkg/itinerary"
	"github.com/parigo/parigo/pkg/resolve"
)

func ItineraryRouter(router fiber.Router, planner *itinerary.Planner) {
	router.Get("/plan", func(c *fiber.Ctx) error {
		return planItinerary(c, planner)
	})
}

// The itinerary surface is plain text end to end. Resolution failures
// keep their caller facing wording as the response body.
func planItinerary(c *fiber.Ctx, planner *itinerary.Planner) error {
	start := c.Query("start")
	end := c.Query("end")
	if start == "" || end == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.SendString("Both start and end must be provided")
	}

	plan, err := planner.Plan(c.UserContext(), start, end)
	if err != nil {
		var endpointErr *itinerary.EndpointError
		if errors.Is(err, resolve.ErrBlockedMode) || errors.As(err, &endpointErr) {
			c.SendStatus(fiber.StatusNotFound)
			return c.SendString(err.Error())
		}

		c.SendStatus(fiber.StatusBadGateway)
		return c.SendString(fmt.Sprintf("Error: %s", err))
	}

	return c.SendString(plan)
}
