package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/parigo/parigo/pkg/resolve"
	"github.com/parigo/parigo/pkg/transit"
)

func StationsRouter(router fiber.Router, resolver *resolve.Resolver) {
	router.Get("/resolve", func(c *fiber.Ctx) error {
		return resolveStation(c, resolver)
	})
}

func resolveStation(c *fiber.Ctx, resolver *resolve.Resolver) error {
	name := c.Query("name")
	if name == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "A station name must be provided",
		})
	}

	station, err := resolver.Resolve(c.UserContext(), name)
	if err != nil {
		switch {
		case errors.Is(err, resolve.ErrBlockedMode):
			c.SendStatus(fiber.StatusBadRequest)
		case errors.Is(err, resolve.ErrNotFound):
			c.SendStatus(fiber.StatusNotFound)
		default:
			// Transit errors keep their message so a broken key or an
			// upstream outage reads as such, not as a missing station.
			if _, ok := transit.ErrorKindOf(err); ok {
				c.SendStatus(fiber.StatusBadGateway)
			} else {
				c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	stationReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, station)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce ResolvedStation",
		})
	}

	return c.JSON(stationReduced)
}
