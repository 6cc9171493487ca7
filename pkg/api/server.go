package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/parigo/parigo/pkg/api/routes"
	"github.com/parigo/parigo/pkg/embedding"
	"github.com/parigo/parigo/pkg/itinerary"
	"github.com/parigo/parigo/pkg/resolve"
)

type Dependencies struct {
	Resolver *resolve.Resolver
	Planner  *itinerary.Planner
	Embedder embedding.Embedder
}

func SetupServer(listen string, deps Dependencies) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.StationsRouter(group.Group("/stations"), deps.Resolver)
	routes.ItineraryRouter(group.Group("/itinerary"), deps.Planner)
	routes.DisruptionsRouter(group.Group("/disruptions"), deps.Embedder)

	return webApp.Listen(listen)
}
