package api

import (
	"github.com/parigo/parigo/pkg/elastic_client"
	"github.com/parigo/parigo/pkg/itinerary"
	"github.com/parigo/parigo/pkg/redis_client"
	"github.com/parigo/parigo/pkg/resolve"
	"github.com/parigo/parigo/pkg/transit"
	"github.com/urfave/cli/v2"

	"github.com/parigo/parigo/pkg/embedding"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					if err := elastic_client.Connect(true); err != nil {
						return err
					}

					transitClient, err := transit.NewClientFromEnvironment()
					if err != nil {
						return err
					}

					embedder, err := embedding.NewNvidiaEmbedderFromEnvironment()
					if err != nil {
						return err
					}
					if err := redis_client.Connect(); err == nil {
						embedder.SetupCache()
					}

					resolver := &resolve.Resolver{
						Searcher: resolve.NewElasticStationSearcher(),
						Places:   transitClient,
					}

					planner := &itinerary.Planner{
						Resolver: resolver,
						Transit:  transitClient,
					}

					return SetupServer(c.String("listen"), Dependencies{
						Resolver: resolver,
						Planner:  planner,
						Embedder: embedder,
					})
				},
			},
		},
	}
}
