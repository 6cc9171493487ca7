package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/parigo/parigo/pkg/api"
	"github.com/parigo/parigo/pkg/elastic_client"
	"github.com/parigo/parigo/pkg/feed"
	"github.com/parigo/parigo/pkg/sink"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("PARIGO_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("PARIGO_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "parigo",
		Description: "Single binary of truth for Parigo - runs all the services",

		Commands: []*cli.Command{
			feed.RegisterCLI(),
			sink.RegisterCLI(),
			elastic_client.RegisterCLI(),
			api.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
