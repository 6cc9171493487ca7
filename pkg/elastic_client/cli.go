package elastic_client

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "indexer",
		Usage: "Manages the Elasticsearch indexes",
		Subcommands: []*cli.Command{
			{
				Name:  "setup",
				Usage: "create the disruption and station indexes",
				Action: func(c *cli.Context) error {
					if err := Connect(true); err != nil {
						return err
					}

					if err := EnsureIndexes(); err != nil {
						return err
					}

					log.Info().Msg("Indexes ready")

					return nil
				},
			},
		},
	}
}
