package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kr/pretty"
	"github.com/parigo/parigo/pkg/channel"
	"github.com/parigo/parigo/pkg/redis_client"
	"github.com/parigo/parigo/pkg/transit"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	sharedFlags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "continuous",
			Usage: "keep polling instead of running a single cycle",
		},
		&cli.DurationFlag{
			Name:  "interval",
			Value: 5 * time.Minute,
			Usage: "poll interval in continuous mode",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to a mode group config file",
		},
	}

	return &cli.Command{
		Name:  "feed",
		Usage: "Produces disruption and station records onto the channel",
		Subcommands: []*cli.Command{
			{
				Name:  "disruptions",
				Usage: "poll line reports and publish disruption records",
				Flags: sharedFlags,
				Action: func(c *cli.Context) error {
					config, err := LoadConfig(c.String("config"))
					if err != nil {
						return err
					}

					filter, err := CompileDisruptionFilter(config.DisruptionFilter)
					if err != nil {
						return err
					}

					transitClient, err := transit.NewClientFromEnvironment()
					if err != nil {
						return err
					}

					if err := redis_client.Connect(); err != nil {
						return err
					}

					producer := &DisruptionProducer{
						Transit:   transitClient,
						Publisher: channel.NewRedisPublisher(),
						Groups:    config.Groups,
						Filter:    filter,
					}

					runCycles(c.Bool("continuous"), c.Duration("interval"), func() {
						producer.RunCycle(context.Background())
					})

					return nil
				},
			},
			{
				Name:  "stations",
				Usage: "poll the stop area catalogue and publish station records",
				Flags: sharedFlags,
				Action: func(c *cli.Context) error {
					config, err := LoadConfig(c.String("config"))
					if err != nil {
						return err
					}

					transitClient, err := transit.NewClientFromEnvironment()
					if err != nil {
						return err
					}

					if err := redis_client.Connect(); err != nil {
						return err
					}

					producer := &StationProducer{
						Transit:   transitClient,
						Publisher: channel.NewRedisPublisher(),
						Groups:    config.Groups,
					}

					runCycles(c.Bool("continuous"), c.Duration("interval"), func() {
						producer.RunCycle(context.Background())
					})

					return nil
				},
			},
			{
				Name:  "test-station",
				Usage: "publish a canned station record",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					record := StationRecord{
						ID:           "stop_area:IDFM:TEST",
						Name:         "Châtelet",
						Label:        "Châtelet (Paris)",
						City:         "Paris",
						Mode:         "metro",
						EmbeddedType: "stop_area",
						Coordinates:  &Coordinates{Lat: 48.858, Lon: 2.347},
					}

					pretty.Println(record)

					payload, _ := json.Marshal(record)
					return channel.NewRedisPublisher().Publish(StationsTopic(record.Mode), record.UniquenessKey(), payload)
				},
			},
			{
				Name:  "test-disruption",
				Usage: "publish a canned disruption record",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}

					record := DisruptionRecord{
						ID:          "disruption:TEST",
						Mode:        "metro",
						Status:      "active",
						Severity:    "perturbée",
						Title:       "Ligne 14 : trafic interrompu",
						Description: "Trafic interrompu entre Olympiades et Saint-Lazare",
						UpdatedAt:   time.Now().UTC(),
					}

					pretty.Println(record)

					payload, _ := json.Marshal(record)
					return channel.NewRedisPublisher().Publish(DisruptionsTopic, record.UniquenessKey(), payload)
				},
			},
		},
	}
}

// runCycles executes cycle once, or forever on the interval with the
// execution time deducted from the wait.
func runCycles(continuous bool, interval time.Duration, cycle func()) {
	if !continuous {
		cycle()
		return
	}

	for {
		startTime := time.Now()

		cycle()

		waitTime := interval - time.Since(startTime)
		if waitTime > 0 {
			time.Sleep(waitTime)
		}
	}
}
