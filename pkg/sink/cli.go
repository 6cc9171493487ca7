package sink

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parigo/parigo/pkg/consumer"
	"github.com/parigo/parigo/pkg/elastic_client"
	"github.com/parigo/parigo/pkg/embedding"
	"github.com/parigo/parigo/pkg/feed"
	"github.com/parigo/parigo/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	sharedFlags := []cli.Flag{
		&cli.IntFlag{
			Name:  "batch-size",
			Value: 20,
			Usage: "deliveries handled per batch",
		},
		&cli.DurationFlag{
			Name:  "flush-interval",
			Value: 5 * time.Second,
			Usage: "bulk index flush interval",
		},
	}

	return &cli.Command{
		Name:  "sink",
		Usage: "Consumes the channel into the Elasticsearch indexes",
		Subcommands: []*cli.Command{
			{
				Name:  "disruptions",
				Usage: "index disruption records with their semantic vector",
				Flags: sharedFlags,
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}
					if err := elastic_client.Connect(true); err != nil {
						return err
					}
					if err := elastic_client.EnsureIndexes(); err != nil {
						return err
					}

					embedder, err := embedding.NewNvidiaEmbedderFromEnvironment()
					if err != nil {
						return err
					}
					embedder.SetupCache()

					indexer, err := elastic_client.NewIndexer(c.Int("batch-size"), c.Duration("flush-interval"))
					if err != nil {
						return err
					}

					// One consumer per queue: a sibling consumer could run a
					// clear concurrently with upserts for the records behind it.
					redisConsumer := consumer.RedisConsumer{
						QueueName:       feed.DisruptionsTopic,
						NumberConsumers: 1,
						BatchSize:       c.Int("batch-size"),
						Timeout:         2 * time.Second,
						Consumer:        NewDisruptionSink(indexer, embedder),
					}
					redisConsumer.Start()

					go consumer.ServeStats()

					waitForShutdown()

					<-redis_client.QueueConnection.StopAllConsuming()

					return indexer.Close(context.Background())
				},
			},
			{
				Name:  "stations",
				Usage: "index station records with their folded name",
				Flags: append(sharedFlags, &cli.StringFlag{
					Name:  "config",
					Usage: "path to a mode group config file",
				}),
				Action: func(c *cli.Context) error {
					config, err := feed.LoadConfig(c.String("config"))
					if err != nil {
						return err
					}

					if err := redis_client.Connect(); err != nil {
						return err
					}
					if err := elastic_client.Connect(true); err != nil {
						return err
					}
					if err := elastic_client.EnsureIndexes(); err != nil {
						return err
					}

					indexer, err := elastic_client.NewIndexer(c.Int("batch-size"), c.Duration("flush-interval"))
					if err != nil {
						return err
					}

					stationSink := NewStationSink(indexer)

					// One consumer per queue, same ordering constraint as the
					// disruption sink. The per-mode queues still run in parallel.
					for _, group := range config.Groups {
						redisConsumer := consumer.RedisConsumer{
							QueueName:       feed.StationsTopic(group.Name),
							NumberConsumers: 1,
							BatchSize:       c.Int("batch-size"),
							Timeout:         2 * time.Second,
							Consumer:        stationSink,
						}
						redisConsumer.Start()
					}

					go consumer.ServeStats()

					waitForShutdown()

					<-redis_client.QueueConnection.StopAllConsuming()

					return indexer.Close(context.Background())
				},
			},
		},
	}
}

func waitForShutdown() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	<-signals
	go func() {
		<-signals // hard exit on second signal (in case shutdown gets stuck)
		os.Exit(1)
	}()
}
