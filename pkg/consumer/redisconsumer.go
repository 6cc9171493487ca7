package consumer

import (
	"fmt"
	"math"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/parigo/parigo/pkg/redis_client"
	"github.com/rs/zerolog/log"
)

// RedisConsumer runs batch consumers against a single rmq queue. Failed
// deliveries are Rejected by the consumer implementation and periodically
// returned to the ready list, giving a fixed-backoff retry that never
// advances past an unindexed record.
type RedisConsumer struct {
	QueueName string

	NumberConsumers int
	BatchSize       int

	Timeout time.Duration

	// RetryInterval is how long rejected deliveries sit before requeueing.
	RetryInterval time.Duration

	Consumer rmq.BatchConsumer
}

// Start launches the batch consumers and the rejected-delivery returner.
// It does not block.
func (c *RedisConsumer) Start() {
	log.Info().Str("queue", c.QueueName).Msg("Starting consumers")

	queue, err := redis_client.QueueConnection.OpenQueue(c.QueueName)
	if err != nil {
		panic(err)
	}
	if err := queue.StartConsuming(int64(c.NumberConsumers*c.BatchSize), 1*time.Second); err != nil {
		panic(err)
	}

	for i := 0; i < c.NumberConsumers; i++ {
		go c.startQueueConsumer(queue, i)
	}

	go c.startRejectedReturner(queue)
}

func (c *RedisConsumer) startQueueConsumer(queue rmq.Queue, id int) {
	log.Info().Msgf("Starting %s consumer %d", c.QueueName, id)

	if _, err := queue.AddBatchConsumer(fmt.Sprintf("%s-consumer-%d", c.QueueName, id), int64(c.BatchSize), c.Timeout, c.Consumer); err != nil {
		panic(err)
	}
}

func (c *RedisConsumer) startRejectedReturner(queue rmq.Queue) {
	retryInterval := c.RetryInterval
	if retryInterval == 0 {
		retryInterval = 30 * time.Second
	}

	for {
		time.Sleep(retryInterval)

		returned, err := queue.ReturnRejected(math.MaxInt64)
		if err != nil {
			log.Error().Err(err).Str("queue", c.QueueName).Msg("Failed to return rejected deliveries")
			continue
		}

		if returned > 0 {
			log.Info().Str("queue", c.QueueName).Int64("count", returned).Msg("Returned rejected deliveries for retry")
		}
	}
}
