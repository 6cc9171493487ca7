package channel

import (
	"sync"

	"github.com/adjust/rmq/v5"
	"github.com/parigo/parigo/pkg/redis_client"
)

// Publisher appends messages to a named topic. Delivery to consumers is
// at-least-once; ordering across topics is not guaranteed, so consumers must
// be idempotent. The key is the record's uniqueness key - the redis queues
// are unpartitioned, so it only travels for diagnostics, but implementations
// over a sharded broker may use it for placement.
type Publisher interface {
	Publish(topic string, key string, payload []byte) error
}

// RedisPublisher publishes onto rmq queues, one per topic.
type RedisPublisher struct {
	queues map[string]rmq.Queue
	mutex  sync.Mutex
}

func NewRedisPublisher() *RedisPublisher {
	return &RedisPublisher{
		queues: map[string]rmq.Queue{},
	}
}

func (p *RedisPublisher) Publish(topic string, key string, payload []byte) error {
	queue, err := p.queue(topic)
	if err != nil {
		return err
	}

	return queue.PublishBytes(payload)
}

func (p *RedisPublisher) queue(topic string) (rmq.Queue, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if queue, ok := p.queues[topic]; ok {
		return queue, nil
	}

	queue, err := redis_client.QueueConnection.OpenQueue(topic)
	if err != nil {
		return nil, err
	}

	p.queues[topic] = queue
	return queue, nil
}
