package channel

import "sync"

type MemoryMessage struct {
	Key     string
	Payload []byte
}

// MemoryPublisher records published messages in order per topic. Test use
// only.
type MemoryPublisher struct {
	mutex    sync.Mutex
	messages map[string][]MemoryMessage
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{
		messages: map[string][]MemoryMessage{},
	}
}

func (p *MemoryPublisher) Publish(topic string, key string, payload []byte) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.messages[topic] = append(p.messages[topic], MemoryMessage{Key: key, Payload: payload})
	return nil
}

func (p *MemoryPublisher) Messages(topic string) []MemoryMessage {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return append([]MemoryMessage{}, p.messages[topic]...)
}

func (p *MemoryPublisher) Topics() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	var topics []string
	for topic := range p.messages {
		topics = append(topics, topic)
	}
	return topics
}
