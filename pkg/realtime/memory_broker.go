package realtime

import (
	"context"
	"sync"
)

// MemoryBroker is an in-process Publisher and Source. Delivery to a slow
// subscriber blocks the publisher.
type MemoryBroker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*memoryChannel
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[int]*memoryChannel)}
}

func (b *MemoryBroker) Publish(ctx context.Context, change Change) error {
	b.mu.Lock()
	targets := make([]*memoryChannel, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.topic.Matches(change) {
			targets = append(targets, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range targets {
		sub.deliver(ctx, change)
	}
	return nil
}

func (b *MemoryBroker) Open(_ context.Context, topic Topic) (Channel, error) {
	if err := topic.Validate(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	ch := &memoryChannel{
		id:     b.nextID,
		broker: b,
		topic:  topic,
		out:    make(chan Change, channelBuffer),
		done:   make(chan struct{}),
	}
	b.subs[ch.id] = ch
	return ch, nil
}

// Subscribers reports how many channels are open.
func (b *MemoryBroker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

type memoryChannel struct {
	id     int
	broker *MemoryBroker
	topic  Topic
	out    chan Change
	done   chan struct{}

	sendMu sync.Mutex
	closed bool
	once   sync.Once
}

func (c *memoryChannel) deliver(ctx context.Context, change Change) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- change:
	case <-c.done:
	case <-ctx.Done():
	}
}

func (c *memoryChannel) Changes() <-chan Change {
	return c.out
}

func (c *memoryChannel) Close() error {
	c.once.Do(func() {
		c.broker.mu.Lock()
		delete(c.broker.subs, c.id)
		c.broker.mu.Unlock()

		close(c.done)
		c.sendMu.Lock()
		c.closed = true
		close(c.out)
		c.sendMu.Unlock()
	})
	return nil
}
