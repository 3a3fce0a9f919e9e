package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"storynest/pkg/logger"
	"storynest/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const channelBuffer = 64

func ChannelName(table string) string {
	return "realtime:" + table
}

// RedisBroker fans changes out over one Redis pub/sub channel per table.
// Filtering happens on the subscriber side.
type RedisBroker struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisBroker(client *redis.Client, log *logger.Logger) *RedisBroker {
	return &RedisBroker{client: client, logger: log}
}

func (b *RedisBroker) Publish(ctx context.Context, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to encode change: %w", err)
	}
	if err := b.client.Publish(ctx, ChannelName(change.Table), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	metrics.RealtimePublished.WithLabelValues(change.Table).Inc()
	return nil
}

func (b *RedisBroker) Open(ctx context.Context, topic Topic) (Channel, error) {
	if err := topic.Validate(); err != nil {
		return nil, err
	}

	pubsub := b.client.Subscribe(ctx, ChannelName(topic.Table))
	// Wait for the subscription confirmation so callers know the stream is live.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic.Table, err)
	}

	ch := &redisChannel{
		pubsub: pubsub,
		out:    make(chan Change, channelBuffer),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go ch.pump(topic, b.logger)
	return ch, nil
}

type redisChannel struct {
	pubsub *redis.PubSub
	out    chan Change
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

func (c *redisChannel) pump(topic Topic, log *logger.Logger) {
	defer close(c.exited)
	defer close(c.out)

	msgs := c.pubsub.Channel()
	for {
		select {
		case <-c.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				log.Warn("Dropping malformed change on %s: %v", msg.Channel, err)
				continue
			}
			if !topic.Matches(change) {
				continue
			}
			select {
			case c.out <- change:
			case <-c.done:
				return
			}
		}
	}
}

func (c *redisChannel) Changes() <-chan Change {
	return c.out
}

func (c *redisChannel) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.pubsub.Close()
		<-c.exited
	})
	return err
}
