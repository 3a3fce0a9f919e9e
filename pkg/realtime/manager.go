package realtime

import (
	"context"
	"sync"

	"storynest/pkg/logger"
	"storynest/pkg/metrics"
)

// Handler receives matching changes in publish order, one at a time. It must
// not call Subscribe or Unsubscribe on the Manager that invokes it.
type Handler func(Change)

// Manager owns at most one live subscription. Subscribe replaces the previous
// one; Unsubscribe is idempotent and returns only after the dispatch loop has
// stopped, so no callback runs after it returns.
type Manager struct {
	source Source
	logger *logger.Logger

	mu     sync.Mutex
	active *subscription
}

type subscription struct {
	topic   Topic
	channel Channel
	stop    chan struct{}
	done    chan struct{}
}

func NewManager(source Source, log *logger.Logger) *Manager {
	return &Manager{source: source, logger: log}
}

func (m *Manager) Subscribe(ctx context.Context, topic Topic, onChange Handler) error {
	if err := topic.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.teardownLocked()

	channel, err := m.source.Open(ctx, topic)
	if err != nil {
		return err
	}

	sub := &subscription{
		topic:   topic,
		channel: channel,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	m.active = sub
	metrics.RealtimeSubscriptions.Inc()

	go sub.dispatch(onChange, m.logger)
	return nil
}

func (m *Manager) Unsubscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
}

// Topic returns the active topic, if any.
func (m *Manager) Topic() (Topic, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Topic{}, false
	}
	return m.active.topic, true
}

func (m *Manager) teardownLocked() {
	sub := m.active
	if sub == nil {
		return
	}
	m.active = nil

	close(sub.stop)
	if err := sub.channel.Close(); err != nil && m.logger != nil {
		m.logger.Warn("Closing realtime channel for %s: %v", sub.topic.Table, err)
	}
	<-sub.done
	metrics.RealtimeSubscriptions.Dec()
}

func (s *subscription) dispatch(onChange Handler, log *logger.Logger) {
	defer close(s.done)

	changes := s.channel.Changes()
	for {
		select {
		case <-s.stop:
			return
		case change, ok := <-changes:
			if !ok {
				// The stream died without an unsubscribe. Callers are not told.
				if log != nil {
					log.Warn("Realtime channel for %s closed", s.topic.Table)
				}
				return
			}
			select {
			case <-s.stop:
				return
			default:
			}
			onChange(change)
			metrics.RealtimeDelivered.WithLabelValues(change.Table).Inc()
		}
	}
}
