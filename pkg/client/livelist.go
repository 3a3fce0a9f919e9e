package client

import (
	"context"
	"sync"

	"storynest/pkg/logger"
	"storynest/pkg/realtime"
)

// LiveList keeps a collection in sync with a realtime topic. Every matching
// change reloads the whole collection; the last completed reload wins.
type LiveList[T any] struct {
	load    func(ctx context.Context) ([]T, error)
	manager *realtime.Manager
	logger  *logger.Logger

	mu       sync.Mutex
	items    []T
	err      error
	onUpdate func([]T, error)
	gen      uint64
	cancel   context.CancelFunc
}

func NewLiveList[T any](source realtime.Source, log *logger.Logger, load func(ctx context.Context) ([]T, error)) *LiveList[T] {
	return &LiveList[T]{
		load:    load,
		manager: realtime.NewManager(source, log),
		logger:  log,
		items:   []T{},
	}
}

// Start subscribes to topic, then hydrates the list, so a change landing
// during the first load still triggers a reload. onUpdate, if set, is called
// after every reload with a copy of the items. Reloads triggered by changes
// run until Stop.
func (l *LiveList[T]) Start(ctx context.Context, topic realtime.Topic, onUpdate func([]T, error)) error {
	liveCtx, cancel := context.WithCancel(context.Background())
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.onUpdate = onUpdate
	l.cancel = cancel
	l.mu.Unlock()

	err := l.manager.Subscribe(ctx, topic, func(realtime.Change) {
		if err := l.Reload(liveCtx); err != nil && liveCtx.Err() == nil && l.logger != nil {
			l.logger.Warn("Reloading %s after change: %v", topic.Table, err)
		}
	})
	if err != nil {
		l.Stop()
		return err
	}
	if err := l.Reload(ctx); err != nil {
		l.Stop()
		return err
	}
	return nil
}

// Reload fetches the collection. A failed reload keeps the previous items.
func (l *LiveList[T]) Reload(ctx context.Context) error {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	items, err := l.load(ctx)

	l.mu.Lock()
	if gen < l.gen {
		l.mu.Unlock()
		return err
	}
	if err == nil {
		if items == nil {
			items = []T{}
		}
		l.items = items
	}
	l.err = err
	notify := l.onUpdate
	snapshot := append([]T{}, l.items...)
	l.mu.Unlock()

	if notify != nil {
		notify(snapshot, err)
	}
	return err
}

// Items returns a copy of the current collection and the last reload error.
func (l *LiveList[T]) Items() ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T{}, l.items...), l.err
}

// Stop cancels in-flight reloads and releases the subscription. It is safe to
// call more than once.
func (l *LiveList[T]) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.manager.Unsubscribe()
}

// NotificationTopic watches the notifications of one user.
func NotificationTopic(userID string) realtime.Topic {
	return realtime.Topic{
		Table:  "notifications",
		Filter: realtime.Filter{Column: "user_id", Value: userID},
		Events: []realtime.Event{realtime.EventAll},
	}
}

// FeedbackTopic watches the feedback left on one content item.
func FeedbackTopic(contentID string) realtime.Topic {
	return realtime.Topic{
		Table:  "feedback",
		Filter: realtime.Filter{Column: "content_id", Value: contentID},
		Events: []realtime.Event{realtime.EventAll},
	}
}

// FeedbackResponseTopic watches admin responses. Responses carry the
// feedback id but not the content id, so the topic is unfiltered.
func FeedbackResponseTopic() realtime.Topic {
	return realtime.Topic{
		Table:  "feedback_responses",
		Events: []realtime.Event{realtime.EventInsert},
	}
}
