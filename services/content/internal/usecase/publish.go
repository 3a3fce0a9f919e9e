package usecase

import (
	"context"

	"storynest/pkg/logger"
	"storynest/pkg/queue"
	"storynest/pkg/realtime"
)

const (
	contentTable           = "content"
	favoritesTable         = "favorites"
	feedbackTable          = "feedback"
	feedbackResponsesTable = "feedback_responses"
)

// TaskPublisher enqueues background work for the notification service.
type TaskPublisher interface {
	Publish(ctx context.Context, task queue.Task) error
}

// changeNotifier publishes committed rows. Publishing is best effort; the
// write has already succeeded.
type changeNotifier struct {
	publisher realtime.Publisher
	logger    *logger.Logger
}

func newChangeNotifier(publisher realtime.Publisher, log *logger.Logger) changeNotifier {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	return changeNotifier{publisher: publisher, logger: log}
}

func (n changeNotifier) notify(ctx context.Context, table string, event realtime.Event, newRecord, oldRecord interface{}) {
	change, err := realtime.NewChange(table, event, newRecord, oldRecord)
	if err != nil {
		n.logger.Warn("Failed to encode %s change: %v", table, err)
		return
	}
	if err := n.publisher.Publish(ctx, change); err != nil {
		n.logger.Warn("Failed to publish %s change: %v", table, err)
	}
}
