package usecase

import (
	"context"
	"strings"

	"storynest/pkg/apperr"
	"storynest/pkg/logger"
	"storynest/pkg/models"
	"storynest/pkg/queue"
	"storynest/pkg/realtime"
	"storynest/services/notification/internal/entity"
	"storynest/services/notification/internal/repo/persistent"
)

const (
	notificationsTable = "notifications"

	DefaultPageSize = 50
	MaxPageSize     = 100

	maxTitleLength    = 300
	maxMessageLength  = 2000
	broadcastPriority = 3
)

// TaskPublisher enqueues deliveries that are too large to run inline.
type TaskPublisher interface {
	Publish(ctx context.Context, task queue.Task) error
}

type NotificationUseCase interface {
	List(ctx context.Context, userID string, query entity.NotificationQuery) (*entity.NotificationPage, error)
	// MarkRead is idempotent. Notifications owned by someone else look
	// missing.
	MarkRead(ctx context.Context, userID, id string) (*entity.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Create(ctx context.Context, n entity.NewNotification) (*entity.Notification, error)
	// Broadcast delivers to explicit recipients inline and queues a
	// broadcast to everyone.
	Broadcast(ctx context.Context, b entity.Broadcast) (*entity.BroadcastResult, error)
	// HandleTask is the queue consumer entry point.
	HandleTask(ctx context.Context, task queue.Task) error
}

type notificationUseCase struct {
	notificationRepo persistent.NotificationRepository
	tasks            TaskPublisher
	publisher        realtime.Publisher
	logger           *logger.Logger
}

func NewNotificationUseCase(
	notificationRepo persistent.NotificationRepository,
	tasks TaskPublisher,
	publisher realtime.Publisher,
	logger *logger.Logger,
) NotificationUseCase {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	return &notificationUseCase{
		notificationRepo: notificationRepo,
		tasks:            tasks,
		publisher:        publisher,
		logger:           logger,
	}
}

func normalizeQuery(q entity.NotificationQuery) entity.NotificationQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

func (uc *notificationUseCase) List(ctx context.Context, userID string, query entity.NotificationQuery) (*entity.NotificationPage, error) {
	query = normalizeQuery(query)

	items, total, err := uc.notificationRepo.List(ctx, userID, query)
	if err != nil {
		uc.logger.Error("Failed to list notifications for %s: %v", userID, err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to get notifications")
	}
	unread, err := uc.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to count unread notifications for %s: %v", userID, err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to get notifications")
	}

	if items == nil {
		items = []*entity.Notification{}
	}
	return &entity.NotificationPage{
		Notifications: items,
		Total:         total,
		Unread:        unread,
		Offset:        query.Offset,
	}, nil
}

func (uc *notificationUseCase) MarkRead(ctx context.Context, userID, id string) (*entity.Notification, error) {
	notification, err := uc.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindOf(err), "Notification not found")
	}
	if notification.UserID != userID {
		return nil, apperr.New(apperr.KindNotFound, "Notification not found")
	}
	if notification.Read {
		return notification, nil
	}

	changed, err := uc.notificationRepo.MarkRead(ctx, id)
	if err != nil {
		uc.logger.Error("Failed to mark notification %s read: %v", id, err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to update notification")
	}

	before := *notification
	notification.Read = true
	if changed {
		uc.publish(ctx, realtime.EventUpdate, notification, &before)
	}
	return notification, nil
}

func (uc *notificationUseCase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	updated, err := uc.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to mark notifications read for %s: %v", userID, err)
		return 0, apperr.Wrap(err, apperr.KindInternal, "Failed to update notifications")
	}
	for _, before := range updated {
		after := *before
		after.Read = true
		uc.publish(ctx, realtime.EventUpdate, &after, before)
	}
	return int64(len(updated)), nil
}

type message struct {
	title string
	body  string
	kind  models.NotificationType
}

func newMessage(title, body string, kind models.NotificationType) (message, error) {
	m := message{title: strings.TrimSpace(title), body: strings.TrimSpace(body), kind: kind}
	if m.kind == "" {
		m.kind = models.NotificationInfo
	}
	switch {
	case m.title == "":
		return m, apperr.New(apperr.KindInvalidInput, "Title is required")
	case len(m.title) > maxTitleLength:
		return m, apperr.Newf(apperr.KindInvalidInput, "Title must be at most %d characters", maxTitleLength)
	case m.body == "":
		return m, apperr.New(apperr.KindInvalidInput, "Message is required")
	case len(m.body) > maxMessageLength:
		return m, apperr.Newf(apperr.KindInvalidInput, "Message must be at most %d characters", maxMessageLength)
	case !m.kind.Valid():
		return m, apperr.Newf(apperr.KindInvalidInput, "Unknown notification type %q", kind)
	}
	return m, nil
}

func (uc *notificationUseCase) Create(ctx context.Context, n entity.NewNotification) (*entity.Notification, error) {
	if strings.TrimSpace(n.UserID) == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "Recipient is required")
	}
	msg, err := newMessage(n.Title, n.Message, n.Type)
	if err != nil {
		return nil, err
	}

	created, err := uc.deliver(ctx, []string{n.UserID}, msg)
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (uc *notificationUseCase) Broadcast(ctx context.Context, b entity.Broadcast) (*entity.BroadcastResult, error) {
	msg, err := newMessage(b.Title, b.Message, b.Type)
	if err != nil {
		return nil, err
	}

	if b.All {
		if uc.tasks != nil {
			task := queue.Task{
				Type:             queue.TaskBroadcast,
				All:              true,
				Title:            msg.title,
				Message:          msg.body,
				NotificationType: string(msg.kind),
				Priority:         broadcastPriority,
			}
			if err := uc.tasks.Publish(ctx, task); err != nil {
				return nil, apperr.Wrap(err, apperr.KindUnavailable, "Failed to queue broadcast")
			}
			uc.logger.Info("Queued broadcast to all users: %s", msg.title)
			return &entity.BroadcastResult{Queued: true}, nil
		}

		uc.logger.Warn("No task queue, delivering broadcast inline")
		ids, err := uc.notificationRepo.ProfileIDs(ctx)
		if err != nil {
			return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to load recipients")
		}
		b.UserIDs = ids
	} else if len(b.UserIDs) == 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "Either user_ids or all is required")
	}

	created, err := uc.deliver(ctx, b.UserIDs, msg)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Broadcast notification sent to %d users: %s", len(created), msg.title)
	return &entity.BroadcastResult{SentCount: len(created)}, nil
}

// deliver stores one notification per distinct recipient and announces each.
func (uc *notificationUseCase) deliver(ctx context.Context, userIDs []string, msg message) ([]*entity.Notification, error) {
	seen := make(map[string]struct{}, len(userIDs))
	batch := make([]*entity.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		batch = append(batch, &entity.Notification{
			UserID:  id,
			Title:   msg.title,
			Message: msg.body,
			Type:    msg.kind,
		})
	}
	if len(batch) == 0 {
		return []*entity.Notification{}, nil
	}

	created, err := uc.notificationRepo.CreateBatch(ctx, batch)
	if err != nil {
		uc.logger.Error("Failed to store %d notifications: %v", len(batch), err)
		return nil, apperr.Wrap(err, apperr.KindOf(err), "Failed to send notification")
	}
	for _, n := range created {
		uc.publish(ctx, realtime.EventInsert, n, nil)
	}
	return created, nil
}

func (uc *notificationUseCase) publish(ctx context.Context, event realtime.Event, n, old *entity.Notification) {
	var oldRecord interface{}
	if old != nil {
		oldRecord = old
	}
	change, err := realtime.NewChange(notificationsTable, event, n, oldRecord)
	if err != nil {
		uc.logger.Warn("Failed to encode notification change: %v", err)
		return
	}
	if err := uc.publisher.Publish(ctx, change); err != nil {
		uc.logger.Warn("Failed to publish notification change: %v", err)
	}
}
