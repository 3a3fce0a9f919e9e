package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storynest/pkg/apperr"
	"storynest/pkg/database"
	"storynest/pkg/logger"
	"storynest/pkg/models"
	"storynest/pkg/queue"
	"storynest/pkg/realtime"
	"storynest/services/notification/internal/entity"
	"storynest/services/notification/internal/repo/persistent"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu      sync.Mutex
	changes []realtime.Change
}

func (p *recordingPublisher) Publish(_ context.Context, change realtime.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.changes)
}

type recordingTasks struct {
	mu    sync.Mutex
	tasks []queue.Task
	err   error
}

func (r *recordingTasks) Publish(_ context.Context, task queue.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.tasks = append(r.tasks, task)
	return nil
}

type fixture struct {
	db        *gorm.DB
	uc        NotificationUseCase
	published *recordingPublisher
	tasks     *recordingTasks
}

func newFixture(t *testing.T, withQueue bool) *fixture {
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	f := &fixture{
		db:        db,
		published: &recordingPublisher{},
		tasks:     &recordingTasks{},
	}
	var tasks TaskPublisher
	if withQueue {
		tasks = f.tasks
	}
	f.uc = NewNotificationUseCase(persistent.NewNotificationRepository(db), tasks, f.published, logger.New())
	return f
}

func (f *fixture) addProfile(t *testing.T, name string) string {
	id := uuid.New().String()
	require.NoError(t, f.db.Create(&models.Profile{
		ID:       id,
		Name:     name,
		Email:    name + "@example.com",
		UserType: models.UserTypeChild,
	}).Error)
	return id
}

func (f *fixture) addNotification(t *testing.T, userID, title string, read bool, at time.Time) string {
	n := &models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   title,
		Read:      read,
		CreatedAt: at,
	}
	require.NoError(t, f.db.Create(n).Error)
	return n.ID
}

func TestList_NewestFirstWithCounts(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	user := uuid.New().String()
	base := time.Now().Add(-time.Hour)

	f.addNotification(t, user, "oldest", true, base)
	f.addNotification(t, user, "middle", false, base.Add(time.Minute))
	f.addNotification(t, user, "newest", false, base.Add(2*time.Minute))
	f.addNotification(t, uuid.New().String(), "someone else", false, base)

	page, err := f.uc.List(ctx, user, entity.NotificationQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Notifications, 2)
	assert.Equal(t, "newest", page.Notifications[0].Title)
	assert.Equal(t, "middle", page.Notifications[1].Title)
	assert.EqualValues(t, 3, page.Total)
	assert.EqualValues(t, 2, page.Unread)

	page, err = f.uc.List(ctx, user, entity.NotificationQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, "oldest", page.Notifications[0].Title)
	assert.Equal(t, 2, page.Offset)

	page, err = f.uc.List(ctx, user, entity.NotificationQuery{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 2)
	assert.EqualValues(t, 2, page.Total)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	f := newFixture(t, true)

	page, err := f.uc.List(context.Background(), uuid.New().String(), entity.NotificationQuery{})
	require.NoError(t, err)
	assert.NotNil(t, page.Notifications)
	assert.Empty(t, page.Notifications)
}

func TestMarkRead_IdempotentAndOwned(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	user := uuid.New().String()
	id := f.addNotification(t, user, "Welcome", false, time.Now())

	n, err := f.uc.MarkRead(ctx, user, id)
	require.NoError(t, err)
	assert.True(t, n.Read)
	require.Equal(t, 1, f.published.count())
	change := f.published.changes[0]
	assert.Equal(t, realtime.EventUpdate, change.Event)
	assert.Equal(t, true, change.New["read"])
	assert.Equal(t, false, change.Old["read"])

	n, err = f.uc.MarkRead(ctx, user, id)
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.Equal(t, 1, f.published.count())

	_, err = f.uc.MarkRead(ctx, uuid.New().String(), id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.uc.MarkRead(ctx, user, uuid.New().String())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	user := uuid.New().String()
	f.addNotification(t, user, "one", false, time.Now())
	f.addNotification(t, user, "two", false, time.Now())
	f.addNotification(t, user, "three", true, time.Now())

	updated, err := f.uc.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)
	assert.Equal(t, 2, f.published.count())

	updated, err = f.uc.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, updated)

	page, err := f.uc.List(ctx, user, entity.NotificationQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Unread)
}

func TestCreate(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	user := uuid.New().String()

	n, err := f.uc.Create(ctx, entity.NewNotification{UserID: user, Title: " New story ", Message: "Noah's Ark is live"})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "New story", n.Title)
	assert.Equal(t, models.NotificationInfo, n.Type)
	assert.False(t, n.Read)

	require.Equal(t, 1, f.published.count())
	change := f.published.changes[0]
	assert.Equal(t, "notifications", change.Table)
	assert.Equal(t, realtime.EventInsert, change.Event)
	assert.Equal(t, user, change.New["user_id"])
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t, true)
	user := uuid.New().String()

	tests := []struct {
		name string
		in   entity.NewNotification
	}{
		{"missing recipient", entity.NewNotification{Title: "t", Message: "m"}},
		{"blank title", entity.NewNotification{UserID: user, Title: "  ", Message: "m"}},
		{"blank message", entity.NewNotification{UserID: user, Title: "t"}},
		{"unknown type", entity.NewNotification{UserID: user, Title: "t", Message: "m", Type: "urgent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Create(context.Background(), tt.in)
			assert.True(t, apperr.Is(err, apperr.KindInvalidInput))
		})
	}
	assert.Zero(t, f.published.count())
}

func TestBroadcast_ExplicitRecipients(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	a, b := uuid.New().String(), uuid.New().String()

	result, err := f.uc.Broadcast(ctx, entity.Broadcast{
		UserIDs: []string{a, b, a, ""},
		Title:   "Maintenance",
		Message: "Back soon",
		Type:    models.NotificationWarning,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SentCount)
	assert.False(t, result.Queued)
	assert.Equal(t, 2, f.published.count())
	assert.Empty(t, f.tasks.tasks)

	page, err := f.uc.List(ctx, a, entity.NotificationQuery{})
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, models.NotificationWarning, page.Notifications[0].Type)
}

func TestBroadcast_AllIsQueued(t *testing.T) {
	f := newFixture(t, true)

	result, err := f.uc.Broadcast(context.Background(), entity.Broadcast{All: true, Title: "Hello", Message: "Everyone"})
	require.NoError(t, err)
	assert.True(t, result.Queued)
	require.Len(t, f.tasks.tasks, 1)
	task := f.tasks.tasks[0]
	assert.Equal(t, queue.TaskBroadcast, task.Type)
	assert.True(t, task.All)
	assert.Equal(t, "info", task.NotificationType)
	assert.Zero(t, f.published.count())
}

func TestBroadcast_AllWithoutQueueRunsInline(t *testing.T) {
	f := newFixture(t, false)
	f.addProfile(t, "noah")
	f.addProfile(t, "ada")

	result, err := f.uc.Broadcast(context.Background(), entity.Broadcast{All: true, Title: "Hello", Message: "Everyone"})
	require.NoError(t, err)
	assert.False(t, result.Queued)
	assert.Equal(t, 2, result.SentCount)
}

func TestBroadcast_Errors(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.uc.Broadcast(ctx, entity.Broadcast{Title: "t", Message: "m"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	f.tasks.err = errors.New("channel closed")
	_, err = f.uc.Broadcast(ctx, entity.Broadcast{All: true, Title: "t", Message: "m"})
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestHandleTask(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	noah := f.addProfile(t, "noah")
	ada := f.addProfile(t, "ada")

	require.NoError(t, f.uc.HandleTask(ctx, queue.Task{
		Type:             queue.TaskFeedbackResponse,
		UserIDs:          []string{noah},
		Title:            "New response to your feedback on Noah's Ark",
		Message:          "Thanks!",
		NotificationType: "info",
		FeedbackID:       uuid.New().String(),
	}))
	require.NoError(t, f.uc.HandleTask(ctx, queue.Task{Type: queue.TaskBroadcast, All: true, Title: "Hi", Message: "All"}))

	page, err := f.uc.List(ctx, noah, entity.NotificationQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = f.uc.List(ctx, ada, entity.NotificationQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestHandleTask_DropsInvalidTasks(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	assert.NoError(t, f.uc.HandleTask(ctx, queue.Task{Type: "like", UserIDs: []string{uuid.New().String()}, Title: "t", Message: "m"}))
	assert.NoError(t, f.uc.HandleTask(ctx, queue.Task{Type: queue.TaskNotification, UserIDs: []string{uuid.New().String()}}))
	assert.Zero(t, f.published.count())
}
