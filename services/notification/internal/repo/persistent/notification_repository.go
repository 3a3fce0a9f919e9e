package persistent

import (
	"context"

	"storynest/pkg/models"
	"storynest/services/notification/internal/entity"

	"gorm.io/gorm"
)

const insertBatchSize = 500

type NotificationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	// CreateBatch inserts every notification in one transaction.
	CreateBatch(ctx context.Context, notifications []*entity.Notification) ([]*entity.Notification, error)
	List(ctx context.Context, userID string, query entity.NotificationQuery) ([]*entity.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	// MarkRead flips the read flag and reports whether the row changed.
	MarkRead(ctx context.Context, id string) (bool, error)
	// MarkAllRead returns the rows that were unread before the update.
	MarkAllRead(ctx context.Context, userID string) ([]*entity.Notification, error)
	// ProfileIDs lists the recipients of a broadcast to everyone.
	ProfileIDs(ctx context.Context) ([]string, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	var row models.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return ToNotificationEntity(&row), nil
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*entity.Notification) ([]*entity.Notification, error) {
	if len(notifications) == 0 {
		return nil, nil
	}
	rows := make([]models.Notification, len(notifications))
	for i, n := range notifications {
		rows[i] = *ToNotificationModel(n)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&rows, insertBatchSize).Error
	})
	if err != nil {
		return nil, err
	}
	return toNotificationEntities(rows), nil
}

func (r *notificationRepository) scope(ctx context.Context, userID string, unreadOnly bool) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	return q
}

func (r *notificationRepository) List(ctx context.Context, userID string, query entity.NotificationQuery) ([]*entity.Notification, int64, error) {
	var total int64
	if err := r.scope(ctx, userID, query.UnreadOnly).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Notification
	err := r.scope(ctx, userID, query.UnreadOnly).
		Order("created_at DESC").
		Limit(query.Limit).
		Offset(query.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return toNotificationEntities(rows), total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var unread int64
	err := r.scope(ctx, userID, true).Count(&unread).Error
	return unread, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND read = ?", id, false).
		Update("read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) ([]*entity.Notification, error) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND read = ?", userID, false).Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		ids := make([]string, len(rows))
		for i := range rows {
			ids[i] = rows[i].ID
		}
		return tx.Model(&models.Notification{}).Where("id IN ?", ids).Update("read", true).Error
	})
	if err != nil {
		return nil, err
	}
	return toNotificationEntities(rows), nil
}

func (r *notificationRepository) ProfileIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Profile{}).Order("created_at").Pluck("id", &ids).Error
	return ids, err
}
