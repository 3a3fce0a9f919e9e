package persistent

import (
	"context"
	"time"

	"storynest/pkg/models"
	"storynest/services/auth/internal/entity"

	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.RefreshSession) error
	GetByTokenHash(ctx context.Context, hash string) (*entity.RefreshSession, error)
	// Revoke marks an active session revoked and reports whether this call
	// did it.
	Revoke(ctx context.Context, id string, at time.Time) (bool, error)
	RevokeAllForUser(ctx context.Context, userID string, at time.Time) (int64, error)
	// DeleteStale removes sessions that expired or were revoked before cutoff.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.RefreshSession) error {
	sessionModel := ToRefreshSessionModel(session)
	if err := r.db.WithContext(ctx).Create(sessionModel).Error; err != nil {
		return err
	}
	*session = *ToRefreshSessionEntity(sessionModel)
	return nil
}

func (r *sessionRepository) GetByTokenHash(ctx context.Context, hash string) (*entity.RefreshSession, error) {
	var sessionModel models.RefreshSession
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&sessionModel).Error; err != nil {
		return nil, err
	}
	return ToRefreshSessionEntity(&sessionModel), nil
}

func (r *sessionRepository) Revoke(ctx context.Context, id string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.RefreshSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *sessionRepository) RevokeAllForUser(ctx context.Context, userID string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.RefreshSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at)
	return result.RowsAffected, result.Error
}

func (r *sessionRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at < ?", cutoff, cutoff).
		Delete(&models.RefreshSession{})
	return result.RowsAffected, result.Error
}
