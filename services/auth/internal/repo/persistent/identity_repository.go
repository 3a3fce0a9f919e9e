package persistent

import (
	"context"
	"time"

	"storynest/pkg/models"
	"storynest/services/auth/internal/entity"

	"gorm.io/gorm"
)

type IdentityRepository interface {
	// CreateWithProfile inserts the identity and its profile in one
	// transaction.
	CreateWithProfile(ctx context.Context, user *entity.User, profile *entity.Profile) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	MarkSignedIn(ctx context.Context, id string, at time.Time) error
	ConfirmEmail(ctx context.Context, id string, at time.Time) error
}

type identityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) CreateWithProfile(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	identityModel := ToIdentityModel(user)
	profileModel := ToProfileModel(profile)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(identityModel).Error; err != nil {
			return err
		}
		profileModel.ID = identityModel.ID
		return tx.Create(profileModel).Error
	})
	if err != nil {
		return err
	}

	*user = *ToUserEntity(identityModel)
	*profile = *ToProfileEntity(profileModel)
	return nil
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var identityModel models.Identity
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&identityModel).Error; err != nil {
		return nil, err
	}
	return ToUserEntity(&identityModel), nil
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var identityModel models.Identity
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&identityModel).Error; err != nil {
		return nil, err
	}
	return ToUserEntity(&identityModel), nil
}

func (r *identityRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateColumn(ctx, id, "password_hash", passwordHash)
}

func (r *identityRepository) MarkSignedIn(ctx context.Context, id string, at time.Time) error {
	return r.updateColumn(ctx, id, "last_sign_in_at", at)
}

func (r *identityRepository) ConfirmEmail(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Identity{}).
		Where("id = ? AND email_confirmed_at IS NULL", id).
		Update("email_confirmed_at", at).Error
}

func (r *identityRepository) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Identity{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
