package persistent

import (
	"context"

	"storynest/pkg/models"
	"storynest/services/auth/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	// CreateIfMissing inserts profile unless a row with its id exists, then
	// returns the stored row.
	CreateIfMissing(ctx context.Context, profile *entity.Profile) (*entity.Profile, bool, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*entity.Profile, error)
	List(ctx context.Context) ([]*entity.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	var profileModel models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profileModel).Error; err != nil {
		return nil, err
	}
	return ToProfileEntity(&profileModel), nil
}

func (r *profileRepository) CreateIfMissing(ctx context.Context, profile *entity.Profile) (*entity.Profile, bool, error) {
	profileModel := ToProfileModel(profile)
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(profileModel)
	if result.Error != nil {
		return nil, false, result.Error
	}

	stored, err := r.GetByID(ctx, profile.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, result.RowsAffected > 0, nil
}

func (r *profileRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (*entity.Profile, error) {
	if len(fields) > 0 {
		result := r.db.WithContext(ctx).Model(&models.Profile{ID: id}).Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *profileRepository) List(ctx context.Context) ([]*entity.Profile, error) {
	var profileModels []models.Profile
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&profileModels).Error; err != nil {
		return nil, err
	}

	profiles := make([]*entity.Profile, len(profileModels))
	for i := range profileModels {
		profiles[i] = ToProfileEntity(&profileModels[i])
	}
	return profiles, nil
}
