package persistent

import (
	"context"
	"errors"

	"storynest/pkg/models"
	"storynest/services/content/internal/entity"

	"gorm.io/gorm"
)

type FavoriteRepository interface {
	Get(ctx context.Context, userID, contentID string) (*entity.Favorite, error)
	Create(ctx context.Context, userID, contentID string) (*entity.Favorite, error)
	// Delete removes the favorite and returns the deleted row, or nil when
	// there was none.
	Delete(ctx context.Context, userID, contentID string) (*entity.Favorite, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Favorite, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Get(ctx context.Context, userID, contentID string) (*entity.Favorite, error) {
	var favoriteModel models.Favorite
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		First(&favoriteModel).Error; err != nil {
		return nil, err
	}
	return ToFavoriteEntity(&favoriteModel), nil
}

func (r *favoriteRepository) Create(ctx context.Context, userID, contentID string) (*entity.Favorite, error) {
	favoriteModel := &models.Favorite{UserID: userID, ContentID: contentID}
	if err := r.db.WithContext(ctx).Create(favoriteModel).Error; err != nil {
		return nil, err
	}
	return ToFavoriteEntity(favoriteModel), nil
}

func (r *favoriteRepository) Delete(ctx context.Context, userID, contentID string) (*entity.Favorite, error) {
	var deleted *entity.Favorite
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var favoriteModel models.Favorite
		err := tx.Where("user_id = ? AND content_id = ?", userID, contentID).First(&favoriteModel).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		result := tx.Delete(&models.Favorite{}, "id = ?", favoriteModel.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			deleted = ToFavoriteEntity(&favoriteModel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *favoriteRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	var favoriteModels []models.Favorite
	if err := r.db.WithContext(ctx).
		Preload("Content").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favoriteModels).Error; err != nil {
		return nil, err
	}

	favorites := make([]*entity.Favorite, len(favoriteModels))
	for i := range favoriteModels {
		favorites[i] = ToFavoriteEntity(&favoriteModels[i])
	}
	return favorites, nil
}
