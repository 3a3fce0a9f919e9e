package usecase

import (
	"context"
	"errors"

	"storynest/pkg/apperr"
	"storynest/pkg/logger"
	"storynest/pkg/realtime"
	"storynest/services/content/internal/entity"
	"storynest/services/content/internal/repo/persistent"

	"gorm.io/gorm"
)

type FavoriteUseCase interface {
	// Toggle removes the favorite if it exists and adds it otherwise. It
	// returns whether the content is now a favorite.
	Toggle(ctx context.Context, userID, contentID string) (bool, error)
	IsFavorited(ctx context.Context, userID, contentID string) (bool, error)
	List(ctx context.Context, userID string) ([]*entity.Favorite, error)
}

type favoriteUseCase struct {
	favoriteRepo persistent.FavoriteRepository
	contentRepo  persistent.ContentRepository
	changes      changeNotifier
	logger       *logger.Logger
}

func NewFavoriteUseCase(
	favoriteRepo persistent.FavoriteRepository,
	contentRepo persistent.ContentRepository,
	publisher realtime.Publisher,
	logger *logger.Logger,
) FavoriteUseCase {
	return &favoriteUseCase{
		favoriteRepo: favoriteRepo,
		contentRepo:  contentRepo,
		changes:      newChangeNotifier(publisher, logger),
		logger:       logger,
	}
}

func (uc *favoriteUseCase) Toggle(ctx context.Context, userID, contentID string) (bool, error) {
	if _, err := uc.contentRepo.GetByID(ctx, contentID); err != nil {
		return false, apperr.Wrap(err, apperr.KindOf(err), "Content not found")
	}

	removed, err := uc.favoriteRepo.Delete(ctx, userID, contentID)
	if err != nil {
		uc.logger.Error("Failed to remove favorite: %v", err)
		return false, apperr.Wrap(err, apperr.KindInternal, "Failed to update favorite")
	}
	if removed != nil {
		uc.changes.notify(ctx, favoritesTable, realtime.EventDelete, nil, removed)
		return false, nil
	}

	added, err := uc.favoriteRepo.Create(ctx, userID, contentID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent toggle added it first.
		return true, nil
	}
	if err != nil {
		uc.logger.Error("Failed to add favorite: %v", err)
		return false, apperr.Wrap(err, apperr.KindInternal, "Failed to update favorite")
	}
	uc.changes.notify(ctx, favoritesTable, realtime.EventInsert, added, nil)
	return true, nil
}

func (uc *favoriteUseCase) IsFavorited(ctx context.Context, userID, contentID string) (bool, error) {
	_, err := uc.favoriteRepo.Get(ctx, userID, contentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Wrap(err, apperr.KindInternal, "Failed to check favorite")
	}
	return true, nil
}

func (uc *favoriteUseCase) List(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	favorites, err := uc.favoriteRepo.ListByUser(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to list favorites: %v", err)
		return nil, apperr.Wrap(err, apperr.KindInternal, "Failed to list favorites")
	}
	return favorites, nil
}
