package persistent

import (
	"context"
	"strings"

	"storynest/pkg/models"
	"storynest/services/content/internal/entity"

	"gorm.io/gorm"
)

type ContentRepository interface {
	Create(ctx context.Context, content *entity.Content) error
	GetByID(ctx context.Context, id string) (*entity.Content, error)
	List(ctx context.Context, filter entity.ContentFilter) ([]*entity.Content, error)
}

type contentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, content *entity.Content) error {
	contentModel := ToContentModel(content)
	if err := r.db.WithContext(ctx).Create(contentModel).Error; err != nil {
		return err
	}
	*content = *ToContentEntity(contentModel)
	return nil
}

func (r *contentRepository) GetByID(ctx context.Context, id string) (*entity.Content, error) {
	var contentModel models.Content
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&contentModel).Error; err != nil {
		return nil, err
	}
	return ToContentEntity(&contentModel), nil
}

func (r *contentRepository) List(ctx context.Context, filter entity.ContentFilter) ([]*entity.Content, error) {
	var contentModels []models.Content
	query := r.db.WithContext(ctx).Order("created_at DESC")

	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(search))+"%")
	}

	if err := query.Find(&contentModels).Error; err != nil {
		return nil, err
	}

	items := make([]*entity.Content, len(contentModels))
	for i := range contentModels {
		items[i] = ToContentEntity(&contentModels[i])
	}
	return items, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
