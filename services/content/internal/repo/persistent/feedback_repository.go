package persistent

import (
	"context"
	"time"

	"storynest/pkg/models"
	"storynest/services/content/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeedbackRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Feedback, error)
	GetByUserAndContent(ctx context.Context, userID, contentID string) (*entity.Feedback, error)
	// Upsert writes the user's feedback for a content item, replacing rating
	// and comment if it already exists, and returns the stored row.
	Upsert(ctx context.Context, feedback *entity.Feedback) (*entity.Feedback, error)
	// ListByContent returns feedback newest first, each with its author and
	// responses oldest first.
	ListByContent(ctx context.Context, contentID string) ([]*entity.Feedback, error)
	Rating(ctx context.Context, contentID string) (float64, int64, error)
	CreateResponse(ctx context.Context, response *entity.FeedbackResponse) error
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) GetByID(ctx context.Context, id string) (*entity.Feedback, error) {
	var feedbackModel models.Feedback
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&feedbackModel).Error; err != nil {
		return nil, err
	}
	return ToFeedbackEntity(&feedbackModel), nil
}

func (r *feedbackRepository) GetByUserAndContent(ctx context.Context, userID, contentID string) (*entity.Feedback, error) {
	var feedbackModel models.Feedback
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		First(&feedbackModel).Error; err != nil {
		return nil, err
	}
	return ToFeedbackEntity(&feedbackModel), nil
}

func (r *feedbackRepository) Upsert(ctx context.Context, feedback *entity.Feedback) (*entity.Feedback, error) {
	feedbackModel := ToFeedbackModel(feedback)
	feedbackModel.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(feedbackModel).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserAndContent(ctx, feedback.UserID, feedback.ContentID)
}

func (r *feedbackRepository) ListByContent(ctx context.Context, contentID string) ([]*entity.Feedback, error) {
	db := r.db.WithContext(ctx)

	var feedbackModels []models.Feedback
	if err := db.Where("content_id = ?", contentID).Order("created_at DESC").Find(&feedbackModels).Error; err != nil {
		return nil, err
	}
	if len(feedbackModels) == 0 {
		return []*entity.Feedback{}, nil
	}

	feedbackIDs := make([]string, len(feedbackModels))
	profileIDs := make([]string, 0, len(feedbackModels))
	for i := range feedbackModels {
		feedbackIDs[i] = feedbackModels[i].ID
		profileIDs = append(profileIDs, feedbackModels[i].UserID)
	}

	var responseModels []models.FeedbackResponse
	if err := db.Where("feedback_id IN ?", feedbackIDs).Order("created_at ASC").Find(&responseModels).Error; err != nil {
		return nil, err
	}
	for i := range responseModels {
		profileIDs = append(profileIDs, responseModels[i].AdminID)
	}

	profiles, err := r.profilesByID(db, profileIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entity.Feedback, len(feedbackModels))
	items := make([]*entity.Feedback, len(feedbackModels))
	for i := range feedbackModels {
		item := ToFeedbackEntity(&feedbackModels[i])
		if p, ok := profiles[item.UserID]; ok {
			item.Author = &entity.Author{Name: p.Name, AvatarURL: p.AvatarURL}
		}
		items[i] = item
		byID[item.ID] = item
	}

	for i := range responseModels {
		response := ToFeedbackResponseEntity(&responseModels[i])
		if p, ok := profiles[response.AdminID]; ok {
			response.AdminName = p.Name
		}
		parent := byID[response.FeedbackID]
		parent.Responses = append(parent.Responses, *response)
	}

	return items, nil
}

func (r *feedbackRepository) profilesByID(db *gorm.DB, ids []string) (map[string]models.Profile, error) {
	var profileModels []models.Profile
	if err := db.Where("id IN ?", ids).Find(&profileModels).Error; err != nil {
		return nil, err
	}
	profiles := make(map[string]models.Profile, len(profileModels))
	for _, p := range profileModels {
		profiles[p.ID] = p
	}
	return profiles, nil
}

func (r *feedbackRepository) Rating(ctx context.Context, contentID string) (float64, int64, error) {
	var row struct {
		Average *float64
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).
		Select("AVG(rating) AS average, COUNT(*) AS count").
		Where("content_id = ?", contentID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.Average == nil {
		return 0, row.Count, nil
	}
	return *row.Average, row.Count, nil
}

func (r *feedbackRepository) CreateResponse(ctx context.Context, response *entity.FeedbackResponse) error {
	responseModel := &models.FeedbackResponse{
		FeedbackID: response.FeedbackID,
		AdminID:    response.AdminID,
		Response:   response.Response,
	}
	if err := r.db.WithContext(ctx).Create(responseModel).Error; err != nil {
		return err
	}

	adminName := response.AdminName
	*response = *ToFeedbackResponseEntity(responseModel)
	response.AdminName = adminName

	var admin models.Profile
	if err := r.db.WithContext(ctx).Select("name").Where("id = ?", response.AdminID).First(&admin).Error; err == nil {
		response.AdminName = admin.Name
	}
	return nil
}
