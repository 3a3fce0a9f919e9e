package persistent

import (
	"storynest/pkg/models"
	"storynest/services/content/internal/entity"
)

func ToContentEntity(m *models.Content) *entity.Content {
	if m == nil {
		return nil
	}

	return &entity.Content{
		ID:        m.ID,
		Title:     m.Title,
		Type:      m.Type,
		URL:       m.URL,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

func ToContentModel(e *entity.Content) *models.Content {
	if e == nil {
		return nil
	}

	return &models.Content{
		ID:        e.ID,
		Title:     e.Title,
		Type:      e.Type,
		URL:       e.URL,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
	}
}

func ToFavoriteEntity(m *models.Favorite) *entity.Favorite {
	if m == nil {
		return nil
	}

	return &entity.Favorite{
		ID:        m.ID,
		UserID:    m.UserID,
		ContentID: m.ContentID,
		CreatedAt: m.CreatedAt,
		Content:   ToContentEntity(m.Content),
	}
}

func ToFeedbackEntity(m *models.Feedback) *entity.Feedback {
	if m == nil {
		return nil
	}

	return &entity.Feedback{
		ID:        m.ID,
		UserID:    m.UserID,
		ContentID: m.ContentID,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Responses: []entity.FeedbackResponse{},
	}
}

func ToFeedbackModel(e *entity.Feedback) *models.Feedback {
	if e == nil {
		return nil
	}

	return &models.Feedback{
		ID:        e.ID,
		UserID:    e.UserID,
		ContentID: e.ContentID,
		Rating:    e.Rating,
		Comment:   e.Comment,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func ToFeedbackResponseEntity(m *models.FeedbackResponse) *entity.FeedbackResponse {
	if m == nil {
		return nil
	}

	return &entity.FeedbackResponse{
		ID:         m.ID,
		FeedbackID: m.FeedbackID,
		AdminID:    m.AdminID,
		Response:   m.Response,
		CreatedAt:  m.CreatedAt,
	}
}
