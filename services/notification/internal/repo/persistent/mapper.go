package persistent

import (
	"storynest/pkg/models"
	"storynest/services/notification/internal/entity"
)

func ToNotificationEntity(m *models.Notification) *entity.Notification {
	if m == nil {
		return nil
	}
	return &entity.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Message:   m.Message,
		Type:      m.Type,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

func ToNotificationModel(e *entity.Notification) *models.Notification {
	if e == nil {
		return nil
	}
	return &models.Notification{
		ID:        e.ID,
		UserID:    e.UserID,
		Title:     e.Title,
		Message:   e.Message,
		Type:      e.Type,
		Read:      e.Read,
		CreatedAt: e.CreatedAt,
	}
}

func toNotificationEntities(rows []models.Notification) []*entity.Notification {
	notifications := make([]*entity.Notification, len(rows))
	for i := range rows {
		notifications[i] = ToNotificationEntity(&rows[i])
	}
	return notifications
}
