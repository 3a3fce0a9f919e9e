package entity

import (
	"time"

	"storynest/pkg/models"
)

// Notification is a message addressed to one user.
type Notification struct {
	ID        string                  `json:"id"`
	UserID    string                  `json:"user_id"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      models.NotificationType `json:"type"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
}

type NotificationQuery struct {
	Limit      int
	Offset     int
	UnreadOnly bool
}

type NotificationPage struct {
	Notifications []*Notification `json:"notifications"`
	Total         int64           `json:"total"`
	Unread        int64           `json:"unread"`
	Offset        int             `json:"offset"`
}

type NewNotification struct {
	UserID  string
	Title   string
	Message string
	Type    models.NotificationType
}

// Broadcast targets UserIDs, or every profile when All is set.
type Broadcast struct {
	UserIDs []string
	All     bool
	Title   string
	Message string
	Type    models.NotificationType
}

type BroadcastResult struct {
	SentCount int  `json:"sent_count"`
	Queued    bool `json:"queued"`
}
