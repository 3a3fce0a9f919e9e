package entity

import (
	"time"

	"storynest/pkg/models"
)

type Content struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Type      models.ContentType `json:"type"`
	URL       string             `json:"url"`
	CreatedBy *string            `json:"created_by,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// ContentFilter narrows a listing. Search is a case-insensitive title
// substring.
type ContentFilter struct {
	Type   models.ContentType
	Search string
}

type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ContentID string    `json:"content_id"`
	CreatedAt time.Time `json:"created_at"`
	Content   *Content  `json:"content,omitempty"`
}

// ContentDraft is what an uploader submits. URL is ignored when a file is
// attached.
type ContentDraft struct {
	Title string
	Type  models.ContentType
	URL   string
}
