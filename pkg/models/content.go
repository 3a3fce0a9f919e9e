package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContentType string

const (
	ContentTypeStory ContentType = "story"
	ContentTypeVideo ContentType = "video"
	ContentTypeQuiz  ContentType = "quiz"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeStory, ContentTypeVideo, ContentTypeQuiz:
		return true
	}
	return false
}

// Content is immutable once created.
type Content struct {
	ID        string      `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string      `gorm:"type:varchar(300);not null" json:"title"`
	Type      ContentType `gorm:"type:varchar(20);not null;index" json:"type"`
	URL       string      `gorm:"type:varchar(1000);not null" json:"url"`
	CreatedBy *string     `gorm:"type:uuid;index" json:"created_by,omitempty"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
}

func (Content) TableName() string {
	return "content"
}

func (c *Content) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

type Favorite struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_content" json:"user_id"`
	ContentID string    `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_content;index" json:"content_id"`
	CreatedAt time.Time `json:"created_at"`

	Content *Content `gorm:"foreignKey:ContentID;constraint:OnDelete:CASCADE" json:"content,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}

func (f *Favorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}
