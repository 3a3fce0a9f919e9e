package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is unique per (user, content); a second submission overwrites
// rating and comment.
type Feedback struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_user_content" json:"user_id"`
	ContentID string    `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_user_content;index" json:"content_id"`
	Rating    int       `gorm:"not null;check:chk_feedback_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment   *string   `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Responses []FeedbackResponse `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Feedback) TableName() string {
	return "feedback"
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

type FeedbackResponse struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	FeedbackID string    `gorm:"type:uuid;not null;index" json:"feedback_id"`
	AdminID    string    `gorm:"type:uuid;not null" json:"admin_id"`
	Response   string    `gorm:"type:text;not null" json:"response"`
	CreatedAt  time.Time `json:"created_at"`
}

func (FeedbackResponse) TableName() string {
	return "feedback_responses"
}

func (r *FeedbackResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
