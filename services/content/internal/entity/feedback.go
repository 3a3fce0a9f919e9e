package entity

import "time"

type Author struct {
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

type Feedback struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	ContentID string             `json:"content_id"`
	Rating    int                `json:"rating"`
	Comment   *string            `json:"comment"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Author    *Author            `json:"author,omitempty"`
	Responses []FeedbackResponse `json:"responses"`
}

// Row is the feedback as stored, without the joined author and responses.
func (f *Feedback) Row() map[string]interface{} {
	return map[string]interface{}{
		"id":         f.ID,
		"user_id":    f.UserID,
		"content_id": f.ContentID,
		"rating":     f.Rating,
		"comment":    f.Comment,
		"created_at": f.CreatedAt,
		"updated_at": f.UpdatedAt,
	}
}

type FeedbackResponse struct {
	ID         string    `json:"id"`
	FeedbackID string    `json:"feedback_id"`
	AdminID    string    `json:"admin_id"`
	AdminName  string    `json:"admin_name"`
	Response   string    `json:"response"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedbackSummary is the feedback left on one content item.
type FeedbackSummary struct {
	Feedback      []*Feedback `json:"feedback"`
	AverageRating float64     `json:"average_rating"`
	Count         int         `json:"count"`
}

// ContentMetrics is a content item with its feedback totals. AverageRating is
// nil until someone rates the item.
type ContentMetrics struct {
	Content
	FeedbackCount int64    `json:"feedback_count"`
	AverageRating *float64 `json:"average_rating"`
}
