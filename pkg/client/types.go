package client

import (
	"time"

	"storynest/pkg/models"
)

type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time `json:"last_sign_in_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type Session struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	RefreshToken string   `json:"refresh_token"`
	User         User     `json:"user"`
	Profile      *Profile `json:"profile,omitempty"`
}

// Expired reports whether the access token expires within leeway of now.
func (s *Session) Expired(now time.Time, leeway time.Duration) bool {
	if s == nil || s.ExpiresAt == 0 {
		return false
	}
	return now.Add(leeway).Unix() >= s.ExpiresAt
}

type Profile struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	UserType  models.UserType `json:"user_type"`
	AvatarURL *string         `json:"avatar_url"`
	Bio       *string         `json:"bio"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.UserType == models.UserTypeAdmin
}

func (p *Profile) CanUpload() bool {
	return p != nil && p.UserType.CanUpload()
}

type ProfileUpdate struct {
	Name *string `json:"name,omitempty"`
	Bio  *string `json:"bio,omitempty"`
}

type Content struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Type      models.ContentType `json:"type"`
	URL       string             `json:"url"`
	CreatedBy *string            `json:"created_by,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// ContentMetrics is a content item with its feedback totals. AverageRating is
// nil when nobody has rated it.
type ContentMetrics struct {
	Content
	FeedbackCount int64    `json:"feedback_count"`
	AverageRating *float64 `json:"average_rating"`
}

// ContentQuery narrows a content listing. Search matches titles
// case-insensitively.
type ContentQuery struct {
	Type   models.ContentType
	Search string
}

type NewContent struct {
	Title string             `json:"title"`
	Type  models.ContentType `json:"type"`
	URL   string             `json:"url,omitempty"`
}

type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ContentID string    `json:"content_id"`
	CreatedAt time.Time `json:"created_at"`
	Content   *Content  `json:"content,omitempty"`
}

type Author struct {
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

type FeedbackResponse struct {
	ID         string    `json:"id"`
	FeedbackID string    `json:"feedback_id"`
	AdminID    string    `json:"admin_id"`
	AdminName  string    `json:"admin_name"`
	Response   string    `json:"response"`
	CreatedAt  time.Time `json:"created_at"`
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

type FeedbackSubmission struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type FeedbackList struct {
	Feedback      []Feedback `json:"feedback"`
	AverageRating float64    `json:"average_rating"`
	Count         int        `json:"count"`
}

type Notification struct {
	ID        string                  `json:"id"`
	UserID    string                  `json:"user_id"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      models.NotificationType `json:"type"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
}

type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	Unread        int64          `json:"unread"`
	Offset        int            `json:"offset"`
}

type NewNotification struct {
	UserID  string                  `json:"user_id"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	Type    models.NotificationType `json:"type,omitempty"`
}

// Broadcast targets UserIDs, or every profile when All is set.
type Broadcast struct {
	UserIDs []string                `json:"user_ids,omitempty"`
	All     bool                    `json:"all,omitempty"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	Type    models.NotificationType `json:"type,omitempty"`
}

type BroadcastResult struct {
	SentCount int  `json:"sent_count"`
	Queued    bool `json:"queued"`
}
