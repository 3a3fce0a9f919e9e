package entity

import "time"

// Session is what a successful sign-in returns to the caller.
type Session struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	RefreshToken string   `json:"refresh_token"`
	User         *User    `json:"user"`
	Profile      *Profile `json:"profile,omitempty"`
}

// RefreshSession is the server-side record of an issued refresh token.
type RefreshSession struct {
	ID        string
	UserID    string
	TokenHash string
	UserAgent string
	IP        string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

func (s *RefreshSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// ClientInfo describes where a sign-in came from.
type ClientInfo struct {
	UserAgent string
	IP        string
}

type CodePurpose string

const (
	CodeSignup   CodePurpose = "signup"
	CodeRecovery CodePurpose = "recovery"
)
