package entity

import (
	"time"

	"storynest/pkg/models"
)

type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	LastSignInAt     *time.Time `json:"last_sign_in_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
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

// ProfilePatch lists the fields a user may change on their own profile. Nil
// fields are left alone.
type ProfilePatch struct {
	Name *string
	Bio  *string
}
