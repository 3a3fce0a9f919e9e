package models

import "time"

type UserType string

const (
	UserTypeChild    UserType = "child"
	UserTypeGuardian UserType = "guardian"
	UserTypeTeacher  UserType = "teacher"
	UserTypeAdmin    UserType = "admin"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeChild, UserTypeGuardian, UserTypeTeacher, UserTypeAdmin:
		return true
	}
	return false
}

// CanUpload reports whether the user type may publish content.
func (t UserType) CanUpload() bool {
	return t == UserTypeTeacher || t == UserTypeAdmin
}

// Profile shares its primary key with the identity it describes.
type Profile struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Email     string    `gorm:"type:varchar(320);not null" json:"email"`
	UserType  UserType  `gorm:"type:varchar(20);not null;default:'child';index" json:"user_type"`
	AvatarURL *string   `gorm:"type:varchar(500)" json:"avatar_url"`
	Bio       *string   `gorm:"type:text" json:"bio"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
