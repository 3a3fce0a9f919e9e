package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBeforeCreate_AssignsID(t *testing.T) {
	identity := &Identity{Email: "noah@example.com"}
	assert.NoError(t, identity.BeforeCreate(nil))
	assert.NotEmpty(t, identity.ID)

	content := &Content{Title: "Noah's Ark", Type: ContentTypeStory}
	assert.NoError(t, content.BeforeCreate(nil))
	assert.NotEmpty(t, content.ID)

	feedback := &Feedback{UserID: "u1", ContentID: "c1", Rating: 4}
	assert.NoError(t, feedback.BeforeCreate(nil))
	assert.NotEmpty(t, feedback.ID)
}

func TestBeforeCreate_KeepsExistingID(t *testing.T) {
	favorite := &Favorite{ID: "existing-id-123", UserID: "u1", ContentID: "c1"}
	assert.NoError(t, favorite.BeforeCreate(nil))
	assert.Equal(t, "existing-id-123", favorite.ID)
}

func TestNotification_BeforeCreate_DefaultsType(t *testing.T) {
	n := &Notification{UserID: "u1", Title: "Hi", Message: "Welcome"}
	assert.NoError(t, n.BeforeCreate(nil))
	assert.Equal(t, NotificationInfo, n.Type)
	assert.False(t, n.Read)
}

func TestUserType(t *testing.T) {
	assert.True(t, UserTypeGuardian.Valid())
	assert.False(t, UserType("viewer").Valid())

	assert.True(t, UserTypeTeacher.CanUpload())
	assert.True(t, UserTypeAdmin.CanUpload())
	assert.False(t, UserTypeChild.CanUpload())
	assert.False(t, UserTypeGuardian.CanUpload())
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, ContentTypeQuiz.Valid())
	assert.False(t, ContentType("podcast").Valid())
	assert.True(t, NotificationWarning.Valid())
	assert.False(t, NotificationType("urgent").Valid())
}

func TestAll_ListsEveryTable(t *testing.T) {
	names := make([]string, 0)
	for _, m := range All() {
		if tn, ok := m.(interface{ TableName() string }); ok {
			names = append(names, tn.TableName())
		}
	}
	assert.Equal(t, []string{
		"identities", "refresh_sessions", "profiles", "content",
		"favorites", "feedback", "feedback_responses", "notifications",
	}, names)
}
