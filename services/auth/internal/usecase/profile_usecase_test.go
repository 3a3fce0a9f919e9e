package usecase

import (
	"context"
	"strings"
	"testing"

	"storynest/pkg/apperr"
	"storynest/pkg/models"
	"storynest/pkg/realtime"
	"storynest/services/auth/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.auth.SignUp(ctx, "kid@example.com", "secret123", noClient)
	require.NoError(t, err)

	name := "  Noah  "
	bio := "I like arks"
	profile, err := f.profiles.Update(ctx, session.User.ID, entity.ProfilePatch{Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Noah", profile.Name)
	require.NotNil(t, profile.Bio)
	assert.Equal(t, "I like arks", *profile.Bio)

	blank := "   "
	profile, err = f.profiles.Update(ctx, session.User.ID, entity.ProfilePatch{Bio: &blank})
	require.NoError(t, err)
	assert.Nil(t, profile.Bio)
	assert.Equal(t, "Noah", profile.Name)

	_, err = f.profiles.Update(ctx, session.User.ID, entity.ProfilePatch{Name: &blank})
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	last := f.published.changes[len(f.published.changes)-1]
	assert.Equal(t, realtime.EventUpdate, last.Event)
	assert.Equal(t, session.User.ID, last.New["id"])
}

func TestProfile_UploadAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.auth.SignUp(ctx, "kid@example.com", "secret123", noClient)
	require.NoError(t, err)

	key := "avatars/" + session.User.ID + "/a.png"
	profile, err := f.profiles.UploadAvatar(ctx, session.User.ID, strings.NewReader("png"), key, "image/png")
	require.NoError(t, err)
	require.NotNil(t, profile.AvatarURL)
	assert.Equal(t, "https://cdn.example.com/"+key, *profile.AvatarURL)
	assert.Equal(t, []string{key}, f.storage.keys)
}

func TestProfile_ListAndUserType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.auth.SignUp(ctx, "a@example.com", "secret123", noClient)
	require.NoError(t, err)
	_, err = f.auth.SignUp(ctx, "b@example.com", "secret123", noClient)
	require.NoError(t, err)

	profiles, err := f.profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)

	_, err = f.profiles.UpdateUserType(ctx, first.User.ID, models.UserType("wizard"))
	assert.True(t, apperr.Is(err, apperr.KindInvalidInput))

	updated, err := f.profiles.UpdateUserType(ctx, first.User.ID, models.UserTypeAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeAdmin, updated.UserType)

	_, err = f.profiles.Get(ctx, "00000000-0000-0000-0000-000000000000")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
