package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type updateUserTypeRequest struct {
	UserType string `validate:"required,user_type"`
}

type createContentRequest struct {
	Title string `validate:"required"`
	Type  string `validate:"required,content_type"`
}

type notificationRequest struct {
	Type string `validate:"notification_type"`
}

func TestRegisterOn(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	assert.NoError(t, v.Struct(updateUserTypeRequest{UserType: "guardian"}))
	assert.Error(t, v.Struct(updateUserTypeRequest{UserType: "superuser"}))

	assert.NoError(t, v.Struct(createContentRequest{Title: "Noah's Ark", Type: "story"}))
	err := v.Struct(createContentRequest{Title: "Noah's Ark", Type: "podcast"})
	assert.Equal(t, map[string]string{"Type": "content_type"}, FieldErrors(err))

	assert.NoError(t, v.Struct(notificationRequest{}))
	assert.NoError(t, v.Struct(notificationRequest{Type: "warning"}))
	assert.Error(t, v.Struct(notificationRequest{Type: "urgent"}))
}

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}

func TestRegisterOn_ReportsRegistrationError(t *testing.T) {
	v := validator.New()
	enumTags["broken"] = nil
	defer delete(enumTags, "broken")

	err := RegisterOn(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register broken validation")
}
