package email

import (
	"context"
	"encoding/json"
	"testing"

	"storynest/pkg/config"
	"storynest/pkg/logger"

	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSender_FallsBackToLog(t *testing.T) {
	sender := NewSender(&config.Config{}, logger.New())
	_, ok := sender.(*LogSender)
	assert.True(t, ok)
	assert.NoError(t, sender.Send(context.Background(), Message{ToEmail: "noah@example.com", Subject: "Hi"}))
}

func TestSendGridSender_Build(t *testing.T) {
	sender := NewSender(&config.Config{
		SendGridAPIKey: "SG.key",
		MailFromName:   "StoryNest",
		MailFromEmail:  "no-reply@storynest.local",
	}, logger.New()).(*SendGridSender)

	body := sgmail.GetRequestBody(sender.build(Message{
		ToName:  "Noah",
		ToEmail: "noah@example.com",
		Subject: "Confirm your email",
		Text:    "Open the link",
		HTML:    "<p>Open the link</p>",
	}))

	var payload struct {
		From struct {
			Email string `json:"email"`
		} `json:"from"`
		Personalizations []struct {
			Subject string `json:"subject"`
			To      []struct {
				Email string `json:"email"`
			} `json:"to"`
		} `json:"personalizations"`
		Content []struct {
			Type string `json:"type"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "no-reply@storynest.local", payload.From.Email)
	require.Len(t, payload.Personalizations, 1)
	assert.Equal(t, "Confirm your email", payload.Personalizations[0].Subject)
	assert.Equal(t, "noah@example.com", payload.Personalizations[0].To[0].Email)
	assert.Len(t, payload.Content, 2)
}
