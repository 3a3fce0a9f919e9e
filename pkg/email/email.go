package email

import (
	"context"
	"fmt"
	"net/http"

	"storynest/pkg/config"
	"storynest/pkg/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns a SendGrid sender when an API key is configured and a
// logging sender otherwise.
func NewSender(cfg *config.Config, log *logger.Logger) Sender {
	if cfg.SendGridAPIKey == "" {
		return &LogSender{logger: log}
	}
	return &SendGridSender{
		key:    cfg.SendGridAPIKey,
		from:   sgmail.NewEmail(cfg.MailFromName, cfg.MailFromEmail),
		logger: log,
	}
}

type SendGridSender struct {
	key    string
	from   *sgmail.Email
	logger *logger.Logger
}

func (s *SendGridSender) build(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.Text),
		sgmail.NewContent("text/html", msg.HTML),
	)
	return m
}

func (s *SendGridSender) Send(_ context.Context, msg Message) error {
	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.build(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending email: status %d: %s", res.StatusCode, res.Body)
	}
	s.logger.Info("Sent %q to %s", msg.Subject, msg.ToEmail)
	return nil
}

// LogSender writes messages to the log. Used in development.
type LogSender struct {
	logger *logger.Logger
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("[EMAIL] to=%s subject=%q\n%s", msg.ToEmail, msg.Subject, msg.Text)
	return nil
}
