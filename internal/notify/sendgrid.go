package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/hyukudan/enroltimer/pkg/config"
)

// SendgridSender delivers notifications through the SendGrid v3 API.
type SendgridSender struct {
	client *sendgrid.Client
}

var _ Sender = (*SendgridSender)(nil)

// NewSendgridSender constructs the transport from the mail configuration.
func NewSendgridSender(cfg config.MailConfig) *SendgridSender {
	return &SendgridSender{client: sendgrid.NewSendClient(cfg.SendgridKey)}
}

// Send delivers a single message and returns SendGrid's message id.
func (s *SendgridSender) Send(ctx context.Context, msg *Message) (string, error) {
	m := sgmail.NewV3Mail()
	m.SetFrom(sgmail.NewEmail(msg.FromName, msg.FromAddress))

	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))
	m.AddPersonalizations(p)

	m.AddContent(
		sgmail.NewContent("text/plain", msg.PlainBody),
		sgmail.NewContent("text/html", msg.HTMLBody),
	)

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return "", fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("sendgrid send: unexpected status %d", resp.StatusCode)
	}

	ids := resp.Headers["X-Message-Id"]
	if len(ids) > 0 {
		return ids[0], nil
	}
	return "", nil
}
