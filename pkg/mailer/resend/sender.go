package resend

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/hirelane/mailroom/pkg/mailer"
)

// Sender implements mailer.Sender using the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a new Resend sender.
func New(cfg Config) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// Send implements mailer.Sender. The returned id is Resend's message
// identifier, later reported back on delivery webhooks.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	if len(email.To) == 0 {
		return "", mailer.ErrNoRecipient
	}

	from := email.From
	if from == "" {
		from = mailer.Recipient(s.config.SenderName, s.config.SenderEmail)
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
		Cc:      email.CC,
		Bcc:     email.BCC,
		Headers: email.Headers,
		Tags:    convertTags(email.Tags),
	}

	sent, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", errors.Join(mailer.ErrSendFailed, fmt.Errorf("resend: %w", err))
	}

	return sent.Id, nil
}

func convertTags(tags mailer.Tags) []resend.Tag {
	if len(tags) == 0 {
		return nil
	}
	result := make([]resend.Tag, 0, len(tags))
	for name, value := range tags {
		result = append(result, resend.Tag{Name: name, Value: value})
	}
	return result
}
