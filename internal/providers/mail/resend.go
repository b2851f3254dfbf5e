// Package mail relays contact form submissions to the owner's inbox.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/resendlabs/resend-go"
	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/pkg/retry"
)

var ErrNotConfigured = errors.New("mail relay is not configured")

var contactTemplate = template.Must(template.New("contact").Parse(`<h2>New message from your portfolio</h2>
<p><strong>Name:</strong> {{.Name}}<br><strong>Email:</strong> {{.Email}}</p>
<p style="white-space: pre-wrap">{{.Message}}</p>
`))

type ResendSender struct {
	client *resend.Client
	from   string
	to     string
}

func NewResendSender(cfg core.MailConfig) (*ResendSender, error) {
	if cfg.GetResendAPIKey() == "" || cfg.GetMailTo() == "" {
		return nil, ErrNotConfigured
	}
	return &ResendSender{
		client: resend.NewClient(cfg.GetResendAPIKey()),
		from:   cfg.GetMailFrom(),
		to:     cfg.GetMailTo(),
	}, nil
}

func (s *ResendSender) SendContact(ctx context.Context, sub core.ContactSubmission) error {
	if err := ctx.Err(); err != nil {
		return retry.Permanent(err)
	}

	body, err := RenderContact(sub)
	if err != nil {
		return retry.Permanent(err)
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.to},
		Subject: Subject(sub),
		Html:    body,
	}

	if _, err := s.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send contact email via Resend: %w", err)
	}
	return nil
}

func Subject(sub core.ContactSubmission) string {
	return fmt.Sprintf("Portfolio contact from %s", sub.Name)
}

// RenderContact builds the HTML body. Submitted fields are escaped.
func RenderContact(sub core.ContactSubmission) (string, error) {
	var buf bytes.Buffer
	if err := contactTemplate.Execute(&buf, sub); err != nil {
		return "", fmt.Errorf("failed to render contact email: %w", err)
	}
	return buf.String(), nil
}
