package core

import "context"

// MailSender delivers a contact submission to the site owner's inbox.
type MailSender interface {
	SendContact(ctx context.Context, sub ContactSubmission) error
}
