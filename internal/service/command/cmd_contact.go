package command

import (
	"context"
	"errors"
	"strings"

	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/internal/service/contact"
)

const contactUsage = "/contact Your Name | you@example.com | Your message"

type ContactCommand struct {
	contact   contactSubmitter
	formatter *ResponseFormatter
}

func NewContactCommand(contact contactSubmitter) *ContactCommand {
	return &ContactCommand{
		contact:   contact,
		formatter: NewResponseFormatter(),
	}
}

func (c *ContactCommand) Name() string {
	return "contact"
}

func (c *ContactCommand) Description() string {
	return "Send a message to the owner's inbox"
}

func (c *ContactCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	fields := strings.SplitN(strings.Join(args, " "), "|", 3)
	if len(fields) != 3 {
		return c.formatter.Combine(
			c.formatter.Info("Contact"),
			c.formatter.Usage(contactUsage),
		), nil
	}

	sub := core.ContactSubmission{Name: fields[0], Email: fields[1], Message: fields[2]}
	if _, err := c.contact.Submit(ctx, sub); err != nil {
		var fe *contact.FieldError
		if errors.As(err, &fe) {
			return c.formatter.Combine(
				c.formatter.Error("contact", fe),
				c.formatter.Usage(contactUsage),
			), nil
		}
		return "", err
	}

	return c.formatter.Success("Thank you! Your message has been sent."), nil
}
