// Package contact accepts contact form submissions, keeps them in an outbox
// and relays them to the owner by mail.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/sandevgo/folio/internal/core"
	"github.com/sandevgo/folio/pkg/log"
	"github.com/sandevgo/folio/pkg/retry"
)

const MaxMessageLength = 5000

var (
	// ErrTryAgainLater is the only failure a visitor ever sees from the relay.
	ErrTryAgainLater = errors.New("Failed to send message. Please try again later.")
	ErrInvalid       = errors.New("invalid contact submission")
)

type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalid
}

// Normalize trims surrounding whitespace from every field.
func Normalize(sub core.ContactSubmission) core.ContactSubmission {
	return core.ContactSubmission{
		Name:    strings.TrimSpace(sub.Name),
		Email:   strings.TrimSpace(sub.Email),
		Message: strings.TrimSpace(sub.Message),
	}
}

func Validate(sub core.ContactSubmission) error {
	switch {
	case sub.Name == "":
		return &FieldError{Field: "name", Reason: "is required"}
	case sub.Email == "":
		return &FieldError{Field: "email", Reason: "is required"}
	case sub.Message == "":
		return &FieldError{Field: "message", Reason: "is required"}
	case utf8.RuneCountInString(sub.Message) > MaxMessageLength:
		return &FieldError{Field: "message", Reason: fmt.Sprintf("is longer than %d characters", MaxMessageLength)}
	}

	addr, err := mail.ParseAddress(sub.Email)
	if err != nil || addr.Address != sub.Email {
		return &FieldError{Field: "email", Reason: "is not a valid address"}
	}
	return nil
}

type Service struct {
	repo    core.ContactRepository
	sender  core.MailSender
	retrier *retry.Retrier
}

// NewService builds the relay. A nil sender keeps submissions in the outbox
// marked as failed so they can be flushed once mail is configured.
func NewService(repo core.ContactRepository, sender core.MailSender, retrier *retry.Retrier) *Service {
	if retrier == nil {
		retrier = retry.NewDefaultRetrier()
	}
	return &Service{
		repo:    repo,
		sender:  sender,
		retrier: retrier,
	}
}

// Submit validates, records and relays one submission. Validation failures
// are returned as *FieldError; every other failure becomes ErrTryAgainLater.
func (s *Service) Submit(ctx context.Context, sub core.ContactSubmission) (int64, error) {
	logger := log.FromCtx(ctx)

	sub = Normalize(sub)
	if err := Validate(sub); err != nil {
		return 0, err
	}

	id, err := s.repo.SaveSubmission(ctx, sub)
	if err != nil {
		logger.Error().Err(err).Msg("failed to store contact submission")
		return 0, ErrTryAgainLater
	}

	if err := s.deliver(ctx, id, sub); err != nil {
		return id, ErrTryAgainLater
	}

	logger.Info().Int64("id", id).Msg("contact submission relayed")
	return id, nil
}

// Flush retries up to limit failed submissions and reports how many went out.
func (s *Service) Flush(ctx context.Context, limit int) (int, error) {
	failed, err := s.repo.GetSubmissions(ctx, core.ContactFailed, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to load outbox: %w", err)
	}

	var sent int
	for _, stored := range failed {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		sub := core.ContactSubmission{Name: stored.Name, Email: stored.Email, Message: stored.Message}
		if err := s.deliver(ctx, stored.ID, sub); err != nil {
			continue
		}
		sent++
	}
	return sent, nil
}

func (s *Service) deliver(ctx context.Context, id int64, sub core.ContactSubmission) error {
	logger := log.FromCtx(ctx)

	var sendErr error
	if s.sender == nil {
		sendErr = errors.New("mail relay is not configured")
	} else {
		sendErr = s.retrier.Do(ctx, func() error {
			return s.sender.SendContact(ctx, sub)
		})
	}

	if sendErr != nil {
		logger.Error().Err(sendErr).Int64("id", id).Msg("failed to relay contact submission")
		if err := s.repo.MarkStatus(ctx, id, core.ContactFailed, sendErr.Error()); err != nil {
			logger.Error().Err(err).Int64("id", id).Msg("failed to mark contact submission")
		}
		return sendErr
	}

	if err := s.repo.MarkStatus(ctx, id, core.ContactSent, ""); err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("failed to mark contact submission")
	}
	return nil
}
