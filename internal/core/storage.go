package core

import (
	"context"
	"time"
)

type ContactStatus string

const (
	ContactPending ContactStatus = "pending"
	ContactSent    ContactStatus = "sent"
	ContactFailed  ContactStatus = "failed"
)

type ContactRepository interface {
	SaveSubmission(ctx context.Context, sub ContactSubmission) (int64, error)
	MarkStatus(ctx context.Context, id int64, status ContactStatus, lastErr string) error
	GetSubmissions(ctx context.Context, status ContactStatus, limit int) ([]StoredSubmission, error)
}

type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type StoredSubmission struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	LastError string        `json:"last_error,omitempty"`
	Attempts  int           `json:"attempts"`
	CreatedAt time.Time     `json:"created_at"`
}
