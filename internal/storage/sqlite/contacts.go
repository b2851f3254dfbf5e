package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/folio/internal/core"
)

// ContactsRepo is the outbox of contact form submissions.
type ContactsRepo struct {
	db *sql.DB
}

func NewContactsRepo(db *sql.DB) *ContactsRepo {
	return &ContactsRepo{db: db}
}

func (r *ContactsRepo) SaveSubmission(ctx context.Context, sub core.ContactSubmission) (int64, error) {
	query := `INSERT INTO contact_submissions (name, email, message, status) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, sub.Name, sub.Email, sub.Message, core.ContactPending)
	if err != nil {
		return 0, fmt.Errorf("failed to insert submission: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read submission id: %w", err)
	}
	return id, nil
}

// MarkStatus records the outcome of one delivery attempt.
func (r *ContactsRepo) MarkStatus(ctx context.Context, id int64, status core.ContactStatus, lastErr string) error {
	query := `UPDATE contact_submissions
		SET status = ?, last_error = ?, attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, status, lastErr, id)
	if err != nil {
		return fmt.Errorf("failed to update submission %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("submission %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// GetSubmissions returns the oldest submissions in the given status first.
func (r *ContactsRepo) GetSubmissions(ctx context.Context, status core.ContactStatus, limit int) ([]core.StoredSubmission, error) {
	query := `SELECT id, name, email, message, status, last_error, attempts, created_at
		FROM contact_submissions WHERE status = ? ORDER BY id ASC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subs []core.StoredSubmission
	for rows.Next() {
		var s core.StoredSubmission
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Message, &s.Status, &s.LastError, &s.Attempts, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
