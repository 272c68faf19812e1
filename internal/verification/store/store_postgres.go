package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"ijazah/internal/verification/models"
)

// PostgresStore persists verification events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed event log.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append records a verification event.
func (s *PostgresStore) Append(ctx context.Context, event *models.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verification_events (id, credential_id, fingerprint,
			requester_type, requester_info, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.ID, event.CredentialID, event.Fingerprint,
		string(event.RequesterType), event.RequesterInfo, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert verification event: %w", err)
	}
	return nil
}

// ListByCredential returns the events for a credential in chronological order.
func (s *PostgresStore) ListByCredential(ctx context.Context, credentialID uuid.UUID) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, credential_id, fingerprint, requester_type, requester_info, created_at
		FROM verification_events
		WHERE credential_id = $1
		ORDER BY created_at
	`, credentialID)
	if err != nil {
		return nil, fmt.Errorf("list verification events: %w", err)
	}
	defer rows.Close()

	var result []*models.Event
	for rows.Next() {
		var (
			e             models.Event
			requesterType string
		)
		if err := rows.Scan(&e.ID, &e.CredentialID, &e.Fingerprint,
			&requesterType, &e.RequesterInfo, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan verification event: %w", err)
		}
		e.RequesterType = models.RequesterType(requesterType)
		result = append(result, &e)
	}
	return result, rows.Err()
}

var _ Store = (*PostgresStore)(nil)
