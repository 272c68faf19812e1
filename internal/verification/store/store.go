package store

import (
	"context"

	"github.com/google/uuid"

	"ijazah/internal/verification/models"
)

// Store is the append-only verification audit log. Events are never mutated or
// deleted; ordering only matters per credential, for audit display.
type Store interface {
	Append(ctx context.Context, event *models.Event) error
	ListByCredential(ctx context.Context, credentialID uuid.UUID) ([]*models.Event, error)
}
