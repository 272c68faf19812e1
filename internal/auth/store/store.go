package store

import (
	"context"

	"github.com/google/uuid"

	"ijazah/internal/auth/models"
	dErrors "ijazah/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "user not found")
	// ErrEmailTaken signals a unique-constraint violation on the email column.
	ErrEmailTaken = dErrors.New(dErrors.CodeConflict, "email already registered")
)

// Store persists user accounts.
type Store interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
