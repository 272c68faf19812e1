package store

import (
	"context"

	"github.com/google/uuid"

	"ijazah/internal/holder/models"
	dErrors "ijazah/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "holder not found")
	// ErrEnrollmentTaken signals a unique-constraint violation on the enrollment number.
	ErrEnrollmentTaken = dErrors.New(dErrors.CodeConflict, "enrollment number already registered")
)

// Store persists credential holders.
type Store interface {
	Create(ctx context.Context, holder *models.Holder) error
	Update(ctx context.Context, holder *models.Holder) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Holder, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Holder, error)
	FindByEnrollmentNumber(ctx context.Context, nim string) (*models.Holder, error)
	List(ctx context.Context) ([]*models.Holder, error)
}
