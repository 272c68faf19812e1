package store

import (
	"context"

	"github.com/google/uuid"

	"ijazah/internal/credential/models"
	dErrors "ijazah/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "credential not found")
	// ErrSerialTaken signals a unique-constraint violation on the serial number.
	ErrSerialTaken = dErrors.New(dErrors.CodeConflict, "serial number already issued")
)

// Store persists credentials. List filters on status and holder; resolving an
// enrollment number to a holder is the service's job.
type Store interface {
	Create(ctx context.Context, credential *models.Credential) error
	Update(ctx context.Context, credential *models.Credential) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Credential, error)
	FindBySerial(ctx context.Context, serialNumber string) (*models.Credential, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Credential, error)
	CountValidatedByReviewer(ctx context.Context, reviewerID uuid.UUID) (int, error)
}
