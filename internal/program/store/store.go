package store

import (
	"context"

	"github.com/google/uuid"

	"ijazah/internal/program/models"
	dErrors "ijazah/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "program not found")
	// ErrCodeTaken signals a unique-constraint violation on the program code.
	ErrCodeTaken = dErrors.New(dErrors.CodeConflict, "program code already in use")
)

// Store persists study programs.
type Store interface {
	Create(ctx context.Context, program *models.Program) error
	Update(ctx context.Context, program *models.Program) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Program, error)
	FindByCode(ctx context.Context, code string) (*models.Program, error)
	List(ctx context.Context) ([]*models.Program, error)
}
