package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"ijazah/internal/program/models"
	"ijazah/internal/program/store"
	dErrors "ijazah/pkg/domain-errors"
)

// Service manages study-program reference data.
type Service struct {
	store store.Store
}

// NewService creates a program service.
func NewService(store store.Store) *Service {
	return &Service{store: store}
}

// Create registers a new program with a unique code.
func (s *Service) Create(ctx context.Context, req models.CreateRequest) (*models.Program, error) {
	now := time.Now()
	program := &models.Program{
		ID:          uuid.New(),
		Code:        strings.ToUpper(req.Code),
		Name:        req.Name,
		DegreeLevel: req.DegreeLevel,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, program); err != nil {
		if errors.Is(err, store.ErrCodeTaken) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create program")
	}
	return program, nil
}

// Update applies partial changes to a program. The code is immutable because
// it participates in credential fingerprints.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req models.UpdateRequest) (*models.Program, error) {
	program, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		program.Name = strings.TrimSpace(*req.Name)
	}
	if req.DegreeLevel != nil {
		program.DegreeLevel = strings.TrimSpace(*req.DegreeLevel)
	}
	program.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, program); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update program")
	}
	return program, nil
}

// Get retrieves a program by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	return s.store.FindByID(ctx, id)
}

// List returns all programs.
func (s *Service) List(ctx context.Context) ([]*models.Program, error) {
	programs, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list programs")
	}
	return programs, nil
}
