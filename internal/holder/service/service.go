package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"ijazah/internal/holder/models"
	"ijazah/internal/holder/store"
	programstore "ijazah/internal/program/store"
	dErrors "ijazah/pkg/domain-errors"
)

// ProgramChecker verifies that a referenced study program exists.
type ProgramChecker interface {
	Exists(ctx context.Context, id uuid.UUID) error
}

// ProgramStoreChecker adapts a program store to the ProgramChecker port.
type ProgramStoreChecker struct {
	Store programstore.Store
}

// Exists returns a validation error when the program is unknown.
func (c ProgramStoreChecker) Exists(ctx context.Context, id uuid.UUID) error {
	if _, err := c.Store.FindByID(ctx, id); err != nil {
		if errors.Is(err, programstore.ErrNotFound) {
			return dErrors.New(dErrors.CodeValidation, "program does not exist")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check program")
	}
	return nil
}

// Service manages credential holders.
type Service struct {
	store    store.Store
	programs ProgramChecker
}

// NewService creates a holder service.
func NewService(store store.Store, programs ProgramChecker) *Service {
	return &Service{store: store, programs: programs}
}

// Create registers a new holder with a unique enrollment number.
func (s *Service) Create(ctx context.Context, req models.CreateRequest) (*models.Holder, error) {
	if err := s.programs.Exists(ctx, req.ProgramID); err != nil {
		return nil, err
	}
	now := time.Now()
	holder := &models.Holder{
		ID:               uuid.New(),
		UserID:           req.UserID,
		EnrollmentNumber: req.EnrollmentNumber,
		Name:             req.Name,
		ProgramID:        req.ProgramID,
		EnrollmentYear:   req.EnrollmentYear,
		GraduationYear:   req.GraduationYear,
		BirthPlace:       req.BirthPlace,
		BirthDate:        req.BirthDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.Create(ctx, holder); err != nil {
		if errors.Is(err, store.ErrEnrollmentTaken) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create holder")
	}
	return holder, nil
}

// Update applies an administrative correction. The enrollment number is
// immutable because it participates in credential fingerprints.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req models.UpdateRequest) (*models.Holder, error) {
	holder, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "name must not be empty")
		}
		holder.Name = name
	}
	if req.GraduationYear != nil {
		holder.GraduationYear = req.GraduationYear
	}
	if req.BirthPlace != nil {
		holder.BirthPlace = req.BirthPlace
	}
	if req.BirthDate != nil {
		holder.BirthDate = req.BirthDate
	}
	holder.UpdatedAt = time.Now()
	if err := s.store.Update(ctx, holder); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update holder")
	}
	return holder, nil
}

// Get retrieves a holder by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Holder, error) {
	return s.store.FindByID(ctx, id)
}

// GetByUser retrieves the holder linked to a platform user. Students use this
// to resolve their own record.
func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Holder, error) {
	return s.store.FindByUserID(ctx, userID)
}

// List returns all holders.
func (s *Service) List(ctx context.Context) ([]*models.Holder, error) {
	holders, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list holders")
	}
	return holders, nil
}
