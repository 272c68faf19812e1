// Package seeder loads development fixtures: one account per role, the study
// programs, and a pair of holders. Intended for the in-memory stores; running
// it twice against a persistent database is a no-op thanks to the unique
// constraints.
package seeder

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	authservice "ijazah/internal/auth/service"
	authstore "ijazah/internal/auth/store"
	holdermodels "ijazah/internal/holder/models"
	holderservice "ijazah/internal/holder/service"
	holderstore "ijazah/internal/holder/store"
	programmodels "ijazah/internal/program/models"
	programservice "ijazah/internal/program/service"
	programstore "ijazah/internal/program/store"
	"ijazah/pkg/domain"
)

// Seeder provisions development data through the regular services, so the
// fixtures pass the same validation as real input.
type Seeder struct {
	auth     *authservice.Service
	programs *programservice.Service
	holders  *holderservice.Service
	logger   *slog.Logger
}

// New creates a seeder.
func New(auth *authservice.Service, programs *programservice.Service, holders *holderservice.Service, logger *slog.Logger) *Seeder {
	return &Seeder{auth: auth, programs: programs, holders: holders, logger: logger}
}

// Run seeds users, programs, and holders. Existing rows are skipped.
func (s *Seeder) Run(ctx context.Context) error {
	studentID, err := s.seedUsers(ctx)
	if err != nil {
		return err
	}
	programID, err := s.seedPrograms(ctx)
	if err != nil {
		return err
	}
	return s.seedHolders(ctx, studentID, programID)
}

func (s *Seeder) seedUsers(ctx context.Context) (studentID uuid.UUID, err error) {
	users := []struct {
		email    string
		name     string
		password string
		role     domain.Role
	}{
		{"admin@ijazah.local", "Site Admin", "admin123", domain.RoleAdmin},
		{"reviewer@ijazah.local", "Faculty Reviewer", "reviewer123", domain.RoleReviewer},
		{"student@ijazah.local", "Budi Santoso", "student123", domain.RoleStudent},
	}
	for _, u := range users {
		user, err := s.auth.Register(ctx, u.email, u.name, u.password, u.role)
		if err != nil {
			if errors.Is(err, authstore.ErrEmailTaken) {
				continue
			}
			return uuid.Nil, err
		}
		if u.role == domain.RoleStudent {
			studentID = user.ID
		}
		s.logger.InfoContext(ctx, "seeded user", "email", u.email, "role", u.role)
	}
	return studentID, nil
}

func (s *Seeder) seedPrograms(ctx context.Context) (uuid.UUID, error) {
	programs := []programmodels.CreateRequest{
		{Code: "IF", Name: "Informatika", DegreeLevel: "S1"},
		{Code: "SI", Name: "Sistem Informasi", DegreeLevel: "S1"},
		{Code: "TE", Name: "Teknik Elektro", DegreeLevel: "S1"},
	}
	var first uuid.UUID
	for _, req := range programs {
		program, err := s.programs.Create(ctx, req)
		if err != nil {
			if errors.Is(err, programstore.ErrCodeTaken) {
				continue
			}
			return uuid.Nil, err
		}
		if first == uuid.Nil {
			first = program.ID
		}
		s.logger.InfoContext(ctx, "seeded program", "code", req.Code)
	}
	if first == uuid.Nil {
		if existing, err := s.programs.List(ctx); err == nil && len(existing) > 0 {
			first = existing[0].ID
		}
	}
	return first, nil
}

func (s *Seeder) seedHolders(ctx context.Context, studentID, programID uuid.UUID) error {
	if programID == uuid.Nil {
		return nil
	}
	gradYear := 2024
	holders := []holdermodels.CreateRequest{
		{
			EnrollmentNumber: "2020010001",
			Name:             "Budi Santoso",
			ProgramID:        programID,
			EnrollmentYear:   2020,
			GraduationYear:   &gradYear,
		},
		{
			EnrollmentNumber: "2020010002",
			Name:             "Siti Rahayu",
			ProgramID:        programID,
			EnrollmentYear:   2020,
			GraduationYear:   &gradYear,
		},
	}
	if studentID != uuid.Nil {
		holders[0].UserID = &studentID
	}
	for _, req := range holders {
		if _, err := s.holders.Create(ctx, req); err != nil {
			if errors.Is(err, holderstore.ErrEnrollmentTaken) {
				continue
			}
			return err
		}
		s.logger.InfoContext(ctx, "seeded holder", "enrollment_number", req.EnrollmentNumber)
	}
	return nil
}
