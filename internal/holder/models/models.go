package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "ijazah/pkg/domain-errors"
)

// Holder is the student a credential is issued to. It is owned by the issuing
// institution and immutable once referenced by a credential, except for
// administrative correction.
type Holder struct {
	ID               uuid.UUID  `json:"id"`
	UserID           *uuid.UUID `json:"user_id,omitempty"`
	EnrollmentNumber string     `json:"enrollment_number"`
	Name             string     `json:"name"`
	ProgramID        uuid.UUID  `json:"program_id"`
	EnrollmentYear   int        `json:"enrollment_year"`
	GraduationYear   *int       `json:"graduation_year,omitempty"`
	BirthPlace       *string    `json:"birth_place,omitempty"`
	BirthDate        *time.Time `json:"birth_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CreateRequest carries the fields for registering a holder.
type CreateRequest struct {
	UserID           *uuid.UUID `json:"user_id,omitempty"`
	EnrollmentNumber string     `json:"enrollment_number"`
	Name             string     `json:"name"`
	ProgramID        uuid.UUID  `json:"program_id"`
	EnrollmentYear   int        `json:"enrollment_year"`
	GraduationYear   *int       `json:"graduation_year,omitempty"`
	BirthPlace       *string    `json:"birth_place,omitempty"`
	BirthDate        *time.Time `json:"birth_date,omitempty"`
}

// Normalize trims surrounding whitespace from identity fields.
func (r *CreateRequest) Normalize() {
	r.EnrollmentNumber = strings.TrimSpace(r.EnrollmentNumber)
	r.Name = strings.TrimSpace(r.Name)
}

// Validate checks required fields.
func (r *CreateRequest) Validate() error {
	if r.EnrollmentNumber == "" || r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "enrollment_number and name are required")
	}
	if r.ProgramID == uuid.Nil {
		return dErrors.New(dErrors.CodeValidation, "program_id is required")
	}
	if r.EnrollmentYear == 0 {
		return dErrors.New(dErrors.CodeValidation, "enrollment_year is required")
	}
	return nil
}

// UpdateRequest carries optional fields for administrative correction.
// Enrollment number and name participate in fingerprints, so correcting them
// on a holder with anchored credentials is the admin's explicit decision.
type UpdateRequest struct {
	Name           *string    `json:"name,omitempty"`
	GraduationYear *int       `json:"graduation_year,omitempty"`
	BirthPlace     *string    `json:"birth_place,omitempty"`
	BirthDate      *time.Time `json:"birth_date,omitempty"`
}
