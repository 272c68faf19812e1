package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "ijazah/pkg/domain-errors"
)

// Program is the static study-program reference data a credential points at
// through its holder.
type Program struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	DegreeLevel string    `json:"degree_level"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRequest carries the fields for creating a program.
type CreateRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	DegreeLevel string `json:"degree_level"`
}

// Normalize trims surrounding whitespace from all fields.
func (r *CreateRequest) Normalize() {
	r.Code = strings.TrimSpace(r.Code)
	r.Name = strings.TrimSpace(r.Name)
	r.DegreeLevel = strings.TrimSpace(r.DegreeLevel)
}

// Validate checks required fields.
func (r *CreateRequest) Validate() error {
	if r.Code == "" || r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "code and name are required")
	}
	return nil
}

// UpdateRequest carries optional fields for updating a program.
type UpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	DegreeLevel *string `json:"degree_level,omitempty"`
}
