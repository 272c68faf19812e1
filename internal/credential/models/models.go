package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"ijazah/internal/credential/statemachine"
	dErrors "ijazah/pkg/domain-errors"
)

// Credential is the diploma record the institution issues, approves, and
// anchors. Its validation status moves only through the state machine.
type Credential struct {
	ID             uuid.UUID           `json:"id"`
	HolderID       uuid.UUID           `json:"holder_id"`
	SerialNumber   string              `json:"serial_number"`
	GraduationDate time.Time           `json:"graduation_date"`
	GPA            *float64            `json:"gpa,omitempty"`
	ThesisTitle    *string             `json:"thesis_title,omitempty"`
	FileURL        *string             `json:"file_url,omitempty"`
	Status         statemachine.Status `json:"status"`
	ReviewerID     *uuid.UUID          `json:"reviewer_id,omitempty"`
	ReviewNote     *string             `json:"review_note,omitempty"`
	ReviewedAt     *time.Time          `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// CreateRequest carries the fields for issuing a credential. New credentials
// always start in DRAFT.
type CreateRequest struct {
	HolderID       uuid.UUID `json:"holder_id"`
	SerialNumber   string    `json:"serial_number"`
	GraduationDate time.Time `json:"graduation_date"`
	GPA            *float64  `json:"gpa,omitempty"`
	ThesisTitle    *string   `json:"thesis_title,omitempty"`
	FileURL        *string   `json:"file_url,omitempty"`
}

// Normalize trims the serial number.
func (r *CreateRequest) Normalize() {
	r.SerialNumber = strings.TrimSpace(r.SerialNumber)
}

// Validate checks required fields.
func (r *CreateRequest) Validate() error {
	if r.HolderID == uuid.Nil {
		return dErrors.New(dErrors.CodeValidation, "holder_id is required")
	}
	if r.SerialNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "serial_number is required")
	}
	if r.GraduationDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "graduation_date is required")
	}
	if r.GPA != nil && (*r.GPA < 0 || *r.GPA > 4) {
		return dErrors.New(dErrors.CodeValidation, "gpa must be between 0 and 4")
	}
	return nil
}

// UpdateRequest carries optional corrections to a draft or rejected
// credential. Changing the serial number resets any non-successful anchor
// intent; a successfully anchored credential's serial is frozen.
type UpdateRequest struct {
	SerialNumber   *string    `json:"serial_number,omitempty"`
	GraduationDate *time.Time `json:"graduation_date,omitempty"`
	GPA            *float64   `json:"gpa,omitempty"`
	ThesisTitle    *string    `json:"thesis_title,omitempty"`
	FileURL        *string    `json:"file_url,omitempty"`
}

// TransitionRequest carries the optional note attached to an approval or
// rejection.
type TransitionRequest struct {
	Note string `json:"note,omitempty"`
}

// ListFilter narrows a credential listing.
type ListFilter struct {
	Status           *statemachine.Status
	HolderID         *uuid.UUID
	EnrollmentNumber string
}
