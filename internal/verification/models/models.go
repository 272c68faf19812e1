package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequesterType classifies who asked for a verification.
type RequesterType string

const (
	RequesterStudent     RequesterType = "student"
	RequesterInstitution RequesterType = "institution"
	RequesterEmployer    RequesterType = "employer"
	RequesterSystem      RequesterType = "system"
)

// ParseRequesterType maps a free-form classification onto a known type,
// falling back to system for anything unrecognized.
func ParseRequesterType(raw string) RequesterType {
	switch RequesterType(strings.ToLower(strings.TrimSpace(raw))) {
	case RequesterStudent:
		return RequesterStudent
	case RequesterInstitution:
		return RequesterInstitution
	case RequesterEmployer:
		return RequesterEmployer
	default:
		return RequesterSystem
	}
}

// Event is one public lookup, recorded for provenance and audit. Append-only.
type Event struct {
	ID            uuid.UUID     `json:"id"`
	CredentialID  *uuid.UUID    `json:"credential_id,omitempty"`
	Fingerprint   string        `json:"fingerprint"`
	RequesterType RequesterType `json:"requester_type"`
	RequesterInfo string        `json:"requester_info"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Reason explains a negative verification answer.
type Reason string

const (
	ReasonInvalidFormat  Reason = "INVALID_FORMAT"
	ReasonNotFound       Reason = "NOT_FOUND"
	ReasonDataIncomplete Reason = "DATA_INCOMPLETE"
)

// PublicCredential is the public-safe projection of a verified credential.
// Never includes the source file or sensitive personal fields.
type PublicCredential struct {
	SerialNumber     string    `json:"serial_number"`
	HolderName       string    `json:"holder_name"`
	EnrollmentNumber string    `json:"enrollment_number"`
	ProgramName      string    `json:"program_name"`
	ProgramCode      string    `json:"program_code"`
	DegreeLevel      string    `json:"degree_level"`
	GraduationDate   time.Time `json:"graduation_date"`
}

// Provenance is the ledger evidence backing a verified credential.
type Provenance struct {
	Fingerprint     string    `json:"fingerprint"`
	TxID            string    `json:"tx_id"`
	Network         string    `json:"network"`
	ContractAddress string    `json:"contract_address"`
	BlockNumber     int64     `json:"block_number"`
	ExplorerURL     *string   `json:"explorer_url,omitempty"`
	PublishedAt     time.Time `json:"published_at"`
}

// Result is the always-well-formed answer to a public lookup. Malformed input
// and missing data are legitimate negative answers, not errors.
type Result struct {
	Valid      bool              `json:"valid"`
	Reason     Reason            `json:"reason,omitempty"`
	Credential *PublicCredential `json:"credential,omitempty"`
	Provenance *Provenance       `json:"provenance,omitempty"`
}
