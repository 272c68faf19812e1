package models

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks a ledger publication through its lifecycle.
type Status string

const (
	// StatusPending marks a durable intent to publish, or a submitted
	// transaction awaiting confirmation.
	StatusPending Status = "PENDING"
	// StatusSuccess marks a confirmed publication. Success rows are immutable
	// except for backfilling a missing serial fingerprint.
	StatusSuccess Status = "SUCCESS"
	// StatusFailed marks a submission or confirmation failure with detail,
	// left for an operator or reconciliation job.
	StatusFailed Status = "FAILED"
)

// Record is the one-to-one ledger-publication record of a credential.
type Record struct {
	CredentialID      uuid.UUID  `json:"credential_id"`
	Fingerprint       string     `json:"fingerprint"`
	SerialFingerprint *string    `json:"serial_fingerprint,omitempty"`
	TxID              *string    `json:"tx_id,omitempty"`
	Network           string     `json:"network"`
	ContractAddress   string     `json:"contract_address"`
	BlockNumber       *int64     `json:"block_number,omitempty"`
	Status            Status     `json:"status"`
	ErrorDetail       *string    `json:"error_detail,omitempty"`
	ExplorerURL       *string    `json:"explorer_url,omitempty"`
	PublishedAt       *time.Time `json:"published_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Result is what the orchestrator returns to its caller.
type Result struct {
	AlreadyAnchored bool    `json:"already_anchored"`
	Record          *Record `json:"record"`
}
