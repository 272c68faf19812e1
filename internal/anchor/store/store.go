package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ijazah/internal/anchor/models"
	dErrors "ijazah/pkg/domain-errors"
)

var (
	// ErrNotFound keeps storage-specific 404s consistent across implementations.
	ErrNotFound = dErrors.New(dErrors.CodeNotFound, "anchor record not found")
	// ErrAlreadyFinalized rejects mutation of a SUCCESS record. The only
	// permitted write against a finalized record is backfilling a missing
	// serial fingerprint.
	ErrAlreadyFinalized = dErrors.New(dErrors.CodeAlreadyFinalized, "anchor record already finalized")
	// ErrPublishInFlight rejects a new publish intent while another publisher
	// holds a live PENDING record for the same credential.
	ErrPublishInFlight = dErrors.New(dErrors.CodeConflict, "anchor publish already in flight")
)

// Store manages the one-record-per-credential relationship with the ledger.
// The store, not the process, is the concurrency control point for publishing:
// concurrent publishers on separate processes converge on one row per
// credential through two conditional writes.
//
// CreateIntent atomically claims the right to publish. It creates the PENDING
// record when none exists and supersedes a FAILED record or a PENDING record
// last touched before the supersede cutoff (a crashed run). A live PENDING
// record fails with ErrPublishInFlight and a SUCCESS record with
// ErrAlreadyFinalized, so the loser of a race reads back the winner's row
// instead of submitting a second transaction.
//
// Upsert advances the claimed record through submission and finalization. A
// record in SUCCESS rejects every upsert except one that only backfills a nil
// serial fingerprint.
type Store interface {
	GetByCredential(ctx context.Context, credentialID uuid.UUID) (*models.Record, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*models.Record, error)
	CreateIntent(ctx context.Context, record *models.Record, supersede time.Time) (*models.Record, error)
	Upsert(ctx context.Context, record *models.Record) (*models.Record, error)
	DeleteByCredential(ctx context.Context, credentialID uuid.UUID) error
}
