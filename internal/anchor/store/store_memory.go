package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ijazah/internal/anchor/models"
)

// InMemoryStore is a thread-safe in-memory anchor store for development and
// tests. Upsert applies the finalize guard under a single lock, so concurrent
// publishers observe each other's rows.
type InMemoryStore struct {
	mu           sync.Mutex
	byCredential map[uuid.UUID]*models.Record
}

// NewInMemoryStore creates an empty in-memory anchor store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byCredential: make(map[uuid.UUID]*models.Record)}
}

// GetByCredential retrieves the anchor record for a credential.
func (s *InMemoryStore) GetByCredential(_ context.Context, credentialID uuid.UUID) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byCredential[credentialID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *record
	return &cp, nil
}

// GetByFingerprint retrieves an anchor record by its canonical fingerprint,
// falling back to the serial-derived fingerprint for lookup convenience.
func (s *InMemoryStore) GetByFingerprint(_ context.Context, fingerprint string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.byCredential {
		if record.Fingerprint == fingerprint {
			cp := *record
			return &cp, nil
		}
	}
	for _, record := range s.byCredential {
		if record.SerialFingerprint != nil && *record.SerialFingerprint == fingerprint {
			cp := *record
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// CreateIntent atomically claims the publish slot for record.CredentialID.
// It creates the PENDING record when none exists, supersedes a FAILED record
// or a PENDING record last touched before the supersede cutoff, and rejects
// everything else.
func (s *InMemoryStore) CreateIntent(_ context.Context, record *models.Record, supersede time.Time) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	existing, ok := s.byCredential[record.CredentialID]
	if ok {
		if existing.Status == models.StatusSuccess {
			return nil, ErrAlreadyFinalized
		}
		if existing.Status == models.StatusPending && existing.UpdatedAt.After(supersede) {
			return nil, ErrPublishInFlight
		}
	}

	cp := *record
	cp.Status = models.StatusPending
	cp.CreatedAt = now
	if ok {
		cp.CreatedAt = existing.CreatedAt
	}
	cp.UpdatedAt = now
	s.byCredential[record.CredentialID] = &cp
	out := cp
	return &out, nil
}

// Upsert atomically creates or advances the record for record.CredentialID.
// A SUCCESS row accepts only a serial-fingerprint backfill; everything else
// fails with ErrAlreadyFinalized.
func (s *InMemoryStore) Upsert(_ context.Context, record *models.Record) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	existing, ok := s.byCredential[record.CredentialID]
	if !ok {
		cp := *record
		cp.CreatedAt = now
		cp.UpdatedAt = now
		s.byCredential[record.CredentialID] = &cp
		out := cp
		return &out, nil
	}

	if existing.Status == models.StatusSuccess {
		if !isSerialBackfill(existing, record) {
			return nil, ErrAlreadyFinalized
		}
		existing.SerialFingerprint = record.SerialFingerprint
		existing.UpdatedAt = now
		cp := *existing
		return &cp, nil
	}

	cp := *record
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = now
	s.byCredential[record.CredentialID] = &cp
	out := cp
	return &out, nil
}

// DeleteByCredential removes the anchor record for a credential. Used when a
// serial edit invalidates a non-successful anchor intent, and on credential
// deletion.
func (s *InMemoryStore) DeleteByCredential(_ context.Context, credentialID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byCredential[credentialID]; !ok {
		return ErrNotFound
	}
	delete(s.byCredential, credentialID)
	return nil
}

func isSerialBackfill(existing, incoming *models.Record) bool {
	return existing.SerialFingerprint == nil &&
		incoming.SerialFingerprint != nil &&
		incoming.Status == models.StatusSuccess &&
		incoming.Fingerprint == existing.Fingerprint
}

var _ Store = (*InMemoryStore)(nil)
