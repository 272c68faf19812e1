package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"ijazah/internal/credential/models"
	"ijazah/internal/credential/statemachine"
)

// InMemoryStore is a thread-safe in-memory credential store for development
// and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*models.Credential
	bySerial map[string]uuid.UUID
}

// NewInMemoryStore creates an empty in-memory credential store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:     make(map[uuid.UUID]*models.Credential),
		bySerial: make(map[string]uuid.UUID),
	}
}

func serialKey(serial string) string {
	return strings.ToLower(strings.TrimSpace(serial))
}

// Create stores a new credential, enforcing serial-number uniqueness.
func (s *InMemoryStore) Create(_ context.Context, credential *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := serialKey(credential.SerialNumber)
	if _, exists := s.bySerial[key]; exists {
		return ErrSerialTaken
	}
	cp := *credential
	s.byID[credential.ID] = &cp
	s.bySerial[key] = credential.ID
	return nil
}

// Update rewrites an existing credential, keeping the serial index consistent.
func (s *InMemoryStore) Update(_ context.Context, credential *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[credential.ID]
	if !ok {
		return ErrNotFound
	}
	oldKey := serialKey(existing.SerialNumber)
	newKey := serialKey(credential.SerialNumber)
	if oldKey != newKey {
		if _, taken := s.bySerial[newKey]; taken {
			return ErrSerialTaken
		}
		delete(s.bySerial, oldKey)
		s.bySerial[newKey] = credential.ID
	}
	cp := *credential
	s.byID[credential.ID] = &cp
	return nil
}

// Delete removes a credential.
func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.bySerial, serialKey(existing.SerialNumber))
	delete(s.byID, id)
	return nil
}

// FindByID retrieves a credential by ID or returns ErrNotFound.
func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	credential, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *credential
	return &cp, nil
}

// FindBySerial retrieves a credential by serial number.
func (s *InMemoryStore) FindBySerial(_ context.Context, serialNumber string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySerial[serialKey(serialNumber)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

// List returns credentials matching the filter, newest first.
func (s *InMemoryStore) List(_ context.Context, filter models.ListFilter) ([]*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Credential
	for _, credential := range s.byID {
		if filter.Status != nil && credential.Status != *filter.Status {
			continue
		}
		if filter.HolderID != nil && credential.HolderID != *filter.HolderID {
			continue
		}
		cp := *credential
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// CountValidatedByReviewer counts fully validated credentials signed off by
// the given reviewer.
func (s *InMemoryStore) CountValidatedByReviewer(_ context.Context, reviewerID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, credential := range s.byID {
		if credential.Status == statemachine.StatusFullyValidated &&
			credential.ReviewerID != nil && *credential.ReviewerID == reviewerID {
			count++
		}
	}
	return count, nil
}

var _ Store = (*InMemoryStore)(nil)
