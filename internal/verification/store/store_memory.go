package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"ijazah/internal/verification/models"
)

// InMemoryStore is a thread-safe in-memory event log for development and
// tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []*models.Event
}

// NewInMemoryStore creates an empty in-memory event log.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Append records a verification event.
func (s *InMemoryStore) Append(_ context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *event
	s.events = append(s.events, &cp)
	return nil
}

// ListByCredential returns the events for a credential in insertion order.
func (s *InMemoryStore) ListByCredential(_ context.Context, credentialID uuid.UUID) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Event
	for _, event := range s.events {
		if event.CredentialID != nil && *event.CredentialID == credentialID {
			cp := *event
			result = append(result, &cp)
		}
	}
	return result, nil
}

// Len reports the total number of recorded events. Used by tests.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

var _ Store = (*InMemoryStore)(nil)
