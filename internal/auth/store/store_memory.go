package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"ijazah/internal/auth/models"
)

// InMemoryStore is an in-memory implementation of Store for tests or local use.
// It is safe for concurrent access but does not persist across process restarts.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]models.User
	byEmail map[string]uuid.UUID
}

// NewInMemoryStore constructs an empty in-memory user store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[uuid.UUID]models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create stores a new user, enforcing email uniqueness.
func (s *InMemoryStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalizeEmail(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return ErrEmailTaken
	}
	s.byID[user.ID] = *user
	s.byEmail[key] = user.ID
	return nil
}

// FindByID retrieves a user by ID or returns ErrNotFound.
func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.byID[id]; ok {
		u := user
		return &u, nil
	}
	return nil, ErrNotFound
}

// FindByEmail retrieves a user by email or returns ErrNotFound.
func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byEmail[normalizeEmail(email)]; ok {
		u := s.byID[id]
		return &u, nil
	}
	return nil, ErrNotFound
}

var _ Store = (*InMemoryStore)(nil)
