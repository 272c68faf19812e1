package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"ijazah/internal/holder/models"
)

// InMemoryStore is a thread-safe in-memory holder store for development and tests.
type InMemoryStore struct {
	mu           sync.RWMutex
	byID         map[uuid.UUID]*models.Holder
	byEnrollment map[string]uuid.UUID
	byUser       map[uuid.UUID]uuid.UUID
}

// NewInMemoryStore creates an empty in-memory holder store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:         make(map[uuid.UUID]*models.Holder),
		byEnrollment: make(map[string]uuid.UUID),
		byUser:       make(map[uuid.UUID]uuid.UUID),
	}
}

func enrollmentKey(nim string) string {
	return strings.ToLower(strings.TrimSpace(nim))
}

// Create stores a new holder, enforcing enrollment-number uniqueness.
func (s *InMemoryStore) Create(_ context.Context, holder *models.Holder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := enrollmentKey(holder.EnrollmentNumber)
	if _, exists := s.byEnrollment[key]; exists {
		return ErrEnrollmentTaken
	}
	cp := *holder
	s.byID[holder.ID] = &cp
	s.byEnrollment[key] = holder.ID
	if holder.UserID != nil {
		s.byUser[*holder.UserID] = holder.ID
	}
	return nil
}

// Update rewrites an existing holder.
func (s *InMemoryStore) Update(_ context.Context, holder *models.Holder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[holder.ID]
	if !ok {
		return ErrNotFound
	}
	oldKey := enrollmentKey(existing.EnrollmentNumber)
	newKey := enrollmentKey(holder.EnrollmentNumber)
	if oldKey != newKey {
		if _, taken := s.byEnrollment[newKey]; taken {
			return ErrEnrollmentTaken
		}
		delete(s.byEnrollment, oldKey)
		s.byEnrollment[newKey] = holder.ID
	}
	if existing.UserID != nil {
		delete(s.byUser, *existing.UserID)
	}
	if holder.UserID != nil {
		s.byUser[*holder.UserID] = holder.ID
	}
	cp := *holder
	s.byID[holder.ID] = &cp
	return nil
}

// FindByID retrieves a holder by ID or returns ErrNotFound.
func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Holder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	holder, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *holder
	return &cp, nil
}

// FindByUserID retrieves the holder linked to a platform user.
func (s *InMemoryStore) FindByUserID(_ context.Context, userID uuid.UUID) (*models.Holder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

// FindByEnrollmentNumber retrieves a holder by enrollment number.
func (s *InMemoryStore) FindByEnrollmentNumber(_ context.Context, nim string) (*models.Holder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEnrollment[enrollmentKey(nim)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

// List returns all holders ordered by enrollment number.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Holder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Holder, 0, len(s.byID))
	for _, holder := range s.byID {
		cp := *holder
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EnrollmentNumber < result[j].EnrollmentNumber
	})
	return result, nil
}

var _ Store = (*InMemoryStore)(nil)
