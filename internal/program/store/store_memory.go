package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"ijazah/internal/program/models"
)

// InMemoryStore is an in-memory implementation of Store for tests or local use.
type InMemoryStore struct {
	mu       sync.RWMutex
	programs map[uuid.UUID]models.Program
	byCode   map[string]uuid.UUID
}

// NewInMemoryStore constructs an empty in-memory program store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		programs: make(map[uuid.UUID]models.Program),
		byCode:   make(map[string]uuid.UUID),
	}
}

func codeKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create stores a new program, enforcing code uniqueness.
func (s *InMemoryStore) Create(_ context.Context, program *models.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := codeKey(program.Code)
	if _, exists := s.byCode[key]; exists {
		return ErrCodeTaken
	}
	s.programs[program.ID] = *program
	s.byCode[key] = program.ID
	return nil
}

// Update overwrites an existing program. The code is immutable.
func (s *InMemoryStore) Update(_ context.Context, program *models.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.programs[program.ID]; !exists {
		return ErrNotFound
	}
	s.programs[program.ID] = *program
	return nil
}

// FindByID retrieves a program by ID or returns ErrNotFound.
func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if program, ok := s.programs[id]; ok {
		p := program
		return &p, nil
	}
	return nil, ErrNotFound
}

// FindByCode retrieves a program by its unique code or returns ErrNotFound.
func (s *InMemoryStore) FindByCode(_ context.Context, code string) (*models.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byCode[codeKey(code)]; ok {
		p := s.programs[id]
		return &p, nil
	}
	return nil, ErrNotFound
}

// List returns all programs ordered by code.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.Program, 0, len(s.programs))
	for _, program := range s.programs {
		p := program
		result = append(result, &p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

var _ Store = (*InMemoryStore)(nil)
