package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/storygraph/pkg/domain"
)

// Store implements ports.UnitStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store, optionally seeded with units.
func NewStore(seed ...map[string]string) *Store {
	s := &Store{
		data: make(map[string]string),
	}
	for _, m := range seed {
		for id, text := range m {
			s.data[id] = text
		}
	}
	return s
}

// List returns the sorted unit ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Read returns the text of a unit.
func (s *Store) Read(ctx context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	text, ok := s.data[id]
	if !ok {
		return "", domain.ErrUnitNotFound
	}
	return text, nil
}

// Write creates or replaces a unit.
func (s *Store) Write(ctx context.Context, id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = text
	return nil
}

// Delete removes a unit.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return domain.ErrUnitNotFound
	}
	delete(s.data, id)
	return nil
}

// Rename moves a unit to newID.
func (s *Store) Rename(ctx context.Context, oldID, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	text, ok := s.data[oldID]
	if !ok {
		return domain.ErrUnitNotFound
	}
	if _, taken := s.data[newID]; taken {
		return domain.ErrUnitExists
	}
	s.data[newID] = text
	delete(s.data, oldID)
	return nil
}
