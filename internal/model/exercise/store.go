package exercise

import "strings"

// Store exposes exercise retrieval for HTTP handlers.
type Store interface {
	List() []Exercise
	FindByID(id string) (Exercise, bool)
	ListByCategory(category string) []Exercise
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Exercise
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied exercises.
func NewMemoryStore(items []Exercise) *MemoryStore {
	return &MemoryStore{items: append([]Exercise(nil), items...)}
}

// List returns the whole catalogue.
func (s *MemoryStore) List() []Exercise {
	return append([]Exercise(nil), s.items...)
}

// FindByID looks up an exercise by identifier.
func (s *MemoryStore) FindByID(id string) (Exercise, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Exercise{}, false
}

// ListByCategory filters case-insensitively by category.
func (s *MemoryStore) ListByCategory(category string) []Exercise {
	out := make([]Exercise, 0, len(s.items))
	for _, item := range s.items {
		if strings.EqualFold(item.Category, category) {
			out = append(out, item)
		}
	}
	return out
}
