package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
)

// MealStore keeps meals per user.
type MealStore struct {
	mu    sync.RWMutex
	meals map[string]map[string]meal.Meal
}

// NewMealStore creates an empty MealStore.
func NewMealStore() *MealStore {
	return &MealStore{meals: make(map[string]map[string]meal.Meal)}
}

func (s *MealStore) Create(_ context.Context, m meal.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meals[m.UserID] == nil {
		s.meals[m.UserID] = make(map[string]meal.Meal)
	}
	s.meals[m.UserID][m.ID] = m
	return nil
}

func (s *MealStore) Get(_ context.Context, userID, id string) (meal.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meals[userID][id]
	if !ok {
		return meal.Meal{}, meal.ErrNotFound
	}
	return m, nil
}

func (s *MealStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.meals[userID][id]; !ok {
		return meal.ErrNotFound
	}
	delete(s.meals[userID], id)
	return nil
}

func (s *MealStore) ListRange(_ context.Context, userID, from, to string) ([]meal.Meal, error) {
	s.mu.RLock()
	out := make([]meal.Meal, 0, len(s.meals[userID]))
	for _, m := range s.meals[userID] {
		// YYYY-MM-DD compares lexically in date order.
		if m.Date >= from && m.Date <= to {
			out = append(out, m)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
