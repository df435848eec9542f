// Package memory provides process-local repositories for single-instance
// deployments and tests.
package memory

import (
	"context"
	"sync"

	"github.com/zhouzirui/z-diet/backend/internal/model/chat"
)

// ChatStore keeps chat history per user.
type ChatStore struct {
	mu       sync.RWMutex
	messages map[string][]chat.Message
}

// NewChatStore creates an empty ChatStore.
func NewChatStore() *ChatStore {
	return &ChatStore{messages: make(map[string][]chat.Message)}
}

// Append adds message to its user's history.
func (s *ChatStore) Append(_ context.Context, message chat.Message) error {
	s.mu.Lock()
	s.messages[message.UserID] = append(s.messages[message.UserID], message)
	s.mu.Unlock()
	return nil
}

// List returns a copy of the user's history in insertion order.
func (s *ChatStore) List(_ context.Context, userID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[userID]
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// Clear drops the user's history.
func (s *ChatStore) Clear(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.messages[userID])
	delete(s.messages, userID)
	return n, nil
}
