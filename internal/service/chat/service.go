package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/z-diet/backend/internal/model/chat"
)

var (
	ErrUserRequired = errors.New("user id is required")
	ErrInvalidRole  = errors.New("role must be user or assistant")
	ErrEmptyContent = errors.New("message content is required")
)

// Repository persists chat messages per user.
type Repository interface {
	Append(ctx context.Context, message chat.Message) error
	// List returns a user's messages in ascending creation order.
	List(ctx context.Context, userID string) ([]chat.Message, error)
	Clear(ctx context.Context, userID string) (int, error)
}

// Service encapsulates conversation history management.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the chat service to a repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SaveMessage appends a message to the user's history.
func (s *Service) SaveMessage(ctx context.Context, userID string, role chat.Role, content string) (chat.Message, error) {
	if userID == "" {
		return chat.Message{}, ErrUserRequired
	}
	if !role.Valid() {
		return chat.Message{}, ErrInvalidRole
	}
	if strings.TrimSpace(content) == "" {
		return chat.Message{}, ErrEmptyContent
	}

	message := chat.Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Append(ctx, message); err != nil {
		return chat.Message{}, err
	}
	return message, nil
}

// History returns the user's stored messages, oldest first.
func (s *Service) History(ctx context.Context, userID string) ([]chat.Message, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.repo.List(ctx, userID)
}

// Clear removes the user's history and reports how many messages were dropped.
func (s *Service) Clear(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrUserRequired
	}
	return s.repo.Clear(ctx, userID)
}
