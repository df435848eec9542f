package chatflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-diet/backend/internal/model/chat"
	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
	"github.com/zhouzirui/z-diet/backend/internal/validate"
	"github.com/zhouzirui/z-diet/backend/pkg/logger"
	"github.com/zhouzirui/z-diet/backend/pkg/sse"
)

// ErrStreamInFlight is returned when Send is called while a reply is still streaming.
var ErrStreamInFlight = errors.New("a reply is still streaming")

const defaultChunkSize = 4096

// API is the slice of the backend a chat session talks to.
type API interface {
	ChatStream(ctx context.Context, turns []chat.Turn) (io.ReadCloser, error)
	SaveMessage(ctx context.Context, role chat.Role, content string) (chat.Message, error)
	CreateMeal(ctx context.Context, m meal.Meal) (meal.Meal, error)
}

// Result is the outcome of one exchange.
type Result struct {
	Reply string
	// Meal is set when the reply carried a meal block that was logged.
	Meal *meal.Meal
}

// Session keeps the running conversation and allows one stream at a time.
type Session struct {
	api       API
	now       func() time.Time
	chunkSize int
	log       *logrus.Entry

	mu      sync.Mutex
	busy    bool
	history []chat.Turn
}

// Option customises a Session.
type Option func(*Session)

// WithClock overrides the clock used to date extracted meals.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithChunkSize sets the read size used on the response stream.
func WithChunkSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// NewSession starts a session seeded with prior turns.
func NewSession(api API, history []chat.Turn, opts ...Option) *Session {
	s := &Session{
		api:       api,
		now:       time.Now,
		chunkSize: defaultChunkSize,
		log:       logger.Component("chatflow"),
		history:   append([]chat.Turn(nil), history...),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History returns a copy of the turns exchanged so far.
func (s *Session) History() []chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chat.Turn(nil), s.history...)
}

// Reset forgets the local conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

func (s *Session) acquire() ([]chat.Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return nil, false
	}
	s.busy = true
	return append([]chat.Turn(nil), s.history...), true
}

func (s *Session) release(turns ...chat.Turn) {
	s.mu.Lock()
	s.history = append(s.history, turns...)
	s.busy = false
	s.mu.Unlock()
}

// Send streams the assistant reply to text, calling onDelta as content
// arrives. Once the stream completes the reply is stored and any meal block
// in it is logged for today.
func (s *Session) Send(ctx context.Context, text string, onDelta func(string)) (Result, error) {
	history, ok := s.acquire()
	if !ok {
		return Result{}, ErrStreamInFlight
	}

	userTurn := chat.Turn{Role: chat.RoleUser, Content: text}
	turns := window(append(history, userTurn))

	body, err := s.api.ChatStream(ctx, turns)
	if err != nil {
		s.release()
		return Result{}, err
	}

	reply, err := sse.Collect(ctx, sse.NewReaderSource(body, s.chunkSize), onDelta)
	body.Close()
	if err != nil {
		s.release()
		return Result{Reply: reply}, fmt.Errorf("read reply stream: %w", err)
	}

	assistantTurn := chat.Turn{Role: chat.RoleAssistant, Content: reply}
	s.release(userTurn, assistantTurn)

	result := Result{Reply: reply}
	if reply == "" {
		return result, nil
	}

	if _, err := s.api.SaveMessage(ctx, chat.RoleAssistant, reply); err != nil {
		s.log.WithError(err).Warn("failed to save assistant message")
	}

	draft, err := meal.ExtractDraft(reply)
	if err != nil {
		s.log.WithError(err).Debug("no meal in reply")
		return result, nil
	}

	logged, err := s.api.CreateMeal(ctx, draft.Meal(meal.Day(s.now())))
	if err != nil {
		return result, fmt.Errorf("save meal: %w", err)
	}
	result.Meal = &logged
	return result, nil
}

// window keeps the newest turns the relay accepts. Earlier turns that are
// empty are dropped and long ones are cut to the content limit; the newest
// turn is sent as typed.
func window(turns []chat.Turn) []chat.Turn {
	if len(turns) == 0 {
		return turns
	}

	last := len(turns) - 1
	out := make([]chat.Turn, 0, len(turns))
	for _, t := range turns[:last] {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		if utf8.RuneCountInString(t.Content) > validate.MaxMessageContent {
			t.Content = string([]rune(t.Content)[:validate.MaxMessageContent])
		}
		out = append(out, t)
	}
	out = append(out, turns[last])

	if len(out) > validate.MaxMessages {
		out = out[len(out)-validate.MaxMessages:]
	}
	return out
}
