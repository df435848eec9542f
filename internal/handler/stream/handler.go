package stream

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-diet/backend/internal/apperr"
	"github.com/zhouzirui/z-diet/backend/internal/auth"
	"github.com/zhouzirui/z-diet/backend/internal/model/chat"
	aiService "github.com/zhouzirui/z-diet/backend/internal/service/ai"
	"github.com/zhouzirui/z-diet/backend/internal/validate"
	"github.com/zhouzirui/z-diet/backend/pkg/logger"
	"github.com/zhouzirui/z-diet/backend/pkg/utils"
)

// ChatStreamer opens a streaming completion for a conversation.
type ChatStreamer interface {
	StreamChat(ctx context.Context, turns []chat.Turn) (io.ReadCloser, error)
}

// MessageSaver records conversation turns.
type MessageSaver interface {
	SaveMessage(ctx context.Context, userID string, role chat.Role, content string) (chat.Message, error)
}

// Handler relays diet chat conversations as Server-Sent Events.
type Handler struct {
	relay   ChatStreamer
	history MessageSaver
	log     *logrus.Entry
}

// New creates a stream handler. history may be nil.
func New(relay ChatStreamer, history MessageSaver) *Handler {
	return &Handler{
		relay:   relay,
		history: history,
		log:     logger.Component("stream"),
	}
}

// HandleDietChat validates the conversation, opens the upstream stream and
// pipes it back unchanged. Authentication and rate limiting run first as
// middleware.
func (h *Handler) HandleDietChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utils.RespondAppError(w, r, apperr.AuthenticationRequired(nil))
		return
	}

	input, err := validate.ChatRequest(r.Body)
	if err != nil {
		h.log.WithError(err).Debug("invalid chat request")
		utils.RespondAppError(w, r, validationError(err))
		return
	}

	body, err := h.relay.StreamChat(r.Context(), input.Turns())
	if err != nil {
		utils.RespondAppError(w, r, relayError(err))
		return
	}
	defer body.Close()

	h.recordUserTurn(r.Context(), userID, input)

	written, err := utils.RelaySSE(w, body)
	fields := logrus.Fields{
		"user_id":  userID,
		"messages": len(input.Messages),
		"bytes":    written,
	}
	if err != nil {
		// Headers are already sent; the client sees a truncated stream.
		h.log.WithFields(fields).WithError(err).Warn("diet chat stream interrupted")
		return
	}
	h.log.WithFields(fields).Info("diet chat stream completed")
}

func (h *Handler) recordUserTurn(ctx context.Context, userID string, input validate.ChatInput) {
	if h.history == nil {
		return
	}
	last, ok := input.LastUserMessage()
	if !ok {
		return
	}
	if _, err := h.history.SaveMessage(ctx, userID, chat.RoleUser, last.Content); err != nil {
		h.log.WithError(err).Warn("failed to save user message")
	}
}

func validationError(err error) *apperr.Error {
	var vErr *validate.Error
	if errors.As(err, &vErr) {
		return apperr.ValidationFailed(vErr.Issues)
	}
	return apperr.ValidationFailed(nil)
}

func relayError(err error) *apperr.Error {
	switch {
	case errors.Is(err, aiService.ErrMissingAPIKey):
		return apperr.Internal("LLM API key is not configured", err)
	case errors.Is(err, aiService.ErrUpstreamRateLimited):
		return apperr.DownstreamRateLimited(err)
	default:
		return apperr.DownstreamError("LLM API error", err)
	}
}
