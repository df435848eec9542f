package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-diet/backend/internal/apperr"
	"github.com/zhouzirui/z-diet/backend/internal/auth"
	"github.com/zhouzirui/z-diet/backend/internal/model/chat"
	chatService "github.com/zhouzirui/z-diet/backend/internal/service/chat"
	"github.com/zhouzirui/z-diet/backend/internal/validate"
	"github.com/zhouzirui/z-diet/backend/pkg/utils"
)

// Handler 聊天记录的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/messages", h.handleListMessages)
	r.Post("/messages", h.handleSaveMessage)
	r.Delete("/messages", h.handleClearMessages)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	messages, err := h.chatSvc.History(r.Context(), userID)
	if err != nil {
		utils.RespondAppError(w, r, apperr.Internal("failed to load messages", err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// handleSaveMessage 保存消息
func (h *Handler) handleSaveMessage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	payload, err := validate.MessageRequest(r.Body)
	if err != nil {
		var vErr *validate.Error
		if errors.As(err, &vErr) {
			utils.RespondAppError(w, r, apperr.ValidationFailed(vErr.Issues))
			return
		}
		utils.RespondAppError(w, r, apperr.ValidationFailed(nil))
		return
	}

	message, err := h.chatSvc.SaveMessage(r.Context(), userID, chat.Role(payload.Role), payload.Content)
	if err != nil {
		utils.RespondAppError(w, r, apperr.Internal("failed to save message", err))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, message)
}

func (h *Handler) handleClearMessages(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	removed, err := h.chatSvc.Clear(r.Context(), userID)
	if err != nil {
		utils.RespondAppError(w, r, apperr.Internal("failed to clear messages", err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]int{"deleted": removed})
}
