package exercise

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-diet/backend/internal/apperr"
	"github.com/zhouzirui/z-diet/backend/internal/model/exercise"
	"github.com/zhouzirui/z-diet/backend/pkg/utils"
)

// Handler exercise目录的HTTP处理器
type Handler struct {
	exercises exercise.Store
}

// New 创建exercise处理器
func New(exercises exercise.Store) *Handler {
	return &Handler{exercises: exercises}
}

// RegisterRoutes 注册exercise相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/exercises", h.handleListExercises)
	r.Get("/exercises/{id}", h.handleGetExercise)
}

// handleListExercises 列出所有exercise，可按category过滤
func (h *Handler) handleListExercises(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		utils.RespondJSON(w, http.StatusOK, h.exercises.List())
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.exercises.ListByCategory(category))
}

func (h *Handler) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	item, ok := h.exercises.FindByID(chi.URLParam(r, "id"))
	if !ok {
		utils.RespondAppError(w, r, apperr.NotFound("exercise not found"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}
