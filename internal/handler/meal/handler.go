package meal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-diet/backend/internal/apperr"
	"github.com/zhouzirui/z-diet/backend/internal/auth"
	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
	mealService "github.com/zhouzirui/z-diet/backend/internal/service/meal"
	"github.com/zhouzirui/z-diet/backend/internal/validate"
	"github.com/zhouzirui/z-diet/backend/pkg/utils"
)

// Handler serves meal logging and summaries.
type Handler struct {
	meals *mealService.Service
}

// New creates a meal handler.
func New(meals *mealService.Service) *Handler {
	return &Handler{meals: meals}
}

// RegisterRoutes mounts meal routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/meals", h.handleListMeals)
	r.Post("/meals", h.handleCreateMeal)
	r.Delete("/meals/{id}", h.handleDeleteMeal)
	r.Get("/stats/weekly", h.handleWeeklyStats)
}

// createMealRequest is either a full meal or a food lookup selection.
type createMealRequest struct {
	meal.Meal
	Food       *meal.FoodItem `json:"food,omitempty"`
	Multiplier float64        `json:"multiplier,omitempty"`
}

func (h *Handler) handleCreateMeal(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req createMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondAppError(w, r, apperr.ValidationFailed([]validate.Issue{{
			Code:    "invalid_json",
			Message: "request body must be valid JSON",
		}}))
		return
	}

	var (
		created meal.Meal
		err     error
	)
	if req.Food != nil {
		multiplier := req.Multiplier
		if multiplier == 0 {
			multiplier = 1
		}
		created, err = h.meals.CreateFromFood(r.Context(), userID, *req.Food, multiplier, string(req.Type))
	} else {
		m := req.Meal
		switch m.Source {
		case meal.SourceChat, meal.SourceSearch, meal.SourceManual:
		default:
			m.Source = meal.SourceManual
		}
		created, err = h.meals.Create(r.Context(), userID, m)
	}
	if err != nil {
		utils.RespondAppError(w, r, mealError(err))
		return
	}

	utils.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleListMeals(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	q := r.URL.Query()

	meals, err := h.meals.List(r.Context(), userID, q.Get("from"), q.Get("to"))
	if err != nil {
		utils.RespondAppError(w, r, mealError(err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"meals": meals})
}

func (h *Handler) handleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	if err := h.meals.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		utils.RespondAppError(w, r, mealError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	stats, err := h.meals.WeeklyStats(r.Context(), userID, r.URL.Query().Get("end"))
	if err != nil {
		utils.RespondAppError(w, r, mealError(err))
		return
	}
	utils.RespondJSON(w, http.StatusOK, stats)
}

func mealError(err error) *apperr.Error {
	switch {
	case errors.Is(err, meal.ErrNotFound):
		return apperr.NotFound("Meal not found")
	case errors.Is(err, meal.ErrNameRequired),
		errors.Is(err, meal.ErrInvalidType),
		errors.Is(err, meal.ErrNegativeMacro),
		errors.Is(err, meal.ErrInvalidMealDate),
		errors.Is(err, meal.ErrInvalidMultiplier):
		return apperr.ValidationFailed([]validate.Issue{{Code: "invalid_meal", Message: err.Error()}})
	default:
		return apperr.Internal("failed to process meal", err)
	}
}
