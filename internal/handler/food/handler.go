package food

import (
	"context"
	"errors"
	"net/http"

	"github.com/zhouzirui/z-diet/backend/internal/apperr"
	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
	foodService "github.com/zhouzirui/z-diet/backend/internal/service/food"
	"github.com/zhouzirui/z-diet/backend/internal/validate"
	"github.com/zhouzirui/z-diet/backend/pkg/utils"
)

// Searcher looks up foods for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]meal.FoodItem, error)
}

// Handler serves nutrition lookups.
type Handler struct {
	search Searcher
}

// New creates a food handler. A nil searcher means no model is configured.
func New(search Searcher) *Handler {
	return &Handler{search: search}
}

// HandleFoodSearch runs after authentication and rate limiting.
func (h *Handler) HandleFoodSearch(w http.ResponseWriter, r *http.Request) {
	input, err := validate.SearchRequest(r.Body)
	if err != nil {
		var vErr *validate.Error
		if errors.As(err, &vErr) {
			utils.RespondAppError(w, r, apperr.ValidationFailed(vErr.Issues))
			return
		}
		utils.RespondAppError(w, r, apperr.ValidationFailed(nil))
		return
	}

	if h.search == nil {
		utils.RespondAppError(w, r, apperr.Internal("LLM API key is not configured", nil))
		return
	}

	foods, err := h.search.Search(r.Context(), input.Query)
	switch {
	case errors.Is(err, foodService.ErrParseFailed):
		utils.RespondAppError(w, r, apperr.ParseFailure("Failed to parse nutrition data", err))
		return
	case err != nil:
		utils.RespondAppError(w, r, apperr.DownstreamError("Failed to get nutrition data", err))
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"foods": foods})
}
