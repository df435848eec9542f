package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/z-diet/backend/internal/auth"
	"github.com/zhouzirui/z-diet/backend/internal/config"
	"github.com/zhouzirui/z-diet/backend/internal/handler/chat"
	"github.com/zhouzirui/z-diet/backend/internal/handler/exercise"
	"github.com/zhouzirui/z-diet/backend/internal/handler/food"
	"github.com/zhouzirui/z-diet/backend/internal/handler/meal"
	"github.com/zhouzirui/z-diet/backend/internal/handler/realtime"
	"github.com/zhouzirui/z-diet/backend/internal/handler/stream"
	middlewarePkg "github.com/zhouzirui/z-diet/backend/internal/middleware"
	exerciseModel "github.com/zhouzirui/z-diet/backend/internal/model/exercise"
	"github.com/zhouzirui/z-diet/backend/internal/ratelimit"
	chatService "github.com/zhouzirui/z-diet/backend/internal/service/chat"
	mealService "github.com/zhouzirui/z-diet/backend/internal/service/meal"
	realtimeService "github.com/zhouzirui/z-diet/backend/internal/service/realtime"
	"github.com/zhouzirui/z-diet/backend/pkg/utils"
)

// Dependencies are the services the HTTP layer needs.
type Dependencies struct {
	Verifier  *auth.Verifier
	Limiter   *ratelimit.Limiter
	Relay     stream.ChatStreamer
	Foods     food.Searcher
	Chat      *chatService.Service
	Meals     *mealService.Service
	Exercises exerciseModel.Store
	Hub       *realtimeService.Hub
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// The exercise catalogue is public.
	exercise.New(deps.Exercises).RegisterRoutes(r)

	r.Group(func(private chi.Router) {
		private.Use(middlewarePkg.Authenticate(deps.Verifier))

		streamHandler := stream.New(deps.Relay, deps.Chat)
		private.With(middlewarePkg.RateLimit(deps.Limiter, config.FunctionDietChat)).
			Post("/diet-chat", streamHandler.HandleDietChat)

		foodHandler := food.New(deps.Foods)
		private.With(middlewarePkg.RateLimit(deps.Limiter, config.FunctionFoodSearch)).
			Post("/food-search", foodHandler.HandleFoodSearch)

		chat.New(deps.Chat).RegisterRoutes(private)
		meal.New(deps.Meals).RegisterRoutes(private)

		if deps.Hub != nil {
			realtime.New(deps.Hub).RegisterRoutes(private)
		}
	})

	return r
}
