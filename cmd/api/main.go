package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-diet/backend/internal/auth"
	"github.com/zhouzirui/z-diet/backend/internal/config"
	"github.com/zhouzirui/z-diet/backend/internal/handler"
	"github.com/zhouzirui/z-diet/backend/internal/handler/food"
	"github.com/zhouzirui/z-diet/backend/internal/model/audit"
	"github.com/zhouzirui/z-diet/backend/internal/model/exercise"
	"github.com/zhouzirui/z-diet/backend/internal/ratelimit"
	"github.com/zhouzirui/z-diet/backend/internal/service/ai"
	"github.com/zhouzirui/z-diet/backend/internal/service/chat"
	foodService "github.com/zhouzirui/z-diet/backend/internal/service/food"
	"github.com/zhouzirui/z-diet/backend/internal/service/meal"
	"github.com/zhouzirui/z-diet/backend/internal/service/realtime"
	"github.com/zhouzirui/z-diet/backend/internal/storage/memory"
	"github.com/zhouzirui/z-diet/backend/internal/storage/postgres"
	"github.com/zhouzirui/z-diet/backend/pkg/logger"
)

const sweepInterval = 5 * time.Minute

type repositories struct {
	chats      chat.Repository
	meals      meal.Repository
	audit      audit.Writer
	rateLimits ratelimit.Store
	close      func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("no .env file loaded, continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		logrus.WithError(err).Fatal("failed to configure logging")
	}
	log := logger.Component("main")

	repos, err := openRepositories(ctx, cfg.Store)
	if err != nil {
		log.WithError(err).Fatal("failed to open storage")
	}
	defer func() {
		if err := repos.close(); err != nil {
			log.WithError(err).Warn("failed to close storage")
		}
	}()

	limiter := ratelimit.New(repos.rateLimits, cfg.RateLimit.Window, cfg.RateLimit.Limits)
	hub := realtime.NewHub()
	chatSvc := chat.NewService(repos.chats)
	mealSvc := meal.NewService(repos.meals, meal.WithAudit(repos.audit), meal.WithNotifier(hub))

	// Initialize food lookup service
	var foods food.Searcher
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			log.WithError(err).Warn("failed to create chat model, food search disabled")
		} else {
			svc, err := foodService.NewService(ctx, chatModel, foodService.Settings{
				Temperature: cfg.AI.Temperature,
				MaxTokens:   cfg.AI.MaxTokens,
			})
			if err != nil {
				log.WithError(err).Warn("failed to initialize food search")
			} else {
				foods = svc
				log.Info("food search initialized successfully")
			}
		}
	} else {
		log.Warn("LLM_API_KEY not configured, relay endpoints will answer 500")
	}

	router := handler.NewRouter(handler.Dependencies{
		Verifier:  auth.NewVerifier(cfg.Auth.JWTSecret),
		Limiter:   limiter,
		Relay:     ai.NewRelay(cfg.AI, nil),
		Foods:     foods,
		Chat:      chatSvc,
		Meals:     mealSvc,
		Exercises: exercise.NewMemoryStore(exercise.Seed()),
		Hub:       hub,
	})

	startServer(ctx, cfg.Server, router)
}

func openRepositories(ctx context.Context, cfg config.StoreConfig) (*repositories, error) {
	if cfg.Driver == "postgres" {
		store, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		logger.Component("main").Info("using postgres storage")
		return &repositories{
			chats:      store.Chats(),
			meals:      store.Meals(),
			audit:      store.Audit(),
			rateLimits: store.RateLimits(),
			close:      store.Close,
		}, nil
	}

	limits := ratelimit.NewMemoryStore()
	go limits.RunSweeper(ctx, sweepInterval)

	logger.Component("main").Info("using in-memory storage")
	return &repositories{
		chats:      memory.NewChatStore(),
		meals:      memory.NewMealStore(),
		audit:      memory.NewAuditStore(),
		rateLimits: limits,
		close:      func() error { return nil },
	}, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Component("main").WithField("addr", addr).Info("diet backend listening")
	if err := runServer(ctx, srv); err != nil {
		logger.Component("main").WithError(err).Fatal("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
