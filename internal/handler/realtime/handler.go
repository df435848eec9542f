package realtime

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/z-diet/backend/internal/apperr"
	"github.com/zhouzirui/z-diet/backend/internal/auth"
	realtimeService "github.com/zhouzirui/z-diet/backend/internal/service/realtime"
	"github.com/zhouzirui/z-diet/backend/pkg/logger"
	"github.com/zhouzirui/z-diet/backend/pkg/utils"
)

const pingInterval = 25 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades authenticated requests to meal event sockets.
type Handler struct {
	hub *realtimeService.Hub
}

// New creates a realtime handler.
func New(hub *realtimeService.Hub) *Handler {
	return &Handler{hub: hub}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/meals", h.handleMealsSocket)
}

func (h *Handler) handleMealsSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utils.RespondAppError(w, r, apperr.AuthenticationRequired(nil))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Component("realtime").WithError(err).Debug("websocket upgrade failed")
		return
	}

	client := realtimeService.NewClient(userID, conn)
	h.hub.Register(client)

	done := make(chan struct{})
	defer close(done)

	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := client.Write(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Clients only listen; the read loop detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.hub.Unregister(client)
			return
		}
	}
}
