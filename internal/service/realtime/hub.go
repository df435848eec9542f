// Package realtime fans meal change events out to a user's websockets.
package realtime

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-diet/backend/pkg/logger"
)

const writeWait = 10 * time.Second

// Client is one websocket connection owned by a user.
type Client struct {
	UserID string
	conn   *websocket.Conn
	mu     sync.Mutex
}

// NewClient wraps conn for userID.
func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{UserID: userID, conn: conn}
}

// Write sends a single frame. gorilla connections allow one writer at a time.
func (c *Client) Write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// Hub tracks live clients per user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	log     *logrus.Entry
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		log:     logger.Component("realtime"),
	}
}

// Register adds c to its user's set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes c and closes its connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// Connections reports how many sockets userID has open.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish sends payload as JSON to every socket of userID.
func (h *Hub) Publish(userID string, payload any) {
	msg, err := sonic.Marshal(payload)
	if err != nil {
		h.log.WithError(err).Warn("failed to encode realtime payload")
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Write(websocket.TextMessage, msg); err != nil {
			h.log.WithError(err).WithField("user_id", userID).Debug("dropping realtime client")
			h.Unregister(c)
		}
	}
}
