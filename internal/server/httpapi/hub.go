package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/datingapp/internal/logging"
	"github.com/dmitrijs2005/datingapp/internal/server/presence"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Presence events pushed to hub clients.
const (
	EventUserIsOnline   = "UserIsOnline"
	EventUserIsOffline  = "UserIsOffline"
	EventGetOnlineUsers = "GetOnlineUsers"
)

const (
	defaultPingInterval = 15 * time.Second
	writeWait           = 5 * time.Second
	maxMessageSize      = 512
	sendBuffer          = 16
)

// Event is the JSON frame sent to hub clients.
type Event struct {
	Event     string   `json:"event"`
	Username  string   `json:"username,omitempty"`
	Usernames []string `json:"usernames,omitempty"`
}

type hubClient struct {
	id       string
	username string
	conn     *websocket.Conn
	send     chan Event
}

// Hub serves the presence websocket. Every socket is one connection in the
// registry; online and offline transitions are broadcast to the others.
type Hub struct {
	registry     *presence.Registry
	logger       logging.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration

	mu      sync.RWMutex
	clients map[string]*hubClient
}

// NewHub returns a hub accepting upgrades from allowedOrigins. Requests
// without an Origin header are accepted.
func NewHub(registry *presence.Registry, logger logging.Logger, allowedOrigins []string) *Hub {
	h := &Hub{
		registry:     registry,
		logger:       logger.With("module", "presence-hub"),
		pingInterval: defaultPingInterval,
		clients:      make(map[string]*hubClient),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			h.logger.Warn(r.Context(), "websocket origin rejected", "origin", origin)
			return false
		},
	}
	return h
}

// ServeHTTP upgrades the request and runs the connection until it closes.
// It must sit behind the auth middleware.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok || claims.Username == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(r.Context(), "websocket upgrade failed", "error", err.Error())
		return
	}

	c := &hubClient{
		id:       uuid.NewString(),
		username: claims.Username,
		conn:     conn,
		send:     make(chan Event, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	go h.writePump(c)

	if h.registry.Connect(c.username, c.id) {
		h.broadcast(Event{Event: EventUserIsOnline, Username: c.username}, c.id)
	}
	c.send <- Event{Event: EventGetOnlineUsers, Usernames: h.registry.ListOnlineUsers()}

	h.logger.Debug(r.Context(), "presence connected", "username", c.username, "connection_id", c.id)

	h.readPump(c)

	h.mu.Lock()
	delete(h.clients, c.id)
	close(c.send)
	h.mu.Unlock()

	if h.registry.Disconnect(c.username, c.id) {
		h.broadcast(Event{Event: EventUserIsOffline, Username: c.username}, "")
	}

	h.logger.Debug(r.Context(), "presence disconnected", "username", c.username, "connection_id", c.id)
}

// Evict closes every live connection of username and returns how many
// were closed. The normal disconnect path then updates the registry.
func (h *Hub) Evict(username string) int {
	ids, ok := h.registry.ConnectionsFor(username)
	if !ok {
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "account removed")
	for _, id := range ids {
		c, ok := h.clients[id]
		if !ok {
			continue
		}
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = c.conn.Close()
		n++
	}
	return n
}

// broadcast queues ev for every client except skipID. Slow clients whose
// buffer is full miss the event.
func (h *Hub) broadcast(ev Event, skipID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.clients {
		if id == skipID {
			continue
		}
		select {
		case c.send <- ev:
		default:
			h.logger.Warn(context.Background(), "presence event dropped", "connection_id", id, "event", ev.Event)
		}
	}
}

func (h *Hub) readPump(c *hubClient) {
	pongWait := 2 * h.pingInterval

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the only writer of data frames on c.conn.
func (h *Hub) writePump(c *hubClient) {
	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
