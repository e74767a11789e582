// Package realtime is the websocket side of change notifications.
// Clients connect, send a join message carrying their user id, and are
// placed in a private room of that name. The server pushes named
// events either to one room or to every connected socket.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/edunest/school-back/internal/logger"
)

const joinTimeout = 10 * time.Second

type joinMessage struct {
	Event  string `json:"event"`
	UserID string `json:"userId"`
}

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type Hub struct {
	mu       sync.Mutex
	rooms    map[string]map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			// Browser origin is enforced upstream by the CORS layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logger.With("realtime"),
	}
}

// Handle upgrades the request and keeps the connection registered in
// its room until the peer goes away.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(joinTimeout))
	var join joinMessage
	if err := conn.ReadJSON(&join); err != nil || join.Event != "join" || join.UserID == "" {
		h.log.Debug().Err(err).Msg("connection closed before joining a room")
		return
	}
	conn.SetReadDeadline(time.Time{})

	h.register(join.UserID, conn)
	defer h.unregister(join.UserID, conn)
	h.log.Debug().Str("user_id", join.UserID).Msg("client joined room")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast delivers an event to every connected client.
func (h *Hub) Broadcast(event string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.rooms {
		for conn := range room {
			h.write(conn, event, payload)
		}
	}
}

// SendToUser delivers an event to one user's room. An empty or unknown
// room drops the event; that is not an error.
func (h *Hub) SendToUser(userID, event string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.rooms[userID] {
		h.write(conn, event, payload)
	}
}

func (h *Hub) write(conn *websocket.Conn, event string, payload any) {
	if err := conn.WriteJSON(envelope{Event: event, Data: payload}); err != nil {
		h.log.Debug().Err(err).Str("event", event).Msg("dropping unreachable client")
	}
}

func (h *Hub) register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[userID] == nil {
		h.rooms[userID] = make(map[*websocket.Conn]struct{})
	}
	h.rooms[userID][conn] = struct{}{}
}

func (h *Hub) unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[userID], conn)
	if len(h.rooms[userID]) == 0 {
		delete(h.rooms, userID)
	}
}
