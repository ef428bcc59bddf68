package ws

import (
	cryptorand "crypto/rand"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"durak/internal/app"
	"durak/internal/domain"
)

const (
	roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomIDLength   = 6

	// writeWait bounds how long a slow consumer can stall a single send.
	writeWait = 10 * time.Second
)

// ErrInvalidMaxPlayers rejects room creation outside the 2..6 range.
var ErrInvalidMaxPlayers = errors.New("maxPlayers must be between 2 and 6")

// Hub owns the in-memory room table and adapts WebSocket traffic to the
// game engine. Rooms are independent units of mutual exclusion: every
// state mutation and the broadcast that follows it run under that room's
// lock, so actions within a room are totally ordered and rooms never
// contend with each other.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*Room

	svc      *app.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHub constructs a Hub around the given engine.
func NewHub(svc *app.Service, logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  map[string]*Room{},
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Room pairs one game with its mutation lock and the live connections
// subscribed to it.
type Room struct {
	mu    sync.Mutex
	game  *domain.Game
	conns map[string]*connection // player id -> live connection
}

// ID returns the room's human-enterable identifier.
func (r *Room) ID() string { return r.game.ID }

// CreateRoom registers a new empty room with a fresh collision-checked
// id.
func (h *Hub) CreateRoom(maxPlayers int) (*Room, error) {
	if maxPlayers < 2 || maxPlayers > 6 {
		return nil, ErrInvalidMaxPlayers
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for {
		id, err := newRoomID()
		if err != nil {
			return nil, err
		}
		if _, taken := h.rooms[id]; taken {
			continue
		}
		room := &Room{
			game:  domain.NewGame(id, maxPlayers),
			conns: map[string]*connection{},
		}
		h.rooms[id] = room
		return room, nil
	}
}

// room looks up a room by id.
func (h *Hub) room(id string) (*Room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[id]
	return room, ok
}

// newRoomID draws a short id from a restricted alphabet. crypto/rand
// keeps ids from being guessable from one another.
func newRoomID() (string, error) {
	buf := make([]byte, roomIDLength)
	if _, err := cryptorand.Read(buf); err != nil {
		return "", err
	}
	id := make([]byte, roomIDLength)
	for i, b := range buf {
		id[i] = roomIDAlphabet[int(b)%len(roomIDAlphabet)]
	}
	return string(id), nil
}

// connection wraps a websocket with a write mutex and deadline so
// concurrent sends never interleave frames and a dead peer cannot stall
// a broadcast indefinitely.
type connection struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *connection) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteJSON(v)
}
