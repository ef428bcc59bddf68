package ws

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"durak/internal/app"
	"durak/internal/domain"
)

type joinedFrame struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	GameID   string `json:"gameId"`
}

type stateFrame struct {
	Type string       `json:"type"`
	Game app.GameView `json:"game"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// HandleCreateGame serves POST /api/games: it registers a room and
// returns its id.
func (h *Hub) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaxPlayers int `json:"maxPlayers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	room, err := h.CreateRoom(req.MaxPlayers)
	if err != nil {
		if errors.Is(err, ErrInvalidMaxPlayers) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("room creation failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.logger.Info("room created",
		zap.String("room", room.ID()),
		zap.Int("max_players", req.MaxPlayers))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"gameId": room.ID()})
}

// HandleSocket serves GET /ws/{id}: one connection per joined player.
func (h *Hub) HandleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	c := &connection{ws: conn}

	room, ok := h.room(r.PathValue("id"))
	if !ok {
		_ = c.writeJSON(errorFrame{Type: "error", Message: "Game not found."})
		return
	}
	h.serve(room, c)
}

// serve runs the per-connection read loop. The connection carries no
// game identity until a join resolves it to a player; that player id
// outlives any number of sockets.
func (h *Hub) serve(room *Room, c *connection) {
	var player *domain.Player
	defer func() {
		if player != nil {
			h.dropConnection(room, c, player)
		}
	}()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		act, err := decodeAction(data)
		if err != nil {
			_ = c.writeJSON(errorFrame{Type: "error", Message: err.Error()})
			continue
		}
		if join, ok := act.(joinAction); ok {
			p, err := h.handleJoin(room, c, join)
			if err != nil {
				_ = c.writeJSON(errorFrame{Type: "error", Message: err.Error()})
				continue
			}
			player = p
			continue
		}
		if player == nil {
			_ = c.writeJSON(errorFrame{Type: "error", Message: "Join the game first."})
			continue
		}
		h.apply(room, c, player, act)
	}
}

// handleJoin seats or resumes a player and attaches this connection to
// their id, superseding any previous socket.
func (h *Hub) handleJoin(room *Room, c *connection, join joinAction) (*domain.Player, error) {
	room.mu.Lock()
	defer room.mu.Unlock()
	player, err := h.svc.Join(room.game, join.Name, join.PlayerID)
	if err != nil {
		return nil, err
	}
	room.conns[player.ID] = c
	_ = c.writeJSON(joinedFrame{Type: "joined", PlayerID: player.ID, GameID: room.game.ID})
	h.broadcastLocked(room)
	h.logger.Info("player joined",
		zap.String("room", room.game.ID),
		zap.String("player", player.ID),
		zap.Bool("resumed", join.PlayerID != ""))
	return player, nil
}

// apply runs one action under the room lock and broadcasts the outcome.
// Rule rejections go back to the acting connection only and leave state
// untouched.
func (h *Hub) apply(room *Room, c *connection, player *domain.Player, act any) {
	room.mu.Lock()
	defer room.mu.Unlock()

	var err error
	switch a := act.(type) {
	case startAction:
		err = h.svc.StartGame(room.game, player)
	case attackAction:
		err = h.svc.PlayAttack(room.game, player, a.Card)
	case defenseAction:
		err = h.svc.PlayDefense(room.game, player, a.Card, a.AttackIndex)
	case passAction:
		err = h.svc.PassAttack(room.game, player)
	case takeAction:
		err = h.svc.TakeCards(room.game, player)
	case surrenderAction:
		err = h.svc.Surrender(room.game, player)
	case chatAction:
		err = h.svc.SendChat(room.game, player, a.Message)
	case rematchAction:
		if a.Vote {
			err = h.svc.RequestRematch(room.game, player)
		} else {
			err = h.svc.CancelRematch(room.game, player)
		}
	}
	if err != nil {
		var rule *app.RuleError
		if errors.As(err, &rule) {
			_ = c.writeJSON(errorFrame{Type: "error", Message: rule.Reason})
			return
		}
		h.logger.Error("action failed",
			zap.String("room", room.game.ID),
			zap.String("player", player.ID),
			zap.Error(err))
		return
	}
	h.broadcastLocked(room)
}

// broadcastLocked sends every connected player their own view of the
// room. The caller holds the room lock. A failed send demotes only that
// player's connection; sibling deliveries always proceed.
func (h *Hub) broadcastLocked(room *Room) {
	for _, p := range room.game.Players {
		conn, ok := room.conns[p.ID]
		if !ok {
			continue
		}
		view := app.Snapshot(room.game, p.ID)
		if err := conn.writeJSON(stateFrame{Type: "game_state", Game: view}); err != nil {
			delete(room.conns, p.ID)
			p.Connected = false
			h.logger.Warn("broadcast delivery failed",
				zap.String("room", room.game.ID),
				zap.String("player", p.ID),
				zap.Error(err))
		}
	}
}

// dropConnection detaches a dead socket. A reconnect may already have
// superseded it, in which case the player stays connected.
func (h *Hub) dropConnection(room *Room, c *connection, player *domain.Player) {
	room.mu.Lock()
	defer room.mu.Unlock()
	if current, ok := room.conns[player.ID]; !ok || current != c {
		return
	}
	delete(room.conns, player.ID)
	h.svc.Disconnect(room.game, player)
	h.logger.Info("player disconnected",
		zap.String("room", room.game.ID),
		zap.String("player", player.ID))
	h.broadcastLocked(room)
}
