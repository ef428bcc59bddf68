package app

import "durak/internal/domain"

// PlayerView is the per-recipient serialization of a seat. Only the
// requesting player's hand is revealed; everyone else is reported by hand
// size alone.
type PlayerView struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Hand      []domain.Card `json:"hand"`
	HandSize  int           `json:"handSize"`
	IsHost    bool          `json:"isHost"`
	IsOut     bool          `json:"isOut"`
	Connected bool          `json:"connected"`
}

// ActionSet flags which actions are currently legal for the requesting
// player, derived from the same rules the engine enforces.
type ActionSet struct {
	CanStart     bool `json:"canStart"`
	CanAttack    bool `json:"canAttack"`
	CanThrow     bool `json:"canThrow"`
	CanPass      bool `json:"canPass"`
	CanDefend    bool `json:"canDefend"`
	CanTake      bool `json:"canTake"`
	CanSurrender bool `json:"canSurrender"`
}

// GameView is the per-recipient serialization of a room.
type GameView struct {
	ID                string               `json:"id"`
	Phase             domain.Phase         `json:"phase"`
	MaxPlayers        int                  `json:"maxPlayers"`
	Players           []PlayerView         `json:"players"`
	DeckCount         int                  `json:"deckCount"`
	DiscardCount      int                  `json:"discardCount"`
	TrumpCard         *domain.Card         `json:"trumpCard"`
	Table             []domain.TableSlot   `json:"table"`
	Status            string               `json:"status"`
	AttackerID        string               `json:"attackerId"`
	DefenderID        string               `json:"defenderId"`
	AllowThrowIns     bool                 `json:"allowThrowIns"`
	LoserID           string               `json:"loserId"`
	WinnerID          string               `json:"winnerId"`
	SurrenderedPlayer string               `json:"surrenderedPlayer"`
	RematchVotes      []string             `json:"rematchVotes"`
	Chat              []domain.ChatMessage `json:"chat"`
	AvailableActions  ActionSet            `json:"availableActions"`
}

// Snapshot serializes the room for one recipient. It never mutates state
// and is safe to call for ids that are not seated (they see no hand and
// no legal actions).
func Snapshot(g *domain.Game, playerID string) GameView {
	players := make([]PlayerView, 0, len(g.Players))
	for _, p := range g.Players {
		view := PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Hand:      []domain.Card{},
			HandSize:  len(p.Hand),
			IsHost:    p.ID == g.HostID,
			IsOut:     p.IsOut,
			Connected: p.Connected,
		}
		if p.ID == playerID {
			view.Hand = append(view.Hand, p.Hand...)
		}
		players = append(players, view)
	}

	table := make([]domain.TableSlot, len(g.Table))
	copy(table, g.Table)

	view := GameView{
		ID:                g.ID,
		Phase:             g.Phase,
		MaxPlayers:        g.MaxPlayers,
		Players:           players,
		DeckCount:         len(g.Deck),
		DiscardCount:      len(g.Discard),
		TrumpCard:         g.TrumpCard,
		Table:             table,
		Status:            g.Status,
		AllowThrowIns:     g.AllowThrowIns,
		LoserID:           g.LoserID,
		WinnerID:          g.WinnerID,
		SurrenderedPlayer: g.SurrenderedID,
		RematchVotes:      make([]string, 0, len(g.RematchVotes)),
		Chat:              append([]domain.ChatMessage{}, g.Chat...),
		AvailableActions:  availableActions(g, playerID),
	}
	if attacker := g.PlayerAt(g.Attacker); attacker != nil {
		view.AttackerID = attacker.ID
	}
	if defender := g.PlayerAt(g.Defender); defender != nil {
		view.DefenderID = defender.ID
	}
	for _, p := range g.Players {
		if _, ok := g.RematchVotes[p.ID]; ok {
			view.RematchVotes = append(view.RematchVotes, p.ID)
		}
	}
	return view
}

// availableActions computes the legal-action flags for one player without
// mutating state.
func availableActions(g *domain.Game, playerID string) ActionSet {
	var actions ActionSet
	player := g.FindPlayer(playerID)
	if player == nil || player.IsOut {
		return actions
	}
	if g.Phase == domain.PhaseLobby {
		actions.CanStart = player.ID == g.HostID && len(g.Players) >= 2
		return actions
	}
	if g.Phase != domain.PhasePlaying || !g.Attacker.Present() || !g.Defender.Present() {
		return actions
	}

	actions.CanSurrender = true

	attacker := g.PlayerAt(g.Attacker)
	defender := g.PlayerAt(g.Defender)
	pending := g.PendingDefense()
	limit := max(1, g.AttackLimit)

	if player.ID != defender.ID && len(player.Hand) == 0 {
		return actions
	}

	if player.ID == attacker.ID && len(g.Table) < limit {
		if len(g.Table) == 0 {
			actions.CanAttack = true
		} else {
			actions.CanThrow = holdsTableRank(g, player)
		}
	} else if player.ID != defender.ID && g.AllowThrowIns && len(g.Table) < limit {
		actions.CanThrow = holdsTableRank(g, player)
	}
	if player.ID != defender.ID {
		actions.CanPass = len(g.Table) > 0 && !pending
	}
	if player.ID == defender.ID {
		actions.CanDefend = pending
		actions.CanTake = len(g.Table) > 0
	}
	return actions
}

// holdsTableRank reports whether the player holds any rank already on the
// table.
func holdsTableRank(g *domain.Game, player *domain.Player) bool {
	ranks := g.RanksOnTable()
	if len(ranks) == 0 {
		return false
	}
	for _, card := range player.Hand {
		if _, ok := ranks[card.Rank]; ok {
			return true
		}
	}
	return false
}
