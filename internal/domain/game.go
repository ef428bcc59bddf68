package domain

// Phase represents the lifecycle stage of a room's current deal.
type Phase string

const (
	// PhaseLobby indicates the room is waiting for players.
	PhaseLobby Phase = "lobby"
	// PhasePlaying indicates a deal is in progress.
	PhasePlaying Phase = "playing"
	// PhaseEnded indicates the deal has concluded.
	PhaseEnded Phase = "ended"
)

// Seat is an optional reference into the seating order. The zero value is
// the absent seat.
type Seat struct {
	index   int
	present bool
}

// SeatAt returns a Seat referring to the given seating-order index.
func SeatAt(index int) Seat { return Seat{index: index, present: true} }

// NoSeat returns the absent Seat.
func NoSeat() Seat { return Seat{} }

// Present reports whether the seat refers to a player.
func (s Seat) Present() bool { return s.present }

// Index returns the seating-order index. Only meaningful when Present.
func (s Seat) Index() int { return s.index }

// Player holds the state of one seat in a room. ID is stable across
// socket churn; IsOut never resets within a deal.
type Player struct {
	ID        string
	Name      string
	Hand      []Card
	Connected bool
	IsOut     bool
}

// CardIndex returns the position of card in the hand, or -1 if not held.
func (p *Player) CardIndex(card Card) int {
	for i, owned := range p.Hand {
		if owned == card {
			return i
		}
	}
	return -1
}

// RemoveCard removes card from the hand and reports whether it was held.
func (p *Player) RemoveCard(card Card) bool {
	i := p.CardIndex(card)
	if i == -1 {
		return false
	}
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
	return true
}

// TableSlot is one attack laid on the table together with the card
// covering it, if any.
type TableSlot struct {
	Attack     Card   `json:"attack"`
	Defense    *Card  `json:"defense"`
	AttackerID string `json:"attackerId"`
}

// ChatMessage is one entry of the room chat log.
type ChatMessage struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Text       string `json:"text"`
}

// Game is the authoritative state of one room. All mutation happens under
// the room's lock in the gateway; the engine itself never locks.
type Game struct {
	ID         string
	MaxPlayers int
	Players    []*Player // seating order is turn order
	HostID     string
	Phase      Phase

	Deck      []Card
	Discard   []Card
	TrumpCard *Card

	Attacker Seat
	Defender Seat
	Table    []TableSlot

	Status        string
	AllowThrowIns bool
	Passed        map[string]struct{}
	AttackLimit   int

	LoserID       string
	WinnerID      string
	SurrenderedID string

	RematchVotes map[string]struct{}
	Chat         []ChatMessage
}

// NewGame returns an empty room in the lobby phase.
func NewGame(id string, maxPlayers int) *Game {
	return &Game{
		ID:           id,
		MaxPlayers:   maxPlayers,
		Phase:        PhaseLobby,
		Passed:       map[string]struct{}{},
		RematchVotes: map[string]struct{}{},
		AttackLimit:  MaxAttacks,
		Status:       "Waiting for players to join.",
	}
}

// FindPlayer returns the seated player with the given id, or nil.
func (g *Game) FindPlayer(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ActiveCount returns how many seated players are still in the deal.
func (g *Game) ActiveCount() int {
	n := 0
	for _, p := range g.Players {
		if !p.IsOut {
			n++
		}
	}
	return n
}

// TrumpSuit returns the suit of the revealed trump card, or "" before the
// deal.
func (g *Game) TrumpSuit() Suit {
	if g.TrumpCard == nil {
		return ""
	}
	return g.TrumpCard.Suit
}

// PlayerAt returns the player at the given seat, or nil for an absent
// seat.
func (g *Game) PlayerAt(seat Seat) *Player {
	if !seat.Present() || seat.Index() < 0 || seat.Index() >= len(g.Players) {
		return nil
	}
	return g.Players[seat.Index()]
}

// NextActiveSeat scans clockwise starting after from, skipping players
// who are out, wrapping once. It returns the absent seat when nobody is
// left.
func (g *Game) NextActiveSeat(from int) Seat {
	if len(g.Players) == 0 {
		return NoSeat()
	}
	total := len(g.Players)
	for step := 1; step <= total; step++ {
		idx := (from + step) % total
		if !g.Players[idx].IsOut {
			return SeatAt(idx)
		}
	}
	return NoSeat()
}

// DrawCard removes and returns the top card of the deck.
func (g *Game) DrawCard() (Card, bool) {
	if len(g.Deck) == 0 {
		return Card{}, false
	}
	card := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	return card, true
}

// RefillHands tops every active hand back up to HandSize, starting at the
// given seat and proceeding clockwise. The order decides who gets the
// last cards when the deck runs low; refill stops as soon as the deck is
// exhausted.
func (g *Game) RefillHands(start Seat) {
	if !start.Present() || len(g.Deck) == 0 {
		return
	}
	total := len(g.Players)
	idx := start.Index()
	for visited := 0; visited < total; visited++ {
		player := g.Players[idx]
		if !player.IsOut {
			for len(player.Hand) < HandSize {
				card, ok := g.DrawCard()
				if !ok {
					return
				}
				player.Hand = append(player.Hand, card)
			}
		}
		idx = (idx + 1) % total
	}
}

// MarkExhaustedPlayersOut retires every active player holding an empty
// hand, but only once the deck is empty: mid-round a hand may legitimately
// be empty before refill. The first player to leave this way is recorded
// as the winner of the deal.
func (g *Game) MarkExhaustedPlayersOut() {
	if len(g.Deck) > 0 {
		return
	}
	for _, p := range g.Players {
		if !p.IsOut && len(p.Hand) == 0 {
			p.IsOut = true
			if g.WinnerID == "" {
				g.WinnerID = p.ID
			}
		}
	}
}

// EnsureRoles advances the attacker past any retired player and keeps the
// defender distinct from the attacker. An absent attacker leaves the
// defender untouched.
func (g *Game) EnsureRoles() {
	if len(g.Players) == 0 {
		g.Attacker = NoSeat()
		g.Defender = NoSeat()
		return
	}
	if g.Attacker.Present() && g.Players[g.Attacker.Index()].IsOut {
		g.Attacker = g.NextActiveSeat(g.Attacker.Index())
	}
	if !g.Attacker.Present() {
		return
	}
	if g.Defender.Present() {
		defender := g.Players[g.Defender.Index()]
		if defender.IsOut || g.Defender.Index() == g.Attacker.Index() {
			g.Defender = g.NextActiveSeat(g.Attacker.Index())
		}
	}
}

// RecalcAttackLimit derives the attack limit from the defender's hand
// size, or resets it to the maximum when no defender is designated.
func (g *Game) RecalcAttackLimit() {
	if !g.Defender.Present() {
		g.AttackLimit = MaxAttacks
		return
	}
	size := len(g.Players[g.Defender.Index()].Hand)
	g.AttackLimit = min(MaxAttacks, max(1, size))
}

// LowestTrumpSeat returns the seat holding the lowest trump card, ties
// broken by seating order. When no hand holds a trump it falls back to
// seat 0.
func (g *Game) LowestTrumpSeat(trumpSuit Suit) int {
	best := 0
	bestValue := -1
	for idx, p := range g.Players {
		for _, card := range p.Hand {
			if card.Suit != trumpSuit {
				continue
			}
			value := RankValue(card.Rank)
			if bestValue == -1 || value < bestValue {
				bestValue = value
				best = idx
			}
		}
	}
	return best
}

// RanksOnTable collects every rank currently present on the table, from
// both attack and defense cards.
func (g *Game) RanksOnTable() map[string]struct{} {
	ranks := map[string]struct{}{}
	for _, slot := range g.Table {
		ranks[slot.Attack.Rank] = struct{}{}
		if slot.Defense != nil {
			ranks[slot.Defense.Rank] = struct{}{}
		}
	}
	return ranks
}

// PendingDefense reports whether any table slot still lacks a defense.
func (g *Game) PendingDefense() bool {
	for _, slot := range g.Table {
		if slot.Defense == nil {
			return true
		}
	}
	return false
}
