package app

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"durak/internal/domain"
)

// DefaultChatHistoryLimit bounds the room chat log when no limit is
// configured.
const DefaultChatHistoryLimit = 50

// MaxNameLength caps a player's display name.
const MaxNameLength = 20

// Service contains the Durak use-cases operating on room state. Callers
// must hold the room's lock around every method; the service itself never
// locks room state.
type Service struct {
	rngMu sync.Mutex
	rng   *rand.Rand

	// ChatHistoryLimit bounds the chat log kept per room. Zero means
	// DefaultChatHistoryLimit.
	ChatHistoryLimit int
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

// shuffledDeck builds a fresh shuffled deck. The rng is shared across
// rooms, so draws are serialized here rather than under any room lock.
func (s *Service) shuffledDeck() []domain.Card {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return domain.ShuffleDeck(domain.NewDeck(), s.rng)
}

// Join seats a new player or resumes an existing one by id. Resuming
// restores the connection flag without touching hand or role state. The
// first player to join becomes the host.
func (s *Service) Join(g *domain.Game, name, requestedID string) (*domain.Player, error) {
	name = strings.TrimSpace(name)
	if len(name) > MaxNameLength {
		name = name[:MaxNameLength]
	}
	if name == "" {
		return nil, reject("Enter a player name.")
	}
	if g.Phase != domain.PhaseLobby && requestedID == "" {
		return nil, reject("The game has already started.")
	}
	if requestedID != "" {
		if player := g.FindPlayer(requestedID); player != nil {
			player.Connected = true
			player.Name = name
			return player, nil
		}
	}
	if g.Phase != domain.PhaseLobby {
		return nil, reject("The game has already started.")
	}
	if len(g.Players) >= g.MaxPlayers {
		return nil, reject("The room is full.")
	}
	player := &domain.Player{
		ID:        uuid.NewString(),
		Name:      name,
		Connected: true,
	}
	g.Players = append(g.Players, player)
	if g.HostID == "" {
		g.HostID = player.ID
	}
	return player, nil
}

// Disconnect flags the player as gone without releasing the seat, so a
// later Join with the same id resumes the session.
func (s *Service) Disconnect(g *domain.Game, player *domain.Player) {
	player.Connected = false
}

// StartGame deals the first round of the room. Only the host may start,
// and only from the lobby with at least two players seated.
func (s *Service) StartGame(g *domain.Game, actor *domain.Player) error {
	if actor.ID != g.HostID {
		return reject("Only the host can start the game.")
	}
	if len(g.Players) < 2 {
		return reject("At least two players are needed.")
	}
	if g.Phase != domain.PhaseLobby {
		return reject("The game has already started.")
	}
	s.deal(g)
	return nil
}

// deal shuffles a fresh deck, exposes the trump, hands out six cards per
// seat one round at a time, and designates the opening roles.
func (s *Service) deal(g *domain.Game) {
	g.Phase = domain.PhasePlaying
	g.Deck = s.shuffledDeck()
	trump := g.Deck[0] // bottom of the deck, drawn last
	g.TrumpCard = &trump
	for i := 0; i < domain.HandSize; i++ {
		for _, player := range g.Players {
			if card, ok := g.DrawCard(); ok {
				player.Hand = append(player.Hand, card)
			}
		}
	}
	attacker := g.LowestTrumpSeat(trump.Suit)
	g.Attacker = domain.SeatAt(attacker)
	g.Defender = g.NextActiveSeat(attacker)
	if !g.Defender.Present() {
		g.Defender = domain.SeatAt(0)
	}
	g.RecalcAttackLimit()
	g.Table = nil
	g.AllowThrowIns = false
	clear(g.Passed)
	g.Status = g.Players[attacker].Name + " attacks."
}

// PlayAttack lays an attack card. The first card of a round may only come
// from the designated attacker; afterwards any rank already on the table
// may be thrown in, by other players only once throw-ins are open.
func (s *Service) PlayAttack(g *domain.Game, actor *domain.Player, card domain.Card) error {
	if g.Phase != domain.PhasePlaying {
		return reject("The game is not in progress.")
	}
	if !g.Attacker.Present() || !g.Defender.Present() {
		return reject("Attacking is not possible right now.")
	}
	limit := max(1, g.AttackLimit)
	if len(g.Table) >= limit {
		return reject("No more cards can be thrown in.")
	}
	if actor.CardIndex(card) == -1 {
		return reject("You do not hold that card.")
	}
	if len(g.Table) == 0 {
		if actor.ID != g.PlayerAt(g.Attacker).ID {
			return reject("The designated attacker leads the round.")
		}
	} else {
		if actor.ID == g.PlayerAt(g.Defender).ID {
			return reject("The defender cannot throw in.")
		}
		if _, ok := g.RanksOnTable()[card.Rank]; !ok {
			return reject("Only ranks already on the table can be thrown in.")
		}
		if actor.ID != g.PlayerAt(g.Attacker).ID && !g.AllowThrowIns {
			return reject("Wait until the defender beats the first card.")
		}
	}

	actor.RemoveCard(card)
	firstCard := len(g.Table) == 0
	g.Table = append(g.Table, domain.TableSlot{Attack: card, AttackerID: actor.ID})
	clear(g.Passed)
	if firstCard {
		g.AllowThrowIns = false
		g.Status = g.PlayerAt(g.Defender).Name + " must defend."
	}
	return nil
}

// PlayDefense covers the table slot at attackIndex. The first successful
// defense of a round opens throw-ins.
func (s *Service) PlayDefense(g *domain.Game, actor *domain.Player, card domain.Card, attackIndex int) error {
	if g.Phase != domain.PhasePlaying {
		return reject("The game is not in progress.")
	}
	if !g.Defender.Present() {
		return reject("There is no defender.")
	}
	if actor.ID != g.PlayerAt(g.Defender).ID {
		return reject("Another player is defending right now.")
	}
	if attackIndex < 0 || attackIndex >= len(g.Table) {
		return reject("There is no such card on the table.")
	}
	if g.Table[attackIndex].Defense != nil {
		return reject("That card is already beaten.")
	}
	if actor.CardIndex(card) == -1 {
		return reject("You do not hold that card.")
	}
	if !domain.Beats(card, g.Table[attackIndex].Attack, g.TrumpSuit()) {
		return reject("That card does not beat the attack.")
	}

	actor.RemoveCard(card)
	defense := card
	g.Table[attackIndex].Defense = &defense
	g.AllowThrowIns = true
	if !g.PendingDefense() {
		g.Status = "Attackers decide: throw in or pass."
	}
	return nil
}

// PassAttack records that the actor is done attacking. Once every active
// non-defender holding cards has passed and every slot is defended, the
// round resolves in the defender's favor.
func (s *Service) PassAttack(g *domain.Game, actor *domain.Player) error {
	if g.Phase != domain.PhasePlaying {
		return reject("The game is not in progress.")
	}
	if len(g.Table) == 0 {
		return reject("There is nothing to pass on yet.")
	}
	if !g.Defender.Present() {
		return reject("There is no defender.")
	}
	if actor.ID == g.PlayerAt(g.Defender).ID {
		return reject("The defender cannot pass.")
	}
	if g.PendingDefense() {
		return reject("Wait for every card to be defended first.")
	}

	g.Passed[actor.ID] = struct{}{}
	for idx, player := range g.Players {
		if idx == g.Defender.Index() || player.IsOut || len(player.Hand) == 0 {
			continue
		}
		if _, ok := g.Passed[player.ID]; !ok {
			return nil
		}
	}
	s.finishSuccessfulRound(g)
	return nil
}

// finishSuccessfulRound discards the table, promotes the defender to
// attacker, refills hands starting from the new attacker, and checks the
// deal for an end.
func (s *Service) finishSuccessfulRound(g *domain.Game) {
	for _, slot := range g.Table {
		g.Discard = append(g.Discard, slot.Attack)
		if slot.Defense != nil {
			g.Discard = append(g.Discard, *slot.Defense)
		}
	}
	g.Table = nil
	clear(g.Passed)
	g.AllowThrowIns = false
	if !g.Attacker.Present() || !g.Defender.Present() {
		return
	}
	g.Status = g.PlayerAt(g.Defender).Name + " defended and now attacks."
	g.Attacker = g.Defender
	g.Defender = g.NextActiveSeat(g.Attacker.Index())
	if !g.Defender.Present() {
		g.Defender = g.Attacker
	}
	g.RefillHands(g.Attacker)
	g.MarkExhaustedPlayersOut()
	g.EnsureRoles()
	g.RecalcAttackLimit()
	s.checkForGameEnd(g)
}

// TakeCards makes the defender absorb the whole table, ending the round
// unresolved. The attack passes over the defender to the next active
// player.
func (s *Service) TakeCards(g *domain.Game, actor *domain.Player) error {
	if g.Phase != domain.PhasePlaying {
		return reject("The game is not in progress.")
	}
	if !g.Defender.Present() || len(g.Table) == 0 {
		return reject("There is nothing to take.")
	}
	defender := g.PlayerAt(g.Defender)
	if actor.ID != defender.ID {
		return reject("Only the defender can take the cards.")
	}

	for _, slot := range g.Table {
		defender.Hand = append(defender.Hand, slot.Attack)
		if slot.Defense != nil {
			defender.Hand = append(defender.Hand, *slot.Defense)
		}
	}
	g.Table = nil
	clear(g.Passed)
	g.AllowThrowIns = false
	prevAttacker := 0
	if g.Attacker.Present() {
		prevAttacker = g.Attacker.Index()
	}
	g.Status = defender.Name + " took the cards. " + g.Players[prevAttacker].Name + " attacks."
	g.RefillHands(domain.SeatAt(prevAttacker))
	g.MarkExhaustedPlayersOut()
	g.Defender = g.NextActiveSeat(prevAttacker)
	g.EnsureRoles()
	g.RecalcAttackLimit()
	s.checkForGameEnd(g)
	return nil
}

// Surrender ends the deal immediately with the actor recorded as both the
// surrendering player and the loser.
func (s *Service) Surrender(g *domain.Game, actor *domain.Player) error {
	if g.Phase != domain.PhasePlaying {
		return reject("The game is not in progress.")
	}
	if actor.IsOut {
		return reject("You are already out of the deal.")
	}
	g.SurrenderedID = actor.ID
	g.LoserID = actor.ID
	g.Phase = domain.PhaseEnded
	g.Status = actor.Name + " surrendered."
	return nil
}

// SendChat appends a message to the bounded room chat log.
func (s *Service) SendChat(g *domain.Game, actor *domain.Player, text string) error {
	if g.Phase == domain.PhaseLobby {
		return reject("Chat opens once the game starts.")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return reject("The message is empty.")
	}
	if len(text) > 200 {
		text = text[:200]
	}
	g.Chat = append(g.Chat, domain.ChatMessage{
		PlayerID:   actor.ID,
		PlayerName: actor.Name,
		Text:       text,
	})
	limit := s.ChatHistoryLimit
	if limit <= 0 {
		limit = DefaultChatHistoryLimit
	}
	if len(g.Chat) > limit {
		g.Chat = g.Chat[len(g.Chat)-limit:]
	}
	return nil
}

// RequestRematch records a rematch vote. When every connected seated
// player has voted, the room re-deals into a fresh game.
func (s *Service) RequestRematch(g *domain.Game, actor *domain.Player) error {
	if g.Phase != domain.PhaseEnded {
		return reject("A rematch can only follow a finished game.")
	}
	g.RematchVotes[actor.ID] = struct{}{}
	if !rematchReady(g) {
		g.Status = actor.Name + " wants a rematch."
		return nil
	}
	s.redeal(g)
	return nil
}

// CancelRematch withdraws the actor's rematch vote.
func (s *Service) CancelRematch(g *domain.Game, actor *domain.Player) error {
	if g.Phase != domain.PhaseEnded {
		return reject("A rematch can only follow a finished game.")
	}
	delete(g.RematchVotes, actor.ID)
	return nil
}

// rematchReady reports whether every connected seated player has voted,
// with at least two of them present.
func rematchReady(g *domain.Game) bool {
	connected := 0
	for _, player := range g.Players {
		if !player.Connected {
			continue
		}
		connected++
		if _, ok := g.RematchVotes[player.ID]; !ok {
			return false
		}
	}
	return connected >= 2
}

// redeal resets every per-deal field and starts a fresh deal with the
// same seating.
func (s *Service) redeal(g *domain.Game) {
	for _, player := range g.Players {
		player.Hand = nil
		player.IsOut = false
	}
	g.Deck = nil
	g.Discard = nil
	g.TrumpCard = nil
	g.Table = nil
	clear(g.Passed)
	clear(g.RematchVotes)
	g.LoserID = ""
	g.WinnerID = ""
	g.SurrenderedID = ""
	g.AllowThrowIns = false
	s.deal(g)
}

// checkForGameEnd moves the room to the ended phase once at most one
// active player remains; the last one standing is the durak.
func (s *Service) checkForGameEnd(g *domain.Game) {
	if g.Phase != domain.PhasePlaying {
		return
	}
	remaining := make([]*domain.Player, 0, len(g.Players))
	for _, player := range g.Players {
		if !player.IsOut {
			remaining = append(remaining, player)
		}
	}
	if len(remaining) > 1 {
		return
	}
	g.Phase = domain.PhaseEnded
	if len(remaining) == 1 {
		g.LoserID = remaining[0].ID
		g.Status = remaining[0].Name + " is left as the durak."
	} else {
		g.Status = "Game over."
	}
}
