package domain

import "testing"

func testGame(handSizes ...int) *Game {
	g := NewGame("TEST42", 6)
	for i, size := range handSizes {
		p := &Player{ID: string(rune('a' + i)), Name: "p", Connected: true}
		for j := 0; j < size; j++ {
			p.Hand = append(p.Hand, Card{Suit: Suits[j%4], Rank: Ranks[j%9]})
		}
		g.Players = append(g.Players, p)
	}
	return g
}

func TestNextActiveSeat(t *testing.T) {
	g := testGame(1, 1, 1, 1)

	if seat := g.NextActiveSeat(0); !seat.Present() || seat.Index() != 1 {
		t.Errorf("expected seat 1, got %+v", seat)
	}

	g.Players[1].IsOut = true
	if seat := g.NextActiveSeat(0); !seat.Present() || seat.Index() != 2 {
		t.Errorf("expected out player skipped, got %+v", seat)
	}

	if seat := g.NextActiveSeat(3); !seat.Present() || seat.Index() != 0 {
		t.Errorf("expected wrap to seat 0, got %+v", seat)
	}

	for _, p := range g.Players {
		p.IsOut = true
	}
	if seat := g.NextActiveSeat(0); seat.Present() {
		t.Errorf("expected absent seat with all players out, got %+v", seat)
	}
}

func TestRefillHands(t *testing.T) {
	g := testGame(2, 6, 1)
	g.Deck = []Card{
		{Suit: Spades, Rank: "6"},
		{Suit: Spades, Rank: "7"},
		{Suit: Spades, Rank: "8"},
		{Suit: Spades, Rank: "9"},
		{Suit: Spades, Rank: "10"},
	}

	g.RefillHands(SeatAt(0))

	// Seat 0 refills fully first, then the deck runs out on seat 2.
	if len(g.Players[0].Hand) != 6 {
		t.Errorf("seat 0 expected 6 cards, got %d", len(g.Players[0].Hand))
	}
	if len(g.Players[1].Hand) != 6 {
		t.Errorf("seat 1 expected untouched 6 cards, got %d", len(g.Players[1].Hand))
	}
	if len(g.Players[2].Hand) != 2 {
		t.Errorf("seat 2 expected 2 cards after deck exhaustion, got %d", len(g.Players[2].Hand))
	}
	if len(g.Deck) != 0 {
		t.Errorf("expected empty deck, got %d cards", len(g.Deck))
	}
}

func TestRefillHandsSkipsOutPlayers(t *testing.T) {
	g := testGame(0, 0, 0)
	g.Players[1].IsOut = true
	g.Deck = NewDeck()

	g.RefillHands(SeatAt(0))

	if len(g.Players[1].Hand) != 0 {
		t.Errorf("out player must not be refilled, got %d cards", len(g.Players[1].Hand))
	}
	if len(g.Players[0].Hand) != HandSize || len(g.Players[2].Hand) != HandSize {
		t.Errorf("active players expected %d cards, got %d and %d", HandSize, len(g.Players[0].Hand), len(g.Players[2].Hand))
	}
}

func TestMarkExhaustedPlayersOut(t *testing.T) {
	g := testGame(0, 3)
	g.Deck = []Card{{Suit: Spades, Rank: "6"}}

	g.MarkExhaustedPlayersOut()
	if g.Players[0].IsOut {
		t.Fatal("player must not be retired while the deck has cards")
	}

	g.Deck = nil
	g.MarkExhaustedPlayersOut()
	if !g.Players[0].IsOut {
		t.Fatal("player with empty hand expected out once deck is empty")
	}
	if g.Players[1].IsOut {
		t.Fatal("player with cards must stay in")
	}
	if g.WinnerID != g.Players[0].ID {
		t.Errorf("first retired player expected as winner, got %q", g.WinnerID)
	}
}

func TestEnsureRoles(t *testing.T) {
	g := testGame(1, 1, 1)
	g.Attacker = SeatAt(0)
	g.Defender = SeatAt(1)

	g.Players[0].IsOut = true
	g.EnsureRoles()
	if !g.Attacker.Present() || g.Attacker.Index() != 1 {
		t.Fatalf("attacker expected to advance to seat 1, got %+v", g.Attacker)
	}
	if !g.Defender.Present() || g.Defender.Index() != 2 {
		t.Fatalf("defender expected to move off the attacker, got %+v", g.Defender)
	}

	g.Players[1].IsOut = true
	g.Players[2].IsOut = true
	g.EnsureRoles()
	if g.Attacker.Present() {
		t.Errorf("attacker expected absent with everyone out, got %+v", g.Attacker)
	}
}

func TestRecalcAttackLimit(t *testing.T) {
	tests := []struct {
		name     string
		handSize int
		expected int
	}{
		{name: "large hand clamps to max", handSize: 9, expected: 6},
		{name: "small hand limits attacks", handSize: 3, expected: 3},
		{name: "empty hand keeps floor of one", handSize: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testGame(6, tt.handSize)
			g.Defender = SeatAt(1)
			g.RecalcAttackLimit()
			if g.AttackLimit != tt.expected {
				t.Errorf("expected limit %d, got %d", tt.expected, g.AttackLimit)
			}
		})
	}

	t.Run("no defender resets to max", func(t *testing.T) {
		g := testGame(1)
		g.AttackLimit = 2
		g.RecalcAttackLimit()
		if g.AttackLimit != MaxAttacks {
			t.Errorf("expected limit %d, got %d", MaxAttacks, g.AttackLimit)
		}
	})
}

func TestLowestTrumpSeat(t *testing.T) {
	g := testGame(0, 0, 0)
	g.Players[0].Hand = []Card{{Suit: Hearts, Rank: "A"}}
	g.Players[1].Hand = []Card{{Suit: Spades, Rank: "Q"}}
	g.Players[2].Hand = []Card{{Suit: Spades, Rank: "8"}}

	if seat := g.LowestTrumpSeat(Spades); seat != 2 {
		t.Errorf("expected seat 2 with the lowest trump, got %d", seat)
	}

	// Tie on rank resolves to the first seat in seating order.
	g.Players[1].Hand = []Card{{Suit: Spades, Rank: "8"}}
	if seat := g.LowestTrumpSeat(Spades); seat != 1 {
		t.Errorf("expected first matching seat to win the tie, got %d", seat)
	}

	// No trump in any hand falls back to seat 0.
	if seat := g.LowestTrumpSeat(Diamonds); seat != 0 {
		t.Errorf("expected fallback to seat 0, got %d", seat)
	}
}

func TestRanksOnTable(t *testing.T) {
	g := testGame(1)
	defense := Card{Suit: Spades, Rank: "K"}
	g.Table = []TableSlot{
		{Attack: Card{Suit: Hearts, Rank: "9"}, Defense: &defense},
		{Attack: Card{Suit: Clubs, Rank: "J"}},
	}

	ranks := g.RanksOnTable()
	for _, want := range []string{"9", "K", "J"} {
		if _, ok := ranks[want]; !ok {
			t.Errorf("rank %q missing from table ranks", want)
		}
	}
	if len(ranks) != 3 {
		t.Errorf("expected 3 distinct ranks, got %d", len(ranks))
	}
}
