package app

import (
	"testing"

	"durak/internal/domain"
)

func TestSnapshotHidesOtherHands(t *testing.T) {
	svc, g := newLobby(t, 3)
	if err := svc.StartGame(g, g.Players[0]); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	view := Snapshot(g, g.Players[0].ID)

	if len(view.Players) != 3 {
		t.Fatalf("expected 3 player views, got %d", len(view.Players))
	}
	for i, pv := range view.Players {
		if pv.HandSize != domain.HandSize {
			t.Errorf("seat %d expected hand size %d, got %d", i, domain.HandSize, pv.HandSize)
		}
		if pv.ID == g.Players[0].ID {
			if len(pv.Hand) != domain.HandSize {
				t.Errorf("own hand expected revealed, got %d cards", len(pv.Hand))
			}
		} else if len(pv.Hand) != 0 {
			t.Errorf("seat %d hand expected hidden, got %d cards", i, len(pv.Hand))
		}
	}
	if view.DeckCount != len(g.Deck) {
		t.Errorf("expected deck count %d, got %d", len(g.Deck), view.DeckCount)
	}
	if view.TrumpCard == nil {
		t.Error("expected the trump card exposed")
	}
	if view.AttackerID == "" || view.DefenderID == "" {
		t.Error("expected both role ids present")
	}
}

func TestSnapshotForUnknownPlayer(t *testing.T) {
	svc, g := newLobby(t, 2)
	if err := svc.StartGame(g, g.Players[0]); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	view := Snapshot(g, "nobody")
	for _, pv := range view.Players {
		if len(pv.Hand) != 0 {
			t.Error("strangers must not see any hand")
		}
	}
	if view.AvailableActions != (ActionSet{}) {
		t.Errorf("strangers have no legal actions, got %+v", view.AvailableActions)
	}
}

func TestAvailableActions(t *testing.T) {
	t.Run("lobby host can start with two players", func(t *testing.T) {
		_, g := newLobby(t, 2)
		host := Snapshot(g, g.Players[0].ID).AvailableActions
		if !host.CanStart {
			t.Error("host expected to be able to start")
		}
		guest := Snapshot(g, g.Players[1].ID).AvailableActions
		if guest.CanStart {
			t.Error("guest must not be able to start")
		}
	})

	t.Run("attacker may lead, defender must respond", func(t *testing.T) {
		aHand := []domain.Card{{Suit: domain.Hearts, Rank: "9"}, {Suit: domain.Clubs, Rank: "9"}}
		bHand := []domain.Card{{Suit: domain.Hearts, Rank: "Q"}, {Suit: domain.Spades, Rank: "8"}}
		svc, g := playingPair(aHand, bHand)

		attacker := Snapshot(g, "a").AvailableActions
		if !attacker.CanAttack || attacker.CanThrow || attacker.CanPass || attacker.CanDefend || attacker.CanTake {
			t.Errorf("fresh round attacker flags wrong: %+v", attacker)
		}

		if err := svc.PlayAttack(g, g.Players[0], domain.Card{Suit: domain.Hearts, Rank: "9"}); err != nil {
			t.Fatalf("attack failed: %v", err)
		}

		attacker = Snapshot(g, "a").AvailableActions
		if attacker.CanAttack || !attacker.CanThrow {
			t.Errorf("attacker should continue by throwing in: %+v", attacker)
		}
		if attacker.CanPass {
			t.Error("pass must wait for every slot to be defended")
		}

		defender := Snapshot(g, "b").AvailableActions
		if !defender.CanDefend || !defender.CanTake {
			t.Errorf("defender flags wrong: %+v", defender)
		}
		if defender.CanAttack || defender.CanThrow || defender.CanPass {
			t.Errorf("defender must not attack or pass: %+v", defender)
		}

		if err := svc.PlayDefense(g, g.Players[1], domain.Card{Suit: domain.Hearts, Rank: "Q"}, 0); err != nil {
			t.Fatalf("defense failed: %v", err)
		}

		attacker = Snapshot(g, "a").AvailableActions
		if !attacker.CanPass {
			t.Error("attacker expected able to pass once all slots are defended")
		}
		defender = Snapshot(g, "b").AvailableActions
		if defender.CanDefend {
			t.Error("nothing left to defend")
		}
	})

	t.Run("surrender only while playing", func(t *testing.T) {
		aHand := []domain.Card{{Suit: domain.Hearts, Rank: "9"}}
		bHand := []domain.Card{{Suit: domain.Hearts, Rank: "Q"}}
		svc, g := playingPair(aHand, bHand)

		if actions := Snapshot(g, "a").AvailableActions; !actions.CanSurrender {
			t.Error("active player expected able to surrender")
		}
		if err := svc.Surrender(g, g.Players[0]); err != nil {
			t.Fatalf("surrender failed: %v", err)
		}
		if actions := Snapshot(g, "b").AvailableActions; actions.CanSurrender {
			t.Error("no surrender after the game ended")
		}
	})
}
