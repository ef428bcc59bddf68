package domain

import "math/rand"

// Suit identifies one of the four French suits.
type Suit string

const (
	Clubs    Suit = "C"
	Diamonds Suit = "D"
	Hearts   Suit = "H"
	Spades   Suit = "S"
)

// Suits lists every suit in deck-building order.
var Suits = [...]Suit{Clubs, Diamonds, Hearts, Spades}

// Ranks lists every rank from weakest ("6") to strongest ("A").
var Ranks = [...]string{"6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// MaxAttacks caps how many attack slots a single round can hold.
const MaxAttacks = 6

// HandSize is the number of cards each player is refilled to.
const HandSize = 6

// Card is a single playing card of the 36-card Durak deck.
type Card struct {
	Suit Suit   `json:"suit"`
	Rank string `json:"rank"`
}

// RankValue returns the position of rank in the strict rank order, or -1
// for an unknown rank.
func RankValue(rank string) int {
	for i, r := range Ranks {
		if r == rank {
			return i
		}
	}
	return -1
}

// NewDeck returns all 36 cards in suit-then-rank order.
func NewDeck() []Card {
	deck := make([]Card, 0, len(Suits)*len(Ranks))
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Beats reports whether defense beats attack under the given trump suit.
// A defense wins with a higher rank of the same suit, or with any trump
// against a non-trump attack. Two distinct non-trump suits never beat.
func Beats(defense, attack Card, trumpSuit Suit) bool {
	if defense.Suit == attack.Suit {
		return RankValue(defense.Rank) > RankValue(attack.Rank)
	}
	return defense.Suit == trumpSuit && attack.Suit != trumpSuit
}
