package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"durak/internal/domain"
)

// frame is the raw envelope of one inbound message. Every payload field
// is optional here; decodeAction turns the envelope into exactly one
// typed variant.
type frame struct {
	Action      string       `json:"action"`
	PlayerName  string       `json:"playerName"`
	PlayerID    string       `json:"playerId"`
	Card        *domain.Card `json:"card"`
	AttackIndex *int         `json:"attackIndex"`
	Message     string       `json:"message"`
}

// The closed set of inbound action variants, each carrying its own
// payload. Decoding happens once at the transport boundary; the engine
// never sees raw JSON.
type (
	joinAction struct {
		Name     string
		PlayerID string
	}
	startAction     struct{}
	attackAction    struct{ Card domain.Card }
	defenseAction   struct {
		Card        domain.Card
		AttackIndex int
	}
	passAction      struct{}
	takeAction      struct{}
	surrenderAction struct{}
	chatAction      struct{ Message string }
	rematchAction   struct{ Vote bool }
)

// decodeAction parses one inbound frame into its typed variant. Errors
// are user-facing and safe to echo back to the sender.
func decodeAction(data []byte) (any, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.New("malformed message")
	}
	switch f.Action {
	case "join":
		return joinAction{Name: f.PlayerName, PlayerID: f.PlayerID}, nil
	case "start_game":
		return startAction{}, nil
	case "play_attack":
		if f.Card == nil {
			return nil, errors.New("a card is required")
		}
		return attackAction{Card: *f.Card}, nil
	case "play_defense":
		if f.Card == nil || f.AttackIndex == nil {
			return nil, errors.New("a card and an attack index are required")
		}
		return defenseAction{Card: *f.Card, AttackIndex: *f.AttackIndex}, nil
	case "pass_attack":
		return passAction{}, nil
	case "take_cards":
		return takeAction{}, nil
	case "surrender":
		return surrenderAction{}, nil
	case "send_chat":
		return chatAction{Message: f.Message}, nil
	case "request_rematch":
		return rematchAction{Vote: true}, nil
	case "cancel_rematch":
		return rematchAction{Vote: false}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", f.Action)
	}
}
