package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"cardtable/internal/game"
)

// Client commands form a closed set: one variant per wire tag, so dispatch is
// an exhaustive type switch and anything else fails at parse time.
type command interface {
	tag() string
}

type discardCommand struct{ Card game.Card }
type passCommand struct{}
type pickupCommand struct{}
type undiscardCommand struct{}
type resetCommand struct{}

func (discardCommand) tag() string   { return "discard" }
func (passCommand) tag() string      { return "pass" }
func (pickupCommand) tag() string    { return "pickup" }
func (undiscardCommand) tag() string { return "undiscard" }
func (resetCommand) tag() string     { return "reset" }

var errUnknownCommand = errors.New("unknown command")

// parseCommand decodes a raw client frame into a typed command.
func parseCommand(raw []byte) (command, error) {
	var env struct {
		Cmd  string          `json:"cmd"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed command: %w", err)
	}

	switch env.Cmd {
	case "discard":
		var card game.Card
		if err := json.Unmarshal(env.Data, &card); err != nil {
			return nil, fmt.Errorf("malformed discard payload: %w", err)
		}
		return discardCommand{Card: card}, nil
	case "pass":
		return passCommand{}, nil
	case "pickup":
		return pickupCommand{}, nil
	case "undiscard":
		return undiscardCommand{}, nil
	case "reset":
		return resetCommand{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownCommand, env.Cmd)
	}
}
