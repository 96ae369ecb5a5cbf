package ws

import (
	"encoding/json"

	"cardtable/internal/game"
	"cardtable/internal/logger"
)

// Outbound command tags.
const (
	cmdState      = "state"
	cmdLatestCard = "latest_card"
	cmdWinner     = "winner"
	cmdQuit       = "quit"
)

// Message is the envelope for every server-to-client frame. Exactly one of
// Cmd or Error is set.
type Message struct {
	Cmd   string `json:"cmd,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// handPayload is the personalized state sent only to its owner.
type handPayload struct {
	Hand []game.Card `json:"hand"`
}

func encode(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("marshal message", "cmd", msg.Cmd, "error", err)
		return nil
	}
	return data
}
