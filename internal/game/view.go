package game

import "slices"

const viewDiscards = 5

// Seat is the public projection of one player: name and hand size, never the
// hand itself.
type Seat struct {
	Name  string `json:"name"`
	Cards int    `json:"cards"`
}

// View is the redacted state broadcast to every participant.
type View struct {
	Discards  []DiscardEntry `json:"discards"`
	History   []string       `json:"history"`
	Current   string         `json:"current"`
	Direction bool           `json:"direction"`
	Players   []Seat         `json:"players"`
}

// SharedView builds the broadcast-safe projection: the last few discards, the
// history, whose turn the table shows, and per-player hand counts.
func (e *Engine) SharedView() View {
	discards := e.discards
	if len(discards) > viewDiscards {
		discards = discards[len(discards)-viewDiscards:]
	}

	var current string
	if len(e.players) > 0 {
		current = e.players[e.current]
	}

	seats := make([]Seat, 0, len(e.players))
	for _, name := range e.players {
		seats = append(seats, Seat{Name: name, Cards: len(e.hands[name])})
	}

	return View{
		Discards:  slices.Clone(discards),
		History:   slices.Clone(e.history),
		Current:   current,
		Direction: e.direction,
		Players:   seats,
	}
}
