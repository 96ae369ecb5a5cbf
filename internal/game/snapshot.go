package game

import (
	"encoding/json"
	"fmt"
	"slices"
)

// SnapshotVersion tags the persisted layout. Loads with any other version
// fall back to a fresh engine rather than guessing at the blob's shape.
const SnapshotVersion = 1

// Snapshot is the lossless serializable projection of an Engine, the unit
// persisted to the durable store and restored at cold start.
type Snapshot struct {
	Version   int               `json:"version"`
	Deck      []Card            `json:"deck"`
	Hands     map[string][]Card `json:"hands"`
	Players   []string          `json:"players"`
	Discards  []DiscardEntry    `json:"discards"`
	History   []string          `json:"history"`
	Current   int               `json:"current"`
	Direction bool              `json:"direction"`
}

// MarshalJSON writes a discard entry as a [name, card] pair.
func (d DiscardEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{d.Name, d.Card})
}

func (d *DiscardEntry) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &d.Name); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &d.Card)
}

// Snapshot captures the full engine state.
func (e *Engine) Snapshot() Snapshot {
	hands := make(map[string][]Card, len(e.hands))
	for name, hand := range e.hands {
		hands[name] = slices.Clone(hand)
	}
	return Snapshot{
		Version:   SnapshotVersion,
		Deck:      slices.Clone(e.deck),
		Hands:     hands,
		Players:   slices.Clone(e.players),
		Discards:  slices.Clone(e.discards),
		History:   slices.Clone(e.history),
		Current:   e.current,
		Direction: e.direction,
	}
}

// FromSnapshot rebuilds an engine from a validated snapshot.
func FromSnapshot(s Snapshot) (*Engine, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	hands := make(map[string][]Card, len(s.Hands))
	for name, hand := range s.Hands {
		hands[name] = slices.Clone(hand)
	}
	return &Engine{
		deck:      slices.Clone(s.Deck),
		hands:     hands,
		players:   slices.Clone(s.Players),
		discards:  slices.Clone(s.Discards),
		history:   slices.Clone(s.History),
		current:   s.Current,
		direction: s.Direction,
	}, nil
}

// Restore decodes a persisted blob into an engine. Any structural problem is
// returned as an error so the caller can fall back to a fresh table.
func Restore(data []byte) (*Engine, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	e, err := FromSnapshot(s)
	if err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	return e, nil
}

func (s Snapshot) validate() error {
	if s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	if len(s.Discards) == 0 {
		return fmt.Errorf("snapshot has no discard pile")
	}
	if len(s.Players) > 0 && (s.Current < 0 || s.Current >= len(s.Players)) {
		return fmt.Errorf("current index %d out of range for %d players", s.Current, len(s.Players))
	}
	seen := make(map[string]bool, len(s.Players))
	for _, name := range s.Players {
		if seen[name] {
			return fmt.Errorf("duplicate player %q", name)
		}
		seen[name] = true
		if _, ok := s.Hands[name]; !ok {
			return fmt.Errorf("player %q has no hand", name)
		}
	}
	return nil
}
