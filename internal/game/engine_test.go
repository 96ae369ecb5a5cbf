package game

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

// fromState builds an engine in a known position without going through the
// shuffled constructor.
func fromState(t *testing.T, s Snapshot) *Engine {
	t.Helper()
	s.Version = SnapshotVersion
	if s.Hands == nil {
		s.Hands = map[string][]Card{}
	}
	if s.Discards == nil {
		s.Discards = []DiscardEntry{{Name: "", Card: 12}}
	}
	if s.History == nil {
		s.History = []string{"welcome"}
	}
	e, err := FromSnapshot(s)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}
	return e
}

// cardMultiset collects every card across deck, hands and discards.
func cardMultiset(e *Engine) map[Card]int {
	counts := make(map[Card]int)
	s := e.Snapshot()
	for _, c := range s.Deck {
		counts[c]++
	}
	for _, hand := range s.Hands {
		for _, c := range hand {
			counts[c]++
		}
	}
	for _, d := range s.Discards {
		counts[d.Card]++
	}
	return counts
}

func TestFreshEngine(t *testing.T) {
	e := New()
	s := e.Snapshot()

	if len(s.Deck) != 119 {
		t.Errorf("fresh deck size = %d; want 119 (120 minus seed discard)", len(s.Deck))
	}
	if len(s.Discards) != 1 {
		t.Errorf("fresh discard pile size = %d; want 1", len(s.Discards))
	}
	if s.Discards[0].Name != "" {
		t.Errorf("seed discard name = %q; want empty", s.Discards[0].Name)
	}
	if !slices.Equal(s.History, []string{"welcome"}) {
		t.Errorf("fresh history = %v; want [welcome]", s.History)
	}
	if !s.Direction {
		t.Error("fresh direction should be forward")
	}
}

func TestAddPlayerDealsSortedHand(t *testing.T) {
	e := New()
	if err := e.AddPlayer("Ann"); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	hand := e.Hand("Ann")
	if len(hand) != 7 {
		t.Fatalf("hand size = %d; want 7", len(hand))
	}
	if !slices.IsSorted(hand) {
		t.Errorf("hand not sorted: %v", hand)
	}
	if got := e.Players(); !slices.Equal(got, []string{"Ann"}) {
		t.Errorf("players = %v; want [Ann]", got)
	}
}

func TestAddPlayerIdempotent(t *testing.T) {
	e := New()
	if err := e.AddPlayer("Ann"); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	before := e.Snapshot()

	if err := e.AddPlayer("Ann"); err != nil {
		t.Fatalf("second AddPlayer: %v", err)
	}
	after := e.Snapshot()

	if !slices.Equal(before.Players, after.Players) {
		t.Errorf("players changed: %v -> %v", before.Players, after.Players)
	}
	if !slices.Equal(before.Hands["Ann"], after.Hands["Ann"]) {
		t.Errorf("hand changed: %v -> %v", before.Hands["Ann"], after.Hands["Ann"])
	}
	if !slices.Equal(before.History, after.History) {
		t.Errorf("history changed: %v -> %v", before.History, after.History)
	}
}

func TestAddPlayerDeckExhausted(t *testing.T) {
	e := fromState(t, Snapshot{
		Deck:    []Card{4, 5, 6},
		Players: []string{},
	})
	before := e.Snapshot()

	if err := e.AddPlayer("Ann"); !errors.Is(err, ErrDeckExhausted) {
		t.Fatalf("AddPlayer = %v; want ErrDeckExhausted", err)
	}

	after := e.Snapshot()
	if len(after.Players) != 0 || len(after.Hands) != 0 {
		t.Errorf("state mutated on failed seat: %+v", after)
	}
	if !slices.Equal(before.Deck, after.Deck) {
		t.Errorf("deck mutated on failed seat")
	}
}

func TestConservation(t *testing.T) {
	e := New()
	initial := cardMultiset(e)

	for _, name := range []string{"Ann", "Bo", "Cy"} {
		if err := e.AddPlayer(name); err != nil {
			t.Fatalf("AddPlayer(%s): %v", name, err)
		}
	}
	if _, err := e.Pickup("Ann"); err != nil {
		t.Fatalf("Pickup: %v", err)
	}
	if err := e.Discard("Bo", e.Hand("Bo")[0]); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := e.Undiscard("Cy"); err != nil {
		t.Fatalf("Undiscard: %v", err)
	}
	e.Pass()

	after := cardMultiset(e)
	for c, n := range initial {
		if after[c] != n {
			t.Errorf("card %d count %d -> %d", c, n, after[c])
		}
	}
	if len(after) != len(initial) {
		t.Errorf("card multiset size changed: %d -> %d", len(initial), len(after))
	}
}

func TestJoinScenario(t *testing.T) {
	e := New()
	for _, name := range []string{"Ann", "Bo"} {
		if err := e.AddPlayer(name); err != nil {
			t.Fatalf("AddPlayer(%s): %v", name, err)
		}
	}

	s := e.Snapshot()
	wantHistory := []string{"welcome", "Ann picked up 7", "Bo picked up 7"}
	if !slices.Equal(s.History, wantHistory) {
		t.Errorf("history = %v; want %v", s.History, wantHistory)
	}
	if s.Current != 0 {
		t.Errorf("current = %d; want 0", s.Current)
	}
	if !slices.Equal(s.Players, []string{"Ann", "Bo"}) {
		t.Errorf("players = %v; want [Ann Bo]", s.Players)
	}
}

func TestDiscardPlain(t *testing.T) {
	e := fromState(t, Snapshot{
		Deck:      []Card{20, 21, 22},
		Hands:     map[string][]Card{"Ann": {0, 8}, "Bo": {9}, "Cy": {10}},
		Players:   []string{"Ann", "Bo", "Cy"},
		Direction: true,
	})

	if err := e.Discard("Ann", 8); err != nil {
		t.Fatalf("Discard: %v", err)
	}

	s := e.Snapshot()
	if s.Current != 1 {
		t.Errorf("current = %d; want 1 (one step forward)", s.Current)
	}
	if !s.Direction {
		t.Error("direction flipped by a plain card")
	}
	if !slices.Equal(s.Hands["Ann"], []Card{0}) {
		t.Errorf("Ann's hand = %v; want [0]", s.Hands["Ann"])
	}
	top := s.Discards[len(s.Discards)-1]
	if top.Name != "Ann" || top.Card != 8 {
		t.Errorf("top discard = %+v; want {Ann 8}", top)
	}
	if want := "Ann played a Red 2"; s.History[len(s.History)-1] != want {
		t.Errorf("history tail = %q; want %q", s.History[len(s.History)-1], want)
	}
}

func TestDiscardReverseFlipsDirection(t *testing.T) {
	e := fromState(t, Snapshot{
		Deck:      []Card{20},
		Hands:     map[string][]Card{"Ann": {44}, "Bo": {9}},
		Players:   []string{"Ann", "Bo"},
		Direction: true,
	})

	if err := e.Discard("Ann", 44); err != nil {
		t.Fatalf("Discard: %v", err)
	}

	s := e.Snapshot()
	if s.Direction {
		t.Error("direction not flipped by Reverse")
	}
	// Two-player table: one step backward lands on the same seat one step
	// forward would.
	if s.Current != 1 {
		t.Errorf("current = %d; want 1", s.Current)
	}
	if want := "Ann played a Red Reverse"; s.History[len(s.History)-1] != want {
		t.Errorf("history tail = %q; want %q", s.History[len(s.History)-1], want)
	}
}

func TestDiscardSkipAdvancesTwice(t *testing.T) {
	e := fromState(t, Snapshot{
		Deck:      []Card{20},
		Hands:     map[string][]Card{"Ann": {40}, "Bo": {9}, "Cy": {10}},
		Players:   []string{"Ann", "Bo", "Cy"},
		Direction: true,
	})

	if err := e.Discard("Ann", 40); err != nil {
		t.Fatalf("Discard: %v", err)
	}

	if s := e.Snapshot(); s.Current != 2 {
		t.Errorf("current = %d; want 2 (skip advances two steps)", s.Current)
	}
}

func TestDiscardCardNotHeld(t *testing.T) {
	e := fromState(t, Snapshot{
		Deck:    []Card{20},
		Hands:   map[string][]Card{"Ann": {0, 8}},
		Players: []string{"Ann"},
	})
	before := e.Snapshot()

	if err := e.Discard("Ann", 44); !errors.Is(err, ErrCardNotHeld) {
		t.Fatalf("Discard = %v; want ErrCardNotHeld", err)
	}

	after := e.Snapshot()
	if !slices.Equal(before.Hands["Ann"], after.Hands["Ann"]) {
		t.Error("hand mutated by rejected discard")
	}
	if len(before.Discards) != len(after.Discards) {
		t.Error("discard pile mutated by rejected discard")
	}
	if before.Current != after.Current {
		t.Error("turn advanced by rejected discard")
	}
}

func TestPassWrapsInBothDirections(t *testing.T) {
	e := fromState(t, Snapshot{
		Deck:      []Card{20},
		Hands:     map[string][]Card{"Ann": {0}, "Bo": {4}, "Cy": {8}},
		Players:   []string{"Ann", "Bo", "Cy"},
		Current:   2,
		Direction: true,
	})

	e.Pass()
	if s := e.Snapshot(); s.Current != 0 {
		t.Errorf("forward wrap: current = %d; want 0", s.Current)
	}

	e = fromState(t, Snapshot{
		Deck:      []Card{20},
		Hands:     map[string][]Card{"Ann": {0}, "Bo": {4}, "Cy": {8}},
		Players:   []string{"Ann", "Bo", "Cy"},
		Current:   0,
		Direction: false,
	})

	e.Pass()
	if s := e.Snapshot(); s.Current != 2 {
		t.Errorf("backward wrap: current = %d; want 2", s.Current)
	}
}

func TestPassNoPlayers(t *testing.T) {
	e := New()
	e.Pass() // must not panic
}

func TestPickupCompaction(t *testing.T) {
	e := fromState(t, Snapshot{
		Deck:    []Card{20, 21, 22, 23},
		Hands:   map[string][]Card{"Ann": {}, "Bo": {}},
		Players: []string{"Ann", "Bo"},
		History: []string{"welcome"},
	})

	if _, err := e.Pickup("Ann"); err != nil {
		t.Fatalf("first Pickup: %v", err)
	}
	if _, err := e.Pickup("Ann"); err != nil {
		t.Fatalf("second Pickup: %v", err)
	}

	s := e.Snapshot()
	want := []string{"welcome", "Ann picked up 2"}
	if !slices.Equal(s.History, want) {
		t.Errorf("history = %v; want %v", s.History, want)
	}

	// A pickup by someone else breaks the run.
	if _, err := e.Pickup("Bo"); err != nil {
		t.Fatalf("Bo Pickup: %v", err)
	}
	if _, err := e.Pickup("Ann"); err != nil {
		t.Fatalf("Ann Pickup after Bo: %v", err)
	}

	s = e.Snapshot()
	want = []string{"welcome", "Ann picked up 2", "Bo picked up", "Ann picked up"}
	if !slices.Equal(s.History, want) {
		t.Errorf("history = %v; want %v", s.History, want)
	}
}

func TestPickupReturnsTopCard(t *testing.T) {
	e := fromState(t, Snapshot{
		Deck:    []Card{20, 21, 37},
		Hands:   map[string][]Card{"Ann": {4}},
		Players: []string{"Ann"},
	})

	card, err := e.Pickup("Ann")
	if err != nil {
		t.Fatalf("Pickup: %v", err)
	}
	if card != 37 {
		t.Errorf("picked up %d; want 37 (top of deck)", card)
	}
	if hand := e.Hand("Ann"); !slices.Equal(hand, []Card{4, 37}) {
		t.Errorf("hand = %v; want [4 37]", hand)
	}
}

func TestPickupEmptyDeck(t *testing.T) {
	e := fromState(t, Snapshot{
		Deck:    []Card{},
		Hands:   map[string][]Card{"Ann": {4}},
		Players: []string{"Ann"},
	})
	before := e.Snapshot()

	if _, err := e.Pickup("Ann"); !errors.Is(err, ErrEmptyDeck) {
		t.Fatalf("Pickup = %v; want ErrEmptyDeck", err)
	}

	after := e.Snapshot()
	if !slices.Equal(before.Hands["Ann"], after.Hands["Ann"]) {
		t.Error("hand mutated by failed pickup")
	}
	if !slices.Equal(before.History, after.History) {
		t.Error("history mutated by failed pickup")
	}
}

func TestUndiscard(t *testing.T) {
	e := fromState(t, Snapshot{
		Deck:     []Card{20},
		Hands:    map[string][]Card{"Ann": {4}, "Bo": {8}},
		Players:  []string{"Ann", "Bo"},
		Discards: []DiscardEntry{{Name: "", Card: 12}, {Name: "Bo", Card: 44}},
	})

	// Ann takes back Bo's discard; the spec allows any player to undo.
	card, err := e.Undiscard("Ann")
	if err != nil {
		t.Fatalf("Undiscard: %v", err)
	}
	if card != 44 {
		t.Errorf("undiscarded %d; want 44", card)
	}

	s := e.Snapshot()
	if !slices.Equal(s.Hands["Ann"], []Card{4, 44}) {
		t.Errorf("Ann's hand = %v; want [4 44]", s.Hands["Ann"])
	}
	if len(s.Discards) != 1 {
		t.Errorf("discard pile size = %d; want 1", len(s.Discards))
	}
	if want := "Ann undid playing Red Reverse"; s.History[len(s.History)-1] != want {
		t.Errorf("history tail = %q; want %q", s.History[len(s.History)-1], want)
	}
}

func TestUndiscardSeedIrremovable(t *testing.T) {
	e := fromState(t, Snapshot{
		Deck:     []Card{20},
		Hands:    map[string][]Card{"Ann": {4}},
		Players:  []string{"Ann"},
		Discards: []DiscardEntry{{Name: "", Card: 12}},
	})

	if _, err := e.Undiscard("Ann"); !errors.Is(err, ErrEmptyDiscardPile) {
		t.Fatalf("Undiscard = %v; want ErrEmptyDiscardPile", err)
	}
	if s := e.Snapshot(); len(s.Discards) != 1 {
		t.Errorf("seed discard removed; pile size = %d", len(s.Discards))
	}
}

func TestHistoryBounded(t *testing.T) {
	e := fromState(t, Snapshot{
		Deck:    []Card{4, 5, 6, 7, 8, 9, 10, 11, 12, 13},
		Hands:   map[string][]Card{"Ann": {}, "Bo": {}},
		Players: []string{"Ann", "Bo"},
	})

	// Alternate pickups so no compaction kicks in.
	names := []string{"Ann", "Bo", "Ann", "Bo", "Ann", "Bo", "Ann", "Bo"}
	for i, name := range names {
		if _, err := e.Pickup(name); err != nil {
			t.Fatalf("Pickup %d: %v", i, err)
		}
	}

	s := e.Snapshot()
	if len(s.History) != 5 {
		t.Fatalf("history size = %d; want 5", len(s.History))
	}
}

func TestSetCurrentPlayer(t *testing.T) {
	e := fromState(t, Snapshot{
		Deck:    []Card{20},
		Hands:   map[string][]Card{"Ann": {0}, "Bo": {4}},
		Players: []string{"Ann", "Bo"},
	})

	e.SetCurrentPlayer("Bo")
	if s := e.Snapshot(); s.Current != 1 {
		t.Errorf("current = %d; want 1", s.Current)
	}

	e.SetCurrentPlayer("stranger")
	if s := e.Snapshot(); s.Current != 1 {
		t.Errorf("unknown name moved current to %d", s.Current)
	}
}

func TestSharedViewRedaction(t *testing.T) {
	var discards []DiscardEntry
	discards = append(discards, DiscardEntry{Name: "", Card: 12})
	for i := 0; i < 7; i++ {
		discards = append(discards, DiscardEntry{Name: "Ann", Card: Card(4 + i)})
	}

	e := fromState(t, Snapshot{
		Deck:     []Card{20},
		Hands:    map[string][]Card{"Ann": {0, 4, 8}, "Bo": {9}},
		Players:  []string{"Ann", "Bo"},
		Discards: discards,
		Current:  1,
	})

	v := e.SharedView()
	if len(v.Discards) != 5 {
		t.Errorf("view discards = %d; want 5", len(v.Discards))
	}
	if v.Current != "Bo" {
		t.Errorf("view current = %q; want Bo", v.Current)
	}
	want := []Seat{{Name: "Ann", Cards: 3}, {Name: "Bo", Cards: 1}}
	if fmt.Sprint(v.Players) != fmt.Sprint(want) {
		t.Errorf("view players = %v; want %v", v.Players, want)
	}
}
