package game

import (
	"errors"
	"fmt"
	"slices"
)

const (
	handSize   = 7
	maxHistory = 5
)

var (
	// ErrCardNotHeld is returned when a player discards a card missing from
	// their hand.
	ErrCardNotHeld = errors.New("card not in hand")
	// ErrEmptyDeck is returned when a pickup is attempted with no cards left.
	ErrEmptyDeck = errors.New("deck is empty")
	// ErrEmptyDiscardPile is returned when undiscard would remove the seed
	// entry of the discard pile.
	ErrEmptyDiscardPile = errors.New("discard pile is empty")
	// ErrDeckExhausted is returned when the deck cannot cover a starting hand.
	ErrDeckExhausted = errors.New("not enough cards to deal a hand")
)

// DiscardEntry records who discarded which card. It serializes as a two
// element [name, card] array.
type DiscardEntry struct {
	Name string
	Card Card
}

// Engine is the authoritative state of one table: draw pile, hands, discard
// pile, turn order and a short event history. It is pure and performs no I/O;
// the room coordinator is responsible for serializing access to it.
type Engine struct {
	deck      []Card
	hands     map[string][]Card
	players   []string
	discards  []DiscardEntry
	history   []string
	current   int
	direction bool

	// running pickup compaction state; reset by any other action
	lastPickupName  string
	lastPickupCount int
}

// New builds a fresh engine: full shuffled deck, one seed discard, no players.
func New() *Engine {
	e := &Engine{
		deck:      newDeck(),
		hands:     make(map[string][]Card),
		history:   []string{"welcome"},
		direction: true,
	}
	e.discards = []DiscardEntry{{Name: "", Card: e.draw()}}
	return e
}

func (e *Engine) draw() Card {
	c := e.deck[len(e.deck)-1]
	e.deck = e.deck[:len(e.deck)-1]
	return c
}

// AddPlayer deals a starting hand to a new player. Re-adding an existing
// player is a no-op. When the deck cannot cover a full hand the player is not
// seated and the engine is left untouched.
func (e *Engine) AddPlayer(name string) error {
	if _, ok := e.hands[name]; ok {
		return nil
	}
	if len(e.deck) < handSize {
		return ErrDeckExhausted
	}

	hand := make([]Card, 0, handSize)
	for i := 0; i < handSize; i++ {
		hand = append(hand, e.draw())
	}
	slices.Sort(hand)

	e.players = append(e.players, name)
	e.hands[name] = hand
	e.addHistory(fmt.Sprintf("%s picked up %d", name, handSize))
	return nil
}

// SetCurrentPlayer points the turn marker at name if they are seated. The
// marker is advisory display state: it follows whoever acted last and gates
// nothing.
func (e *Engine) SetCurrentPlayer(name string) {
	if idx := slices.Index(e.players, name); idx >= 0 {
		e.current = idx
	}
}

// Discard moves a card from name's hand to the discard pile and applies the
// card's side effects: Reverse flips direction, Skip advances an extra step.
func (e *Engine) Discard(name string, card Card) error {
	idx := slices.Index(e.hands[name], card)
	if idx < 0 {
		return ErrCardNotHeld
	}

	e.hands[name] = slices.Delete(e.hands[name], idx, idx+1)
	e.discards = append(e.discards, DiscardEntry{Name: name, Card: card})
	if card.isReverse() {
		e.direction = !e.direction
	}
	e.Pass()
	if card.isSkip() {
		e.Pass()
	}
	e.addHistory(fmt.Sprintf("%s played a %s", name, card.Name()))
	return nil
}

// Pass advances the turn marker one step in the current direction.
func (e *Engine) Pass() {
	if len(e.players) == 0 {
		return
	}
	step := 1
	if !e.direction {
		step = -1
	}
	e.current = (len(e.players) + e.current + step) % len(e.players)
}

// Pickup draws the top card of the deck into name's hand and returns it.
// Consecutive pickups by the same player collapse into one running history
// entry.
func (e *Engine) Pickup(name string) (Card, error) {
	if len(e.deck) == 0 {
		return 0, ErrEmptyDeck
	}

	card := e.draw()
	e.hands[name] = append(e.hands[name], card)
	slices.Sort(e.hands[name])

	if e.lastPickupName == name && e.lastPickupCount > 0 {
		e.lastPickupCount++
		e.history[len(e.history)-1] = fmt.Sprintf("%s picked up %d", name, e.lastPickupCount)
	} else {
		e.addHistory(name + " picked up")
		e.lastPickupName = name
		e.lastPickupCount = 1
	}
	return card, nil
}

// Undiscard pops the newest discard into name's hand, whoever played it. The
// seed entry stays on the pile.
func (e *Engine) Undiscard(name string) (Card, error) {
	if len(e.discards) < 2 {
		return 0, ErrEmptyDiscardPile
	}

	entry := e.discards[len(e.discards)-1]
	e.discards = e.discards[:len(e.discards)-1]
	e.hands[name] = append(e.hands[name], entry.Card)
	slices.Sort(e.hands[name])
	e.addHistory(fmt.Sprintf("%s undid playing %s", name, entry.Card.Name()))
	return entry.Card, nil
}

// Hand returns a copy of name's current hand.
func (e *Engine) Hand(name string) []Card {
	return slices.Clone(e.hands[name])
}

// Players returns the seating order.
func (e *Engine) Players() []string {
	return slices.Clone(e.players)
}

func (e *Engine) addHistory(txt string) {
	e.lastPickupName = ""
	e.lastPickupCount = 0
	if len(e.history) >= maxHistory {
		e.history = e.history[len(e.history)-maxHistory+1:]
	}
	e.history = append(e.history, txt)
}
