package game

import (
	"fmt"
	"math/rand"
)

// Card is a single code in [0,59]. The low two bits select the color, the
// range selects the rank: 0-39 numbered, 40-43 Skip, 44-47 Reverse,
// 48-51 Draw 2, 52-55 Wild, 56-59 Draw 4.
type Card int

var colorNames = [4]string{"Red", "Yellow", "Green", "Blue"}

// Name renders the display label for a card code. Codes outside the known
// ranges fall back to a raw label instead of panicking.
func (c Card) Name() string {
	color := colorNames[((c%4)+4)%4]
	switch {
	case c >= 0 && c <= 39:
		return fmt.Sprintf("%s %d", color, c/4)
	case c >= 40 && c <= 43:
		return color + " Skip"
	case c >= 44 && c <= 47:
		return color + " Reverse"
	case c >= 48 && c <= 51:
		return color + " Draw 2"
	case c >= 52 && c <= 55:
		return "Wild"
	case c >= 56 && c <= 59:
		return "Draw 4"
	default:
		return fmt.Sprintf("CARD-%d", c)
	}
}

func (c Card) isSkip() bool    { return c >= 40 && c <= 43 }
func (c Card) isReverse() bool { return c >= 44 && c <= 47 }

// newDeck builds the full shuffled draw pile: one zero per color, two of each
// numbered card 1-9 per color, three of each action card, four wilds and four
// draw-fours.
func newDeck() []Card {
	deck := make([]Card, 0, 120)
	for c := Card(0); c <= 3; c++ {
		deck = append(deck, c)
	}
	for c := Card(4); c <= 39; c++ {
		deck = append(deck, c, c)
	}
	for c := Card(40); c <= 51; c++ {
		deck = append(deck, c, c, c)
	}
	for i := 0; i < 4; i++ {
		deck = append(deck, 52, 56)
	}
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
