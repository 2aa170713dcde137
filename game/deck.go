/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"math/rand/v2"
)

// DeckSize is the number of cards in a freshly built deck.
const DeckSize = 35

// Source picks a uniformly random integer in [0, n). *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultSource is backed by the math/rand/v2 top-level generator, which is
// safe for concurrent use.
var DefaultSource Source = globalSource{}

// CanonicalCards returns the fixed composition every deck starts from.
func CanonicalCards() []Card {
	counts := []struct {
		value int
		n     int
	}{
		{20, 1},
		{15, 2},
		{10, 3},
		{5, 4},
		{4, 4},
		{3, 4},
		{2, 4},
		{1, 4},
		{0, 4},
		{-5, 2},
	}

	cards := make([]Card, 0, DeckSize)
	for _, c := range counts {
		for range c.n {
			cards = append(cards, NumberCard(c.value))
		}
	}

	return append(cards, Double, MaxZero, Night)
}

// Deck is the pile cards are drawn from without replacement.
type Deck struct {
	cards []Card
}

func NewDeck() *Deck {
	return &Deck{cards: CanonicalCards()}
}

func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards, in no meaningful order.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)

	return out
}

// Draw removes and returns a card picked uniformly from the remaining ones.
// The picked slot is swapped with the last card before truncating.
func (d *Deck) Draw(src Source) (Card, bool) {
	n := len(d.cards)
	if n == 0 {
		return Card{}, false
	}

	i := src.IntN(n)
	card := d.cards[i]

	d.cards[i] = d.cards[n-1]
	d.cards = d.cards[:n-1]

	return card, true
}
