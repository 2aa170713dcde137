package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource returns the queued picks in order, then zeros.
type scriptedSource []int

func (s *scriptedSource) IntN(n int) int {
	if len(*s) == 0 {
		return 0
	}

	v := (*s)[0]
	*s = (*s)[1:]

	return v % n
}

// lastSource always picks the final remaining card.
type lastSource struct{}

func (lastSource) IntN(n int) int {
	return n - 1
}

func countCards(cards []Card) map[Card]int {
	counts := make(map[Card]int)
	for _, c := range cards {
		counts[c]++
	}

	return counts
}

func TestCanonicalCards(t *testing.T) {
	cards := CanonicalCards()
	require.Len(t, cards, DeckSize)

	counts := countCards(cards)

	expected := map[Card]int{
		NumberCard(20): 1,
		NumberCard(15): 2,
		NumberCard(10): 3,
		NumberCard(5):  4,
		NumberCard(4):  4,
		NumberCard(3):  4,
		NumberCard(2):  4,
		NumberCard(1):  4,
		NumberCard(0):  4,
		NumberCard(-5): 2,
		Double:         1,
		MaxZero:        1,
		Night:          1,
	}

	assert.Equal(t, expected, counts)
}

func TestDeckDrawWithoutReplacement(t *testing.T) {
	deck := NewDeck()
	before := countCards(deck.Cards())

	var drawn []Card
	for range 10 {
		card, ok := deck.Draw(DefaultSource)
		require.True(t, ok)
		drawn = append(drawn, card)
	}

	assert.Equal(t, DeckSize-10, deck.Len())

	after := countCards(append(deck.Cards(), drawn...))
	assert.Equal(t, before, after)
}

func TestDeckDrawSwapsLastIntoHole(t *testing.T) {
	deck := NewDeck()
	src := scriptedSource{0, 0}

	first, ok := deck.Draw(&src)
	require.True(t, ok)
	assert.Equal(t, NumberCard(20), first)

	// The NIGHT card was last and now sits where the 20 used to be.
	second, ok := deck.Draw(&src)
	require.True(t, ok)
	assert.Equal(t, Night, second)
}

func TestDeckDrawEmpty(t *testing.T) {
	deck := &Deck{}

	_, ok := deck.Draw(DefaultSource)
	assert.False(t, ok)
}

func TestDeckDrainsCompletely(t *testing.T) {
	deck := NewDeck()

	var drawn []Card
	for {
		card, ok := deck.Draw(DefaultSource)
		if !ok {
			break
		}
		drawn = append(drawn, card)
	}

	assert.Equal(t, countCards(CanonicalCards()), countCards(drawn))
}

func TestCardJSON(t *testing.T) {
	data, err := json.Marshal([]Card{NumberCard(-5), Double, MaxZero, Night, Eliminated, Placeholder})
	require.NoError(t, err)
	assert.JSONEq(t, `[-5,"x2","MAX->0","NIGHT","OUT",""]`, string(data))

	var cards []Card
	require.NoError(t, json.Unmarshal(data, &cards))
	assert.Equal(t, []Card{NumberCard(-5), Double, MaxZero, Night, Eliminated, Placeholder}, cards)

	var bad Card
	assert.Error(t, json.Unmarshal([]byte(`"joker"`), &bad))
}
