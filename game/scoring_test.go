package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotal(t *testing.T) {
	tests := []struct {
		name     string
		cards    []Card
		expected int
	}{
		{
			name:     "plain numbers",
			cards:    []Card{NumberCard(10), NumberCard(5), NumberCard(-5)},
			expected: 10,
		},
		{
			name:     "max zeroed",
			cards:    []Card{NumberCard(10), NumberCard(5), MaxZero},
			expected: 5,
		},
		{
			name:     "doubled",
			cards:    []Card{NumberCard(10), NumberCard(5), Double},
			expected: 30,
		},
		{
			name:     "zeroed before doubling",
			cards:    []Card{NumberCard(10), MaxZero, Double},
			expected: 0,
		},
		{
			name:     "night counts as zero",
			cards:    []Card{Night, NumberCard(5)},
			expected: 5,
		},
		{
			name:     "max zero without positives",
			cards:    []Card{NumberCard(-5), NumberCard(0), MaxZero},
			expected: -5,
		},
		{
			name:     "max zero removes only one copy",
			cards:    []Card{NumberCard(15), NumberCard(15), MaxZero},
			expected: 15,
		},
		{
			name:     "negative total doubled",
			cards:    []Card{NumberCard(-5), NumberCard(-5), Double},
			expected: -20,
		},
		{
			name:     "only specials",
			cards:    []Card{Double, MaxZero, Night},
			expected: 0,
		},
		{
			name:     "markers ignored",
			cards:    []Card{Placeholder, Eliminated, NumberCard(3)},
			expected: 3,
		},
		{
			name:     "no cards",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Total(tt.cards))
		})
	}
}
