/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind distinguishes numbered cards from the special ones.
type Kind int

const (
	Number Kind = iota
	DoubleTotal
	ZeroOutMax
	NightZero

	// Blank and Out never appear in a deck. Blank is held by players who
	// have not been dealt yet, Out by eliminated players.
	Blank
	Out

	// Hidden stands in for a card its viewer is not allowed to see.
	Hidden
)

// Card is a single card in hand or in the deck. Value is only meaningful
// for Number cards.
type Card struct {
	Kind  Kind
	Value int
}

func NumberCard(n int) Card {
	return Card{Kind: Number, Value: n}
}

var (
	Double  = Card{Kind: DoubleTotal}
	MaxZero = Card{Kind: ZeroOutMax}
	Night   = Card{Kind: NightZero}

	Placeholder = Card{Kind: Blank}
	Eliminated  = Card{Kind: Out}
	Concealed   = Card{Kind: Hidden}
)

func (c Card) String() string {
	switch c.Kind {
	case Number:
		return strconv.Itoa(c.Value)
	case DoubleTotal:
		return "x2"
	case ZeroOutMax:
		return "MAX->0"
	case NightZero:
		return "NIGHT"
	case Out:
		return "OUT"
	case Hidden:
		return "?"
	default:
		return ""
	}
}

// MarshalJSON encodes Number cards as bare numbers and everything else as
// its label, which is what clients render.
func (c Card) MarshalJSON() ([]byte, error) {
	if c.Kind == Number {
		return []byte(strconv.Itoa(c.Value)), nil
	}

	return json.Marshal(c.String())
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = NumberCard(n)

		return nil
	}

	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}

	switch label {
	case "x2":
		*c = Double
	case "MAX->0":
		*c = MaxZero
	case "NIGHT":
		*c = Night
	case "OUT":
		*c = Eliminated
	case "?":
		*c = Concealed
	case "":
		*c = Placeholder
	default:
		return fmt.Errorf("unknown card %q", label)
	}

	return nil
}
