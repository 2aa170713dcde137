/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

// Total computes the effective total of the visible cards.
//
// Number cards are summed first. A ZeroOutMax card then removes the largest
// positive number, if there is one. A DoubleTotal card finally doubles what
// is left. NightZero, Blank and Out cards contribute nothing.
func Total(cards []Card) int {
	var (
		total     int
		maxPos    int
		hasMaxPos bool
		zeroMax   bool
		double    bool
	)

	for _, c := range cards {
		switch c.Kind {
		case Number:
			total += c.Value
			if c.Value > 0 && (!hasMaxPos || c.Value > maxPos) {
				maxPos = c.Value
				hasMaxPos = true
			}
		case ZeroOutMax:
			zeroMax = true
		case DoubleTotal:
			double = true
		}
	}

	if zeroMax && hasMaxPos {
		total -= maxPos
	}

	if double {
		total *= 2
	}

	return total
}
