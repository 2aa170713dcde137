/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

// nextAlive walks forward from i (exclusive), wrapping, until it finds a
// living player. Callers guarantee at least one player is alive.
func nextAlive(players []*Player, i int) int {
	n := len(players)
	for {
		i = (i + 1) % n
		if players[i].Alive() {
			return i
		}
	}
}

// prevAlive is nextAlive in the other direction.
func prevAlive(players []*Player, i int) int {
	n := len(players)
	for {
		i = (i - 1 + n) % n
		if players[i].Alive() {
			return i
		}
	}
}

// firstAliveFrom returns i itself if that player is alive, otherwise the
// next living player after it.
func firstAliveFrom(players []*Player, i int) int {
	n := len(players)
	i = ((i % n) + n) % n
	if players[i].Alive() {
		return i
	}

	return nextAlive(players, i)
}

func aliveCount(players []*Player) int {
	count := 0
	for _, p := range players {
		if p.Alive() {
			count++
		}
	}

	return count
}
