package engine

import "github.com/ericogr/biogenesis/internal/game"

// BaseIncrement is the stat gain each base contributes to its own axis.
const BaseIncrement = 12

// ComputeStats derives organism stats from a sequence: a linear per-base
// contribution followed by combo bonuses. Stats are unbounded.
func ComputeStats(seq game.Sequence) game.OrganismStats {
	stats := BaseStats(seq)
	for _, m := range MatchCombos(seq) {
		for axis, amount := range m.Effect {
			stats.Add(axis, amount*m.Count)
		}
	}
	return stats
}

// BaseStats is ComputeStats without combo bonuses.
func BaseStats(seq game.Sequence) game.OrganismStats {
	var stats game.OrganismStats
	for _, b := range seq {
		stats.Add(b.Axis(), BaseIncrement)
	}
	return stats
}
