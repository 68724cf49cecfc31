package engine

import (
	"strings"

	"github.com/ericogr/biogenesis/internal/game"
)

// Combo is a catalog entry: a literal base pattern granting a bonus on one or
// more stat axes for every non-overlapping occurrence.
type Combo struct {
	Key         string                `json:"key"`
	Name        string                `json:"name"`
	Pattern     string                `json:"pattern"`
	Description string                `json:"description"`
	Effect      map[game.StatAxis]int `json:"effect"`
}

// comboCatalog is closed and fixed. Order only matters for display.
var comboCatalog = []Combo{
	// Double bonds
	{Key: "thermal_core", Name: "Thermal Core", Pattern: "AA", Description: "Greatly raises heat resistance", Effect: map[game.StatAxis]int{game.AxisHeat: 25}},
	{Key: "cryo_lattice", Name: "Cryo Lattice", Pattern: "TT", Description: "Greatly raises cold resistance", Effect: map[game.StatAxis]int{game.AxisCold: 25}},
	{Key: "acid_barrier", Name: "Acid Barrier", Pattern: "CC", Description: "Greatly raises toxin resistance", Effect: map[game.StatAxis]int{game.AxisToxin: 25}},
	{Key: "titan_plating", Name: "Titan Plating", Pattern: "GG", Description: "Greatly raises physical defense", Effect: map[game.StatAxis]int{game.AxisPhysical: 25}},
	// Functional pairs
	{Key: "thermo_cycle", Name: "Thermoregulation Cycle", Pattern: "AT", Description: "Balances heat and cold resistance", Effect: map[game.StatAxis]int{game.AxisHeat: 15, game.AxisCold: 15}},
	{Key: "hardened_film", Name: "Hardened Film", Pattern: "CG", Description: "Balances toxin resistance and defense", Effect: map[game.StatAxis]int{game.AxisToxin: 15, game.AxisPhysical: 15}},
	// Triplets
	{Key: "solar_heart", Name: "Solar Heart", Pattern: "AAA", Description: "Extreme heat resistance", Effect: map[game.StatAxis]int{game.AxisHeat: 50}},
	{Key: "absolute_zero", Name: "Absolute Zero", Pattern: "TTT", Description: "Extreme cold resistance", Effect: map[game.StatAxis]int{game.AxisCold: 50}},
	{Key: "bio_reactor", Name: "Bio Reactor", Pattern: "GCG", Description: "Turns toxins into armor", Effect: map[game.StatAxis]int{game.AxisToxin: 30, game.AxisPhysical: 30}},
}

// Combos returns a copy of the combo catalog in display order.
func Combos() []Combo {
	out := make([]Combo, len(comboCatalog))
	for i, c := range comboCatalog {
		eff := make(map[game.StatAxis]int, len(c.Effect))
		for k, v := range c.Effect {
			eff[k] = v
		}
		c.Effect = eff
		out[i] = c
	}
	return out
}

// CountOccurrences counts non-overlapping, left-to-right occurrences of
// pattern in the sequence's symbol string. Scanning resumes right after each
// match, so "AAA" contains "AA" once and "AAAA" contains it twice.
func CountOccurrences(seq game.Sequence, pattern string) int {
	if pattern == "" {
		return 0
	}
	return strings.Count(seq.String(), pattern)
}

// ActiveCombos returns the catalog entries that occur at least once, in
// catalog order.
func ActiveCombos(seq game.Sequence) []Combo {
	s := seq.String()
	out := make([]Combo, 0, len(comboCatalog))
	for _, c := range comboCatalog {
		if strings.Contains(s, c.Pattern) {
			out = append(out, c)
		}
	}
	return out
}

// ComboMatch is an active combo together with its occurrence count.
type ComboMatch struct {
	Combo
	Count int `json:"count"`
}

// MatchCombos returns every active combo with its non-overlapping count.
func MatchCombos(seq game.Sequence) []ComboMatch {
	s := seq.String()
	out := make([]ComboMatch, 0, len(comboCatalog))
	for _, c := range comboCatalog {
		if n := strings.Count(s, c.Pattern); n > 0 {
			out = append(out, ComboMatch{Combo: c, Count: n})
		}
	}
	return out
}
