package run

import (
	"fmt"
	"strings"

	"github.com/ericogr/biogenesis/internal/engine"
	"github.com/ericogr/biogenesis/internal/game"
)

// --- Round context and helpers ----------------------------------------
type roundContext struct {
	env     game.Environment
	stats   game.OrganismStats
	summary []string
}

func newRoundContext(env game.Environment, stats game.OrganismStats) *roundContext {
	return &roundContext{env: env, stats: stats, summary: make([]string, 0, 8)}
}

func (rc *roundContext) add(format string, args ...interface{}) {
	rc.summary = append(rc.summary, fmt.Sprintf(format, args...))
}

// describeDamage records each non-zero threat and the variance roll.
func (rc *roundContext) describeDamage(base, resolved int) {
	d := engine.BreakDown(rc.stats, rc.env)
	if d.Heat > 0 {
		rc.add("Heat: temperature %.0f against heat resistance %d deals %.1f", rc.env.Temperature, rc.stats.HeatRes, d.Heat)
	}
	if d.Cold > 0 {
		rc.add("Cold: temperature %.0f against cold resistance %d deals %.1f", rc.env.Temperature, rc.stats.ColdRes, d.Cold)
	}
	if d.Toxin > 0 {
		rc.add("Toxin: toxicity %.0f against toxin resistance %d deals %.1f", rc.env.Toxicity, rc.stats.ToxinRes, d.Toxin)
	}
	if d.Physical > 0 {
		rc.add("Physical: radiation %.0f / scarcity %.0f against armor %d deals %.1f",
			rc.env.Radiation, rc.env.ResourceScarcity, rc.stats.PhysicalStr, d.Physical)
	}
	if base == 0 {
		rc.add("Fully adapted: no damage")
		return
	}
	rc.add("Predicted %d, variance resolved to %d", base, resolved)
}

func (rc *roundContext) describeOutcome(phase Phase, health, maxHealth, delta int) {
	switch phase {
	case PhaseDefeated:
		rc.add("Organism lost (score +%d)", delta)
	case PhaseVictorious:
		rc.add("Final environment survived with %d/%d health (score +%d)", health, maxHealth, delta)
	default:
		rc.add("Survived with %d/%d health (score +%d)", health, maxHealth, delta)
	}
}

// joinSummary returns the accumulated summary as a single string.
func (rc *roundContext) joinSummary() string {
	return strings.Join(rc.summary, "\n")
}
