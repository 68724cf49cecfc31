package engine

import (
	"testing"

	"github.com/ericogr/biogenesis/internal/game"
)

func TestPredictDamage_HeatUnresisted(t *testing.T) {
	env := game.Environment{Temperature: 100}
	if got := PredictDamage(game.OrganismStats{}, env); got != 120 {
		t.Fatalf("got %d, want 120", got)
	}
}

func TestPredictDamage_HeatFullyResisted(t *testing.T) {
	env := game.Environment{Temperature: 100}
	if got := PredictDamage(game.OrganismStats{HeatRes: 100}, env); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestPredictDamage_ColdAtThreshold(t *testing.T) {
	// 50 is not hot: cold threat is 100-50.
	d := BreakDown(game.OrganismStats{HeatRes: 0, ColdRes: 20}, game.Environment{Temperature: 50})
	if d.Heat != 0 {
		t.Fatalf("heat applied at threshold: %v", d.Heat)
	}
	if got := d.Total(); got != 36 {
		t.Fatalf("got %d, want 36", got)
	}
}

func TestPredictDamage_PhysicalUsesMaxThreat(t *testing.T) {
	env := game.Environment{Temperature: 60, Radiation: 40, ResourceScarcity: 70}
	stats := game.OrganismStats{HeatRes: 100, PhysicalStr: 20}
	// only physical: max(40,70)-20
	if got := PredictDamage(stats, env); got != 50 {
		t.Fatalf("got %d, want 50", got)
	}
}

func TestPredictDamage_AllThreats(t *testing.T) {
	env := game.Environment{Temperature: 20, Toxicity: 45, Radiation: 30, ResourceScarcity: 10}
	stats := game.OrganismStats{ColdRes: 40, ToxinRes: 12, PhysicalStr: 12}
	// cold (80-40)*1.2=48, toxin 33, physical 18 -> 99
	if got := PredictDamage(stats, env); got != 99 {
		t.Fatalf("got %d, want 99", got)
	}
}

func TestPredictDamage_CryoTemplateInInferno(t *testing.T) {
	stats := ComputeStats(seq(t, "TTGTAA"))
	// heat 24+25=49; (100-49)*1.2=61.2 rounds up to 62
	if got := PredictDamage(stats, game.Environment{Temperature: 100}); got != 62 {
		t.Fatalf("got %d, want 62", got)
	}
}

func TestPredictDamage_Reproducible(t *testing.T) {
	stats := game.OrganismStats{HeatRes: 13, ColdRes: 7, ToxinRes: 3, PhysicalStr: 1}
	env := game.Environment{Temperature: 77.7, Toxicity: 33.3, Radiation: 12.5, ResourceScarcity: 90.1}
	first := PredictDamage(stats, env)
	for i := 0; i < 5; i++ {
		if got := PredictDamage(stats, env); got != first {
			t.Fatalf("got %d, want %d", got, first)
		}
	}
}

func TestResolveDamage(t *testing.T) {
	cases := []struct {
		base     int
		variance float64
		want     int
	}{
		{100, 0, 100},
		{100, 0.1, 110},
		{100, -0.1, 90},
		{7, -0.1, 6},
		{0, 0.1, 0},
		{10, 0.5, 11}, // clamped to +10%
		{10, -0.9, 9}, // clamped to -10%
	}
	for _, c := range cases {
		if got := ResolveDamage(c.base, c.variance); got != c.want {
			t.Fatalf("ResolveDamage(%d, %v) = %d, want %d", c.base, c.variance, got, c.want)
		}
	}
}

func TestPredictRange(t *testing.T) {
	if lo, hi := PredictRange(0); lo != 0 || hi != 0 {
		t.Fatalf("PredictRange(0) = %d,%d", lo, hi)
	}
	for _, base := range []int{1, 9, 37, 100, 250} {
		lo, hi := PredictRange(base)
		if lo > base || hi < base {
			t.Fatalf("PredictRange(%d) = [%d,%d] does not contain base", base, lo, hi)
		}
		if lo < ResolveDamage(base, -MaxVariance)-1 || hi > base+base/10+1 {
			t.Fatalf("PredictRange(%d) = [%d,%d] wider than the variance band", base, lo, hi)
		}
	}
}
