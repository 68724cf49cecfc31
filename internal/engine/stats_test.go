package engine

import (
	"testing"

	"github.com/ericogr/biogenesis/internal/game"
)

func TestComputeStats_Empty(t *testing.T) {
	if got := ComputeStats(nil); got != (game.OrganismStats{}) {
		t.Fatalf("expected zero stats, got %+v", got)
	}
}

func TestComputeStats_BalancedTemplate(t *testing.T) {
	got := ComputeStats(seq(t, "ATCG"))
	// 12 per base, +15/+15 from AT and +15/+15 from CG
	want := game.OrganismStats{HeatRes: 27, ColdRes: 27, ToxinRes: 27, PhysicalStr: 27}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestComputeStats_DoubletAndTripletStack(t *testing.T) {
	// AAAG + two default A bases. "AA" occurs twice and "AAA" once in
	// "AAAGAA"; both bonuses apply independently.
	got := ComputeStats(seq(t, "AAAGAA"))
	want := game.OrganismStats{HeatRes: 5*12 + 2*25 + 50, PhysicalStr: 12}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestComputeStats_NeverBelowBase(t *testing.T) {
	for _, s := range []string{"A", "ATCG", "GCGCG", "TTTTTT", "AATTCCGG", "GGGAAACCCTTT"} {
		sq := seq(t, s)
		full, base := ComputeStats(sq), BaseStats(sq)
		for _, axis := range []game.StatAxis{game.AxisHeat, game.AxisCold, game.AxisToxin, game.AxisPhysical} {
			if full.Get(axis) < base.Get(axis) {
				t.Fatalf("%s: %s = %d below base %d", s, axis, full.Get(axis), base.Get(axis))
			}
		}
	}
}

func TestComputeStats_Deterministic(t *testing.T) {
	sq := seq(t, "GCGATTAAC")
	first := ComputeStats(sq)
	for i := 0; i < 10; i++ {
		if got := ComputeStats(sq); got != first {
			t.Fatalf("run %d: got %+v, want %+v", i, got, first)
		}
	}
}
