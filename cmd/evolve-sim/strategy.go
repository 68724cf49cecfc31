package main

import (
	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/run"
)

// cycleLength is the number of CycleSlot calls that bring a slot back to
// its starting base.
const cycleLength = len(game.Bases)

// tune greedily lowers the predicted damage of the current round: every new
// slot takes its best base in order, then the single most useful historical
// mutation is applied when it beats the unmutated sequence.
func tune(m *run.Machine) error {
	st := m.Snapshot()
	n := len(st.Working)
	firstNew := n - st.NewSlots
	for i := firstNew; i < n; i++ {
		k, _, err := bestCycles(m, i)
		if err != nil {
			return err
		}
		if err := cycle(m, i, k); err != nil {
			return err
		}
	}

	base, err := predicted(m)
	if err != nil {
		return err
	}
	bestSlot, bestK, bestDamage := -1, 0, base
	for i := 0; i < firstNew; i++ {
		k, dmg, err := bestCycles(m, i)
		if err != nil {
			return err
		}
		if k > 0 && dmg < bestDamage {
			bestSlot, bestK, bestDamage = i, k, dmg
		}
	}
	if bestSlot < 0 {
		return nil
	}
	return cycle(m, bestSlot, bestK)
}

// bestCycles tries every base at slot i and returns the number of cycles
// giving the lowest predicted damage. The slot is left unchanged.
func bestCycles(m *run.Machine, i int) (int, int, error) {
	bestK, bestDamage := 0, 0
	for k := 0; k < cycleLength; k++ {
		dmg, err := predicted(m)
		if err != nil {
			return 0, 0, err
		}
		if k == 0 || dmg < bestDamage {
			bestK, bestDamage = k, dmg
		}
		if _, err := m.CycleSlot(i); err != nil {
			return 0, 0, err
		}
	}
	return bestK, bestDamage, nil
}

func cycle(m *run.Machine, i, times int) error {
	for j := 0; j < times; j++ {
		if _, err := m.CycleSlot(i); err != nil {
			return err
		}
	}
	return nil
}

func predicted(m *run.Machine) (int, error) {
	p, err := m.Prediction()
	if err != nil {
		return 0, err
	}
	return p.Damage, nil
}
