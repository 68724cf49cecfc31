package engine

import (
	"errors"
	"fmt"

	"github.com/ericogr/biogenesis/internal/game"
)

var (
	ErrMutationBudgetExceeded = errors.New("only one historical slot may be mutated per round")
	ErrSlotOutOfRange         = errors.New("slot index out of range")
)

// MutationsPerRound is the historical-slot budget for one round.
const MutationsPerRound = 1

// --- Mutation policy ---------------------------------------------------

func mustMatchLength(working, confirmed game.Sequence, newSlots int) {
	if len(working) != len(confirmed) {
		panic(fmt.Sprintf("engine: working length %d != confirmed length %d", len(working), len(confirmed)))
	}
	if newSlots < 0 || newSlots > len(working) {
		panic(fmt.Sprintf("engine: new slot count %d outside [0,%d]", newSlots, len(working)))
	}
}

// IsNewSlot reports whether index falls inside the trailing new-slot region.
func IsNewSlot(index, length, newSlots int) bool {
	return index >= length-newSlots
}

// HistoricalMutations returns the historical indices whose base differs from
// the confirmed sequence.
func HistoricalMutations(working, confirmed game.Sequence, newSlots int) []int {
	mustMatchLength(working, confirmed, newSlots)
	var out []int
	for i := 0; i < len(working)-newSlots; i++ {
		if working[i] != confirmed[i] {
			out = append(out, i)
		}
	}
	return out
}

// IsSlotEditable applies the one-mutation-per-round rule. New slots are
// always editable. A historical slot is editable when it is already the
// round's mutation or when the budget is still unspent.
func IsSlotEditable(index int, working, confirmed game.Sequence, newSlots int) bool {
	mustMatchLength(working, confirmed, newSlots)
	if index < 0 || index >= len(working) {
		return false
	}
	if IsNewSlot(index, len(working), newSlots) {
		return true
	}
	if working[index] != confirmed[index] {
		return true
	}
	return len(HistoricalMutations(working, confirmed, newSlots)) < MutationsPerRound
}

// AttemptEdit advances the base at index to the next symbol in the cycle and
// returns the updated working sequence. The input is never modified; on
// rejection the error is ErrMutationBudgetExceeded or ErrSlotOutOfRange.
func AttemptEdit(index int, working, confirmed game.Sequence, newSlots int) (game.Sequence, error) {
	mustMatchLength(working, confirmed, newSlots)
	if index < 0 || index >= len(working) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrSlotOutOfRange, index, len(working))
	}
	if !IsSlotEditable(index, working, confirmed, newSlots) {
		return nil, ErrMutationBudgetExceeded
	}
	out := working.Clone()
	out[index] = out[index].Next()
	return out, nil
}
