package service

import (
	"time"

	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/run"
)

func newRunRecord(runID string, attempt int, st run.State, finishedAt time.Time) *game.RunRecord {
	outcome := game.OutcomeDefeated
	if st.Phase == run.PhaseVictorious {
		outcome = game.OutcomeVictorious
	}
	return &game.RunRecord{
		RunID:         runID,
		Attempt:       attempt,
		SpeciesKey:    st.SpeciesKey,
		SpeciesName:   st.SpeciesName,
		Outcome:       outcome,
		Score:         st.Score,
		Rounds:        st.Round,
		MaxHealth:     st.MaxHealth,
		FinalSequence: st.Working.String(),
		FinishedAt:    finishedAt.UTC(),
	}
}
