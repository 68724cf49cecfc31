package run

// Phase is the closed set of states a run moves through.
type Phase string

const (
	PhaseIntro         Phase = "intro"
	PhaseSpeciesSelect Phase = "species_select"
	PhaseScanning      Phase = "scanning"
	PhaseEngineering   Phase = "engineering"
	PhaseEvaluating    Phase = "evaluating"
	PhaseSurvived      Phase = "survived"
	PhaseDefeated      Phase = "defeated"
	PhaseVictorious    Phase = "victorious"
)

// Transient phases wait on a collaborator; player actions are locked.
func (p Phase) Transient() bool {
	return p == PhaseScanning || p == PhaseEvaluating
}

// Terminal phases only exit through a restart.
func (p Phase) Terminal() bool {
	return p == PhaseDefeated || p == PhaseVictorious
}

// Resolved phases carry a last result.
func (p Phase) Resolved() bool {
	return p == PhaseSurvived || p.Terminal()
}
