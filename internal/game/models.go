package game

import (
	"time"

	"gorm.io/gorm"
)

// OrganismStats are the four resistance totals derived from a sequence.
// They are never set directly; see engine.ComputeStats.
type OrganismStats struct {
	HeatRes     int `json:"heat_res"`
	ColdRes     int `json:"cold_res"`
	ToxinRes    int `json:"toxin_res"`
	PhysicalStr int `json:"physical_str"`
}

// Add increases the field named by axis.
func (s *OrganismStats) Add(axis StatAxis, amount int) {
	switch axis {
	case AxisHeat:
		s.HeatRes += amount
	case AxisCold:
		s.ColdRes += amount
	case AxisToxin:
		s.ToxinRes += amount
	case AxisPhysical:
		s.PhysicalStr += amount
	}
}

// Get returns the field named by axis.
func (s OrganismStats) Get(axis StatAxis) int {
	switch axis {
	case AxisHeat:
		return s.HeatRes
	case AxisCold:
		return s.ColdRes
	case AxisToxin:
		return s.ToxinRes
	case AxisPhysical:
		return s.PhysicalStr
	}
	return 0
}

// Environment is the hazard profile for one round. Threat scalars are
// nominally in [0,100].
type Environment struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Temperature      float64 `json:"temperature"`
	Toxicity         float64 `json:"toxicity"`
	Radiation        float64 `json:"radiation"`
	ResourceScarcity float64 `json:"resource_scarcity"`
	ImagePrompt      string  `json:"image_prompt"`
	// Fallback is true when the environment was synthesized locally because
	// the generator failed.
	Fallback bool `json:"fallback"`
}

// Narrative is the flavor content supplied by the evolution narrator. It
// never carries numeric game state.
type Narrative struct {
	OrganismName     string   `json:"organism_name"`
	Description      string   `json:"description"`
	Narrative        string   `json:"narrative"`
	AcquiredTraits   []string `json:"acquired_traits"`
	MutationFeedback string   `json:"mutation_feedback"`
}

// EvolutionResult is the immutable outcome of one resolved round.
type EvolutionResult struct {
	Round           int      `json:"round"`
	EnvironmentName string   `json:"environment_name"`
	Sequence        Sequence `json:"sequence"`
	Survived        bool     `json:"survived"`
	BaseDamage      int      `json:"base_damage"`
	DamageTaken     int      `json:"damage_taken"`
	HealthRemaining int      `json:"health_remaining"`
	// Summary is a plain-text account of how the damage was computed.
	Summary string `json:"summary"`
	Narrative
	// NarrativeFallback is true when the narrator failed and placeholder
	// content was used.
	NarrativeFallback bool `json:"narrative_fallback"`
}

// Species is a starting template offered at species selection. The catalog
// comes from configuration and is mirrored in the species_templates table.
type Species struct {
	gorm.Model
	Key         string `json:"key" gorm:"uniqueIndex"`
	Name        string `json:"name"`
	NameEn      string `json:"name_en"`
	Description string `json:"description"`
	// InitialSequence holds the template bases as a symbol string ("AAAG").
	InitialSequence string `json:"initial_sequence"`
}

// TableName stores species under `species_templates`.
func (Species) TableName() string { return "species_templates" }

// Sequence parses the template bases.
func (s Species) Sequence() (Sequence, error) {
	return ParseSequence(s.InitialSequence)
}

// RunOutcome is the terminal state a finished run reached.
type RunOutcome string

const (
	OutcomeVictorious RunOutcome = "victorious"
	OutcomeDefeated   RunOutcome = "defeated"
)

// RunRecord is a finished run kept for the leaderboard. Live run state is
// never persisted; a record is written once, after the run ends.
type RunRecord struct {
	gorm.Model
	RunID string `json:"run_id" gorm:"uniqueIndex:idx_run_attempt"`
	// Attempt counts restarts within the same run session.
	Attempt       int        `json:"attempt" gorm:"uniqueIndex:idx_run_attempt"`
	SpeciesKey    string     `json:"species_key" gorm:"index"`
	SpeciesName   string     `json:"species_name"`
	Outcome       RunOutcome `json:"outcome"`
	Score         int        `json:"score" gorm:"index"`
	Rounds        int        `json:"rounds"`
	MaxHealth     int        `json:"max_health"`
	FinalSequence string     `json:"final_sequence"`
	FinishedAt    time.Time  `json:"finished_at"`
}

// TableName stores finished runs under `run_records`.
func (RunRecord) TableName() string { return "run_records" }
