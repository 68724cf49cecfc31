package run

import (
	"context"
	"fmt"
	"math"

	"github.com/ericogr/biogenesis/internal/game"
)

// EnvironmentRequest asks the generator for the hazard profile of a round.
type EnvironmentRequest struct {
	Round        int `json:"round"`
	RoundCeiling int `json:"round_ceiling"`
}

// EnvironmentOutcome is what the generator returned: an environment or an
// error, never both.
type EnvironmentOutcome struct {
	Environment game.Environment
	Err         error
}

// NarrationRequest carries the already-resolved round to the narrator. The
// narrator only adds flavor; it cannot change damage or survival.
type NarrationRequest struct {
	Round       int              `json:"round"`
	Sequence    game.Sequence    `json:"sequence"`
	Environment game.Environment `json:"environment"`
	DamageTaken int              `json:"damage_taken"`
	// Health is the value before damage is applied.
	Health    int `json:"health"`
	MaxHealth int `json:"max_health"`
}

// HealthAfter is the health the organism is left with.
func (r NarrationRequest) HealthAfter() int {
	if h := r.Health - r.DamageTaken; h > 0 {
		return h
	}
	return 0
}

// NarrationOutcome is the narrator's answer.
type NarrationOutcome struct {
	Narrative game.Narrative
	Err       error
}

// EnvironmentGenerator produces round environments.
type EnvironmentGenerator interface {
	GenerateEnvironment(ctx context.Context, req EnvironmentRequest) (game.Environment, error)
}

// Narrator produces flavor text for a resolved round.
type Narrator interface {
	Narrate(ctx context.Context, req NarrationRequest) (game.Narrative, error)
}

// FallbackEnvironment is the deterministic environment used when the
// generator fails.
func FallbackEnvironment(round int) game.Environment {
	r := float64(round)
	return game.Environment{
		Name:             "Unknown Sector (data recovery mode)",
		Description:      "Sensor data offline. Standard test environment loaded.",
		Temperature:      30 + 5*r,
		Toxicity:         20 + 5*r,
		Radiation:        10 + 5*r,
		ResourceScarcity: 20,
		ImagePrompt:      "Abstract digital grid",
		Fallback:         true,
	}
}

// FallbackNarrative is the placeholder used when the narrator fails.
func FallbackNarrative() game.Narrative {
	return game.Narrative{
		OrganismName:     "Unknown Lifeform",
		Description:      "Data transmission interrupted...",
		Narrative:        "Simulation interference detected. Damage calculation applied.",
		AcquiredTraits:   []string{"Data Recovery"},
		MutationFeedback: "Maintain signal connection.",
	}
}

// checkEnvironment rejects values the damage model cannot use.
func checkEnvironment(env game.Environment) error {
	for name, v := range map[string]float64{
		"temperature":       env.Temperature,
		"toxicity":          env.Toxicity,
		"radiation":         env.Radiation,
		"resource_scarcity": env.ResourceScarcity,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("environment %s is not a finite number", name)
		}
	}
	return nil
}
