package run

import (
	"errors"
	"fmt"

	"github.com/ericogr/biogenesis/internal/game"
)

// Rules are the tunable constants of a run.
type Rules struct {
	RoundCeiling    int       `yaml:"round_ceiling" json:"round_ceiling"`
	StartHealth     int       `yaml:"start_health" json:"start_health"`
	HealthGrowth    int       `yaml:"health_growth" json:"health_growth"`
	HealFraction    float64   `yaml:"heal_fraction" json:"heal_fraction"`
	DefaultBase     game.Base `yaml:"default_base" json:"default_base"`
	InitialNewSlots int       `yaml:"initial_new_slots" json:"initial_new_slots"`
	// NewSlotsPerRound is how many default bases each survived round appends.
	NewSlotsPerRound int `yaml:"new_slots_per_round" json:"new_slots_per_round"`
}

// DefaultRules are the stock tuning: eight rounds from 100 health.
func DefaultRules() Rules {
	return Rules{
		RoundCeiling:     8,
		StartHealth:      100,
		HealthGrowth:     30,
		HealFraction:     0.2,
		DefaultBase:      game.BaseA,
		InitialNewSlots:  2,
		NewSlotsPerRound: 1,
	}
}

// Validate reports the first rule that cannot drive a run.
func (r Rules) Validate() error {
	switch {
	case r.RoundCeiling < 1:
		return errors.New("round_ceiling must be at least 1")
	case r.StartHealth < 1:
		return errors.New("start_health must be at least 1")
	case r.HealthGrowth < 0:
		return errors.New("health_growth must not be negative")
	case r.HealFraction < 0 || r.HealFraction > 1:
		return fmt.Errorf("heal_fraction %v outside [0,1]", r.HealFraction)
	case !r.DefaultBase.Valid():
		return fmt.Errorf("default_base %q is not one of A, T, C, G", byte(r.DefaultBase))
	case r.InitialNewSlots < 1 || r.InitialNewSlots > 2:
		return errors.New("initial_new_slots must be 1 or 2")
	case r.NewSlotsPerRound < 1 || r.NewSlotsPerRound > 2:
		return errors.New("new_slots_per_round must be 1 or 2")
	}
	return nil
}
