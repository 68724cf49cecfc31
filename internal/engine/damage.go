package engine

import (
	"math"

	"github.com/ericogr/biogenesis/internal/game"
)

// MaxVariance bounds the per-round damage variance on either side of the
// base damage.
const MaxVariance = 0.1

const (
	// HotThreshold splits the temperature axis: above it heat applies,
	// at or below it cold applies.
	HotThreshold        = 50.0
	temperatureFactor   = 1.2
	toxinFactor         = 1.0
	physicalFactor      = 1.0
	predictionBandLower = 1 - MaxVariance
	predictionBandUpper = 1 + MaxVariance
)

// DamageBreakdown holds the four independent, non-negative damage
// contributions before rounding. Exactly one of Heat and Cold is non-zero
// per evaluation at most.
type DamageBreakdown struct {
	Heat     float64 `json:"heat"`
	Cold     float64 `json:"cold"`
	Toxin    float64 `json:"toxin"`
	Physical float64 `json:"physical"`
}

// Total sums the contributions and rounds up.
func (d DamageBreakdown) Total() int {
	return int(math.Ceil(d.Heat + d.Cold + d.Toxin + d.Physical))
}

// BreakDown computes each threat's contribution for stats in env.
func BreakDown(stats game.OrganismStats, env game.Environment) DamageBreakdown {
	var d DamageBreakdown
	if env.Temperature > HotThreshold {
		d.Heat = math.Max(0, env.Temperature-float64(stats.HeatRes)) * temperatureFactor
	} else {
		d.Cold = math.Max(0, (100-env.Temperature)-float64(stats.ColdRes)) * temperatureFactor
	}
	d.Toxin = math.Max(0, env.Toxicity-float64(stats.ToxinRes)) * toxinFactor
	// radiation and scarcity collapse into one physical threat
	physicalThreat := math.Max(env.Radiation, env.ResourceScarcity)
	d.Physical = math.Max(0, physicalThreat-float64(stats.PhysicalStr)) * physicalFactor
	return d
}

// PredictDamage is the deterministic damage for stats in env. It has no
// variance and is reproducible for identical inputs.
func PredictDamage(stats game.OrganismStats, env game.Environment) int {
	return BreakDown(stats, env).Total()
}

// ResolveDamage applies a caller-supplied variance to a predicted base
// damage, floors at zero and truncates. variance is clamped to
// [-MaxVariance, MaxVariance].
func ResolveDamage(base int, variance float64) int {
	if math.IsNaN(variance) {
		variance = 0
	}
	variance = math.Max(-MaxVariance, math.Min(MaxVariance, variance))
	return int(math.Floor(math.Max(0, float64(base)*(1+variance))))
}

// PredictRange returns the display band [floor(base*0.9), ceil(base*1.1)].
func PredictRange(base int) (lo, hi int) {
	lo = int(math.Floor(float64(base) * predictionBandLower))
	hi = int(math.Ceil(float64(base) * predictionBandUpper))
	return lo, hi
}
