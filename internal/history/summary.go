package history

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ericogr/biogenesis/internal/game"
)

// Summary aggregates damage and composition over a set of rounds.
type Summary struct {
	Rounds       int     `json:"rounds"`
	Survived     int     `json:"survived"`
	SurvivalRate float64 `json:"survival_rate"`
	TotalDamage  float64 `json:"total_damage"`
	MeanDamage   float64 `json:"mean_damage"`
	StdDevDamage float64 `json:"stddev_damage"`
	MaxDamage    float64 `json:"max_damage"`
	LowestHealth float64 `json:"lowest_health"`
	MeanGC       float64 `json:"mean_gc_content"`
	// VarianceShift is the mean of resolved minus predicted damage.
	VarianceShift float64 `json:"variance_shift"`
}

// Summarize aggregates a run's results.
func Summarize(results []game.EvolutionResult) Summary {
	rows := make([]Row, len(results))
	for i, r := range results {
		rows[i] = Row{
			Round:           r.Round,
			Sequence:        r.Sequence.String(),
			GCContent:       r.Sequence.GCContent(),
			BaseDamage:      r.BaseDamage,
			DamageTaken:     r.DamageTaken,
			HealthRemaining: r.HealthRemaining,
			Survived:        r.Survived,
		}
	}
	return SummarizeRows(rows)
}

// SummarizeRows aggregates rows from any number of runs.
func SummarizeRows(rows []Row) Summary {
	var s Summary
	if len(rows) == 0 {
		return s
	}
	damage := make([]float64, len(rows))
	gc := make([]float64, len(rows))
	shift := make([]float64, len(rows))
	health := make([]float64, len(rows))
	for i, r := range rows {
		damage[i] = float64(r.DamageTaken)
		gc[i] = r.GCContent
		shift[i] = float64(r.DamageTaken - r.BaseDamage)
		health[i] = float64(r.HealthRemaining)
		if r.Survived {
			s.Survived++
		}
	}
	s.Rounds = len(rows)
	s.SurvivalRate = float64(s.Survived) / float64(s.Rounds)
	s.TotalDamage = floats.Sum(damage)
	s.MaxDamage = floats.Max(damage)
	s.LowestHealth = floats.Min(health)
	if len(damage) > 1 {
		s.MeanDamage, s.StdDevDamage = stat.MeanStdDev(damage, nil)
	} else {
		s.MeanDamage = damage[0]
	}
	s.MeanGC = stat.Mean(gc, nil)
	s.VarianceShift = stat.Mean(shift, nil)
	return s
}
