package narrator

import (
	"context"
	"fmt"

	"github.com/ericogr/biogenesis/internal/engine"
	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/run"
)

var axisEpithet = map[game.StatAxis]string{
	game.AxisHeat:     "Pyro",
	game.AxisCold:     "Cryo",
	game.AxisToxin:    "Venom",
	game.AxisPhysical: "Bastion",
}

// Offline narrates from the sequence alone, without any network call.
type Offline struct{}

// Narrate implements run.Narrator.
func (Offline) Narrate(_ context.Context, req run.NarrationRequest) (game.Narrative, error) {
	stats := engine.ComputeStats(req.Sequence)
	axis := dominantAxis(stats)
	combos := engine.ActiveCombos(req.Sequence)

	traits := make([]string, 0, MaxTraits)
	for _, c := range combos {
		if len(traits) == MaxTraits {
			break
		}
		traits = append(traits, c.Name)
	}
	if len(traits) == 0 {
		traits = append(traits, "Baseline Genome")
	}

	var story string
	switch {
	case req.HealthAfter() == 0:
		story = fmt.Sprintf("%s overwhelmed the organism. Its cells gave out one by one.", req.Environment.Name)
	case req.DamageTaken == 0:
		story = fmt.Sprintf("The organism thrived in %s, untouched by the elements.", req.Environment.Name)
	default:
		story = fmt.Sprintf("The organism endured %s, losing %d health but adapting.", req.Environment.Name, req.DamageTaken)
	}

	return game.Narrative{
		OrganismName:     fmt.Sprintf("%s Strain %d", axisEpithet[axis], req.Round),
		Description:      fmt.Sprintf("A %d-base organism with %d active combos.", len(req.Sequence), len(combos)),
		Narrative:        story,
		AcquiredTraits:   traits,
		MutationFeedback: feedback(stats, req.Environment),
	}, nil
}

func dominantAxis(s game.OrganismStats) game.StatAxis {
	best, axis := s.HeatRes, game.AxisHeat
	if s.ColdRes > best {
		best, axis = s.ColdRes, game.AxisCold
	}
	if s.ToxinRes > best {
		best, axis = s.ToxinRes, game.AxisToxin
	}
	if s.PhysicalStr > best {
		axis = game.AxisPhysical
	}
	return axis
}

// feedback names the largest damage contribution.
func feedback(stats game.OrganismStats, env game.Environment) string {
	d := engine.BreakDown(stats, env)
	worst, advice := d.Heat, "More A bases would resist the heat."
	if d.Cold > worst {
		worst, advice = d.Cold, "More T bases would resist the cold."
	}
	if d.Toxin > worst {
		worst, advice = d.Toxin, "More C bases would neutralize the toxins."
	}
	if d.Physical > worst {
		worst, advice = d.Physical, "More G bases would harden the organism."
	}
	if worst == 0 {
		return "The current genome is well adapted."
	}
	return advice
}
