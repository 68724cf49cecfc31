package envgen

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/run"
)

var (
	biomes   = []string{"Crystal Wastes", "Lava Sea", "Spore Marsh", "Ice Shelf", "Acid Canyon", "Ash Plains", "Brine Trench", "Glass Dunes"}
	sectors  = []string{"X-9", "Kepler", "Scorpius Gamma", "Vega", "Tau Ceti", "Helix"}
	hazardOf = map[string]string{
		"temperature": "searing heat",
		"toxicity":    "caustic fumes",
		"radiation":   "hard radiation",
		"scarcity":    "starvation",
	}
)

// Procedural draws tier-bounded environments locally. It never fails and is
// safe for concurrent use.
type Procedural struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewProcedural seeds the generator; equal seeds give equal sequences.
func NewProcedural(seed int64) *Procedural {
	return &Procedural{rng: rand.New(rand.NewSource(seed))}
}

// GenerateEnvironment implements run.EnvironmentGenerator.
func (p *Procedural) GenerateEnvironment(_ context.Context, req run.EnvironmentRequest) (game.Environment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tier := TierFor(req.Round)
	roll := func() float64 {
		return float64(int(tier.Min + p.rng.Float64()*(tier.Max-tier.Min)))
	}
	env := game.Environment{
		Temperature:      roll(),
		Toxicity:         roll(),
		Radiation:        roll(),
		ResourceScarcity: roll(),
	}
	sector := sectors[p.rng.Intn(len(sectors))]
	biome := biomes[p.rng.Intn(len(biomes))]
	env.Name = fmt.Sprintf("%s %s", sector, biome)
	env.Description = fmt.Sprintf("A %s world dominated by %s.", tierWord(tier), hazardOf[dominant(env)])
	env.ImagePrompt = fmt.Sprintf("Alien %s landscape, %s", biome, hazardOf[dominant(env)])
	return env, nil
}

func tierWord(t Tier) string {
	switch t.Name {
	case "EASY":
		return "mild"
	case "MEDIUM":
		return "hostile"
	}
	return "lethal"
}

func dominant(env game.Environment) string {
	best, name := env.Temperature, "temperature"
	if env.Toxicity > best {
		best, name = env.Toxicity, "toxicity"
	}
	if env.Radiation > best {
		best, name = env.Radiation, "radiation"
	}
	if env.ResourceScarcity > best {
		name = "scarcity"
	}
	return name
}
