// Command evolve-sim plays batches of runs headlessly with a greedy strategy
// against the offline collaborators and reports survival statistics. With
// -replay it summarizes a history CSV from an earlier simulation or server
// instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/google/uuid"

	"github.com/ericogr/biogenesis/internal/config"
	"github.com/ericogr/biogenesis/internal/engine"
	"github.com/ericogr/biogenesis/internal/envgen"
	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/history"
	"github.com/ericogr/biogenesis/internal/logging"
	"github.com/ericogr/biogenesis/internal/narrator"
	"github.com/ericogr/biogenesis/internal/run"
)

func main() {
	configPath := flag.String("config", "", "YAML config overlaying the defaults (empty = defaults)")
	runs := flag.Int("runs", 100, "Number of runs per species")
	speciesKey := flag.String("species", "", "Only simulate this species key (empty = all)")
	seed := flag.Int64("seed", 42, "Random seed for environments and variance")
	output := flag.String("output", "", "CSV file receiving one row per round (empty = none)")
	logLevel := flag.String("log-level", "warn", "Log level")
	replay := flag.String("replay", "", "Summarize an existing history CSV instead of simulating")
	flag.Parse()

	logging.SetLevel(*logLevel)
	defer logging.Sync()

	if *replay != "" {
		if err := replayFile(*replay); err != nil {
			logging.Fatal("failed to replay history", err, logging.Fields{"replay": *replay})
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal("failed to load config", err, logging.Fields{"config_path": *configPath})
	}
	species := cfg.Species
	if *speciesKey != "" {
		species = filterSpecies(species, *speciesKey)
		if len(species) == 0 {
			logging.Fatal("unknown species", nil, logging.Fields{"species": *speciesKey})
		}
	}

	var rec *history.Recorder
	if *output != "" {
		if rec, err = history.OpenFile(*output); err != nil {
			logging.Fatal("failed to open output", err, logging.Fields{"output": *output})
		}
		defer rec.Close()
	}

	sim := newSimulator(cfg.Rules, *seed)
	for _, sp := range species {
		var rows []history.Row
		victories := 0
		for i := 0; i < *runs; i++ {
			out, err := sim.play(context.Background(), sp)
			if err != nil {
				logging.Fatal("simulation failed", err, logging.Fields{"species": sp.Key})
			}
			if out.phase == run.PhaseVictorious {
				victories++
			}
			rows = append(rows, out.rows...)
			if rec != nil {
				if err := rec.Write(out.rows...); err != nil {
					logging.Fatal("failed to write rows", err, logging.Fields{"output": *output})
				}
			}
		}
		printSummary(sp, *runs, victories, history.SummarizeRows(rows))
	}
}

func filterSpecies(all []game.Species, key string) []game.Species {
	for _, sp := range all {
		if sp.Key == key {
			return []game.Species{sp}
		}
	}
	return nil
}

func printSummary(sp game.Species, runs, victories int, s history.Summary) {
	fmt.Fprintf(os.Stdout, "%-10s runs=%d victories=%d (%.1f%%) rounds=%d survival=%.1f%% damage mean=%.1f sd=%.1f max=%.0f gc=%.2f\n",
		sp.Key, runs, victories, 100*float64(victories)/float64(runs),
		s.Rounds, 100*s.SurvivalRate, s.MeanDamage, s.StdDevDamage, s.MaxDamage, s.MeanGC)
}

type simulator struct {
	rules    run.Rules
	rng      *rand.Rand
	envgen   run.EnvironmentGenerator
	narrator run.Narrator
}

type outcome struct {
	phase run.Phase
	score int
	rows  []history.Row
}

func newSimulator(rules run.Rules, seed int64) *simulator {
	return &simulator{
		rules:    rules,
		rng:      rand.New(rand.NewSource(seed)),
		envgen:   envgen.NewProcedural(seed),
		narrator: narrator.Offline{},
	}
}

func (s *simulator) variance() float64 {
	return s.rng.Float64()*2*engine.MaxVariance - engine.MaxVariance
}

// play runs one species from selection to a terminal phase.
func (s *simulator) play(ctx context.Context, sp game.Species) (outcome, error) {
	id := uuid.NewString()
	m := run.New(s.rules, run.WithRunID(id), run.WithVariance(s.variance))
	if err := m.Begin(); err != nil {
		return outcome{}, err
	}
	if _, err := m.SelectSpecies(sp); err != nil {
		return outcome{}, err
	}
	var rows []history.Row
	for {
		if _, err := m.Scan(ctx, s.envgen); err != nil {
			return outcome{}, err
		}
		if err := tune(m); err != nil {
			return outcome{}, err
		}
		res, err := m.Evolve(ctx, s.narrator)
		if err != nil {
			return outcome{}, err
		}
		st := m.Snapshot()
		rows = append(rows, history.NewRow(id, st, res))
		if st.Phase.Terminal() {
			return outcome{phase: st.Phase, score: st.Score, rows: rows}, nil
		}
		if _, err := m.NextRound(); err != nil {
			return outcome{}, err
		}
	}
}
