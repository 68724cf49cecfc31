package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/history"
	"github.com/ericogr/biogenesis/internal/run"
)

type replayReport struct {
	species   string
	runs      int
	victories int
	summary   history.Summary
}

// replayFile summarizes a history CSV written by -output or the server
// instead of simulating.
func replayFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening replay file: %w", err)
	}
	defer f.Close()
	rows, err := history.ReadRows(f)
	if err != nil {
		return err
	}
	for _, r := range summarizeReplay(rows) {
		printSummary(game.Species{Key: r.species}, r.runs, r.victories, r.summary)
	}
	return nil
}

// summarizeReplay groups rows by species. A run counts as a victory when
// any of its rows reached the victorious phase.
func summarizeReplay(rows []history.Row) []replayReport {
	bySpecies := make(map[string][]history.Row)
	for _, r := range rows {
		bySpecies[r.Species] = append(bySpecies[r.Species], r)
	}
	keys := make([]string, 0, len(bySpecies))
	for k := range bySpecies {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]replayReport, 0, len(keys))
	for _, k := range keys {
		group := bySpecies[k]
		runs := make(map[string]bool)
		for _, r := range group {
			won := r.Phase == string(run.PhaseVictorious)
			runs[r.RunID] = runs[r.RunID] || won
		}
		victories := 0
		for _, won := range runs {
			if won {
				victories++
			}
		}
		out = append(out, replayReport{
			species:   k,
			runs:      len(runs),
			victories: victories,
			summary:   history.SummarizeRows(group),
		})
	}
	return out
}
