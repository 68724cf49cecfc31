package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/history"
	"github.com/ericogr/biogenesis/internal/run"
)

func TestSummarizeReplay_GroupsBySpecies(t *testing.T) {
	rows := []history.Row{
		{RunID: "a", Species: "pyro", Round: 1, DamageTaken: 10, Survived: true, Phase: string(run.PhaseSurvived)},
		{RunID: "a", Species: "pyro", Round: 2, DamageTaken: 20, Survived: true, Phase: string(run.PhaseVictorious)},
		{RunID: "b", Species: "pyro", Round: 1, DamageTaken: 120, Phase: string(run.PhaseDefeated)},
		{RunID: "c", Species: "cryo", Round: 1, DamageTaken: 5, Survived: true, Phase: string(run.PhaseSurvived)},
	}
	got := summarizeReplay(rows)
	if len(got) != 2 || got[0].species != "cryo" || got[1].species != "pyro" {
		t.Fatalf("unexpected grouping %+v", got)
	}
	pyro := got[1]
	if pyro.runs != 2 || pyro.victories != 1 || pyro.summary.Rounds != 3 || pyro.summary.MaxDamage != 120 {
		t.Fatalf("unexpected pyro report %+v", pyro)
	}
	if got[0].runs != 1 || got[0].victories != 0 {
		t.Fatalf("unexpected cryo report %+v", got[0])
	}
}

func TestReplayFile_ReadsSimulatorOutput(t *testing.T) {
	sim := newSimulator(run.DefaultRules(), 7)
	out, err := sim.play(context.Background(), game.Species{Key: "pyro", InitialSequence: "AAAG"})
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	path := filepath.Join(t.TempDir(), "rounds.csv")
	rec, err := history.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := rec.Write(out.rows...); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_ = rec.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := history.ReadRows(f)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	reports := summarizeReplay(rows)
	if len(reports) != 1 || reports[0].runs != 1 || reports[0].summary.Rounds != len(out.rows) {
		t.Fatalf("unexpected reports %+v", reports)
	}
	if err := replayFile(path); err != nil {
		t.Fatalf("replayFile: %v", err)
	}
	if err := replayFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}
