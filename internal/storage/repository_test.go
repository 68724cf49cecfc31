package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ericogr/biogenesis/internal/game"
)

func openTestRepo(t *testing.T, species []game.Species) Repository {
	t.Helper()
	db, err := OpenAndMigrate(filepath.Join(t.TempDir(), "test.db"), species)
	if err != nil {
		t.Fatalf("OpenAndMigrate: %v", err)
	}
	return NewSQLiteRepository(db)
}

func TestSpeciesCatalogSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.db")
	first := []game.Species{
		{Key: "pyro", Name: "Pyro", InitialSequence: "AAAG"},
		{Key: "cryo", Name: "Cryo", InitialSequence: "TTGT"},
	}
	if _, err := OpenAndMigrate(path, first); err != nil {
		t.Fatalf("first open: %v", err)
	}
	second := []game.Species{{Key: "pyro", Name: "Pyro II", InitialSequence: "AAGG"}}
	db, err := OpenAndMigrate(path, second)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	repo := NewSQLiteRepository(db)

	all, err := repo.GetSpecies()
	if err != nil {
		t.Fatalf("GetSpecies: %v", err)
	}
	if len(all) != 2 || all[0].Key != "cryo" || all[1].Key != "pyro" {
		t.Fatalf("unexpected catalog %+v", all)
	}
	sp, err := repo.GetSpeciesByKey("PYRO")
	if err != nil || sp == nil {
		t.Fatalf("GetSpeciesByKey: %v %v", sp, err)
	}
	if sp.Name != "Pyro II" || sp.InitialSequence != "AAGG" {
		t.Fatalf("species not updated: %+v", sp)
	}
	missing, err := repo.GetSpeciesByKey("nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing key, got %v %v", missing, err)
	}
}

func TestRunRecordsAndLeaderboard(t *testing.T) {
	repo := openTestRepo(t, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recs := []game.RunRecord{
		{RunID: "a", Attempt: 0, Outcome: game.OutcomeDefeated, Score: 50, Rounds: 1, FinishedAt: base},
		{RunID: "a", Attempt: 1, Outcome: game.OutcomeVictorious, Score: 576, Rounds: 8, FinishedAt: base.Add(time.Minute)},
		{RunID: "b", Attempt: 0, Outcome: game.OutcomeVictorious, Score: 576, Rounds: 7, FinishedAt: base.Add(2 * time.Minute)},
		{RunID: "c", Attempt: 0, Outcome: game.OutcomeDefeated, Score: 120, Rounds: 2, FinishedAt: base},
	}
	for i := range recs {
		if err := repo.SaveRunRecord(&recs[i]); err != nil {
			t.Fatalf("SaveRunRecord: %v", err)
		}
	}
	dup := game.RunRecord{RunID: "a", Attempt: 1, Score: 1}
	if err := repo.SaveRunRecord(&dup); err == nil {
		t.Fatalf("expected unique violation for repeated attempt")
	}

	top, err := repo.GetTopRuns(3)
	if err != nil {
		t.Fatalf("GetTopRuns: %v", err)
	}
	if len(top) != 3 || top[0].RunID != "b" || top[1].RunID != "a" || top[2].RunID != "c" {
		t.Fatalf("unexpected ordering %+v", top)
	}

	got, err := repo.GetRunRecord("a", 0)
	if err != nil || got.Score != 50 {
		t.Fatalf("GetRunRecord: %+v %v", got, err)
	}
	if missing, err := repo.GetRunRecord("zzz", 0); err != nil || missing != nil {
		t.Fatalf("expected nil record for missing run, got %+v %v", missing, err)
	}
}
