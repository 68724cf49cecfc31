package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/logging"
	"github.com/ericogr/biogenesis/internal/run"
)

func TestExpireIdleRuns(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	repo := &mockRepo{species: map[string]game.Species{"pyro": {Key: "pyro", InitialSequence: "AAAG"}}}
	m := NewManager(repo, &stubEnv{env: game.Environment{Temperature: 80}}, &stubNarrator{}, run.DefaultRules(), WithClock(clock))

	stale, _ := m.CreateRun()
	now = now.Add(20 * time.Minute)
	fresh, _ := m.CreateRun()

	expired := m.ExpireIdleRuns(10 * time.Minute)
	if len(expired) != 1 || expired[0] != stale {
		t.Fatalf("expired %v, want [%s]", expired, stale)
	}
	if _, err := m.GetRun(stale); err == nil {
		t.Fatalf("stale run still present")
	}
	if _, err := m.GetRun(fresh); err != nil {
		t.Fatalf("fresh run removed: %v", err)
	}
}

func TestExpireIdleRuns_RecordsUnsavedFinishedRun(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockRepo{species: map[string]game.Species{"pyro": {Key: "pyro", InitialSequence: "AAAG"}}}
	m := NewManager(repo, &stubEnv{env: game.Environment{Temperature: 100, Toxicity: 100, Radiation: 100}}, &stubNarrator{},
		run.DefaultRules(), WithClock(func() time.Time { return now }))

	id, _ := m.CreateRun()
	_, _ = m.Begin(id)
	_, _ = m.SelectSpecies(context.Background(), id, "pyro")
	repo.saveErr = errTestStorage
	if _, st, err := m.Commit(context.Background(), id); err != nil || st.Phase != run.PhaseDefeated {
		t.Fatalf("Commit: %v (%s)", err, st.Phase)
	}
	repo.saveErr = nil

	now = now.Add(time.Hour)
	if got := m.ExpireIdleRuns(time.Minute); len(got) != 1 {
		t.Fatalf("expired %v", got)
	}
	if len(repo.saved) != 1 || repo.saved[0].RunID != id {
		t.Fatalf("expected the finished run to be recorded on expiry, got %+v", repo.saved)
	}
}

func TestExpireIdleRuns_LeavesReportingToCaller(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	logging.SetOutput(path)
	defer logging.SetOutput("stderr")

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockRepo{}
	m := NewManager(repo, &stubEnv{}, &stubNarrator{}, run.DefaultRules(), WithClock(func() time.Time { return now }))
	_, _ = m.CreateRun()
	now = now.Add(time.Hour)
	if got := m.ExpireIdleRuns(time.Minute); len(got) != 1 {
		t.Fatalf("expired %v", got)
	}
	logging.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(b), "expired idle runs") {
		t.Fatalf("sweep logged by the manager:\n%s", b)
	}
}

type testErr string

func (e testErr) Error() string { return string(e) }

const errTestStorage = testErr("disk full")
