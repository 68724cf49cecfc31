package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ericogr/biogenesis/internal/engine"
	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/run"
)

type mockRepo struct {
	mu      sync.Mutex
	species map[string]game.Species
	saved   []game.RunRecord
	saveErr error
	getErr  error
}

func (m *mockRepo) GetSpeciesByKey(key string) (*game.Species, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if sp, ok := m.species[key]; ok {
		return &sp, nil
	}
	return nil, nil
}

func (m *mockRepo) SaveRunRecord(rec *game.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, *rec)
	return nil
}

type stubEnv struct {
	env   game.Environment
	err   error
	calls int
}

func (s *stubEnv) GenerateEnvironment(ctx context.Context, req run.EnvironmentRequest) (game.Environment, error) {
	s.calls++
	return s.env, s.err
}

type stubNarrator struct {
	err   error
	calls int
}

func (s *stubNarrator) Narrate(ctx context.Context, req run.NarrationRequest) (game.Narrative, error) {
	s.calls++
	return game.Narrative{OrganismName: "Glass Strider"}, s.err
}

type memRecorder struct {
	rounds []int
}

func (r *memRecorder) RecordRound(runID string, st run.State, res game.EvolutionResult) error {
	r.rounds = append(r.rounds, res.Round)
	return nil
}

func newTestManager(env game.Environment, rules run.Rules) (*Manager, *mockRepo, *memRecorder) {
	repo := &mockRepo{species: map[string]game.Species{
		"pyro": {Key: "pyro", Name: "Pyro Lifeform", InitialSequence: "AAAG"},
	}}
	rec := &memRecorder{}
	m := NewManager(repo, &stubEnv{env: env}, &stubNarrator{}, rules,
		WithVariance(func() float64 { return 0 }),
		WithRoundRecorder(rec),
		WithTimeout(time.Second))
	return m, repo, rec
}

func TestManager_FullRunRecordsOnce(t *testing.T) {
	rules := run.DefaultRules()
	rules.RoundCeiling = 2
	m, repo, rec := newTestManager(game.Environment{Temperature: 80}, rules)
	ctx := context.Background()

	id, st := m.CreateRun()
	if st.Phase != run.PhaseIntro {
		t.Fatalf("new run phase = %s", st.Phase)
	}
	if _, err := m.Begin(id); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	st, err := m.SelectSpecies(ctx, id, "pyro")
	if err != nil {
		t.Fatalf("SelectSpecies: %v", err)
	}
	if st.Phase != run.PhaseEngineering || st.Environment == nil {
		t.Fatalf("expected engineering with environment, got %+v", st)
	}
	if _, _, err := m.Commit(ctx, id); err != nil {
		t.Fatalf("Commit round 1: %v", err)
	}
	if st, err = m.NextRound(ctx, id); err != nil || st.Round != 2 {
		t.Fatalf("NextRound: %v (round %d)", err, st.Round)
	}
	res, st, err := m.Commit(ctx, id)
	if err != nil {
		t.Fatalf("Commit round 2: %v", err)
	}
	if st.Phase != run.PhaseVictorious || res.Round != 2 || res.OrganismName != "Glass Strider" {
		t.Fatalf("unexpected final result %+v / %s", res, st.Phase)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected one record, got %d", len(repo.saved))
	}
	got := repo.saved[0]
	if got.RunID != id || got.Outcome != game.OutcomeVictorious || got.Score != st.Score || got.SpeciesKey != "pyro" {
		t.Fatalf("unexpected record %+v", got)
	}
	if len(rec.rounds) != 2 {
		t.Fatalf("recorded rounds %v", rec.rounds)
	}

	// a second commit in a terminal phase is rejected and records nothing
	if _, _, err := m.Commit(ctx, id); !errors.Is(err, run.ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("run recorded twice")
	}
}

func TestManager_RestartStartsNewAttempt(t *testing.T) {
	m, repo, _ := newTestManager(game.Environment{Temperature: 100, Toxicity: 100, Radiation: 100}, run.DefaultRules())
	ctx := context.Background()
	id, _ := m.CreateRun()
	for attempt := 0; attempt < 2; attempt++ {
		if _, err := m.Begin(id); err != nil {
			t.Fatalf("Begin: %v", err)
		}
		if _, err := m.SelectSpecies(ctx, id, "pyro"); err != nil {
			t.Fatalf("SelectSpecies: %v", err)
		}
		_, st, err := m.Commit(ctx, id)
		if err != nil || st.Phase != run.PhaseDefeated {
			t.Fatalf("Commit: %v (phase %s)", err, st.Phase)
		}
		if _, err := m.Restart(id); err != nil {
			t.Fatalf("Restart: %v", err)
		}
	}
	if len(repo.saved) != 2 || repo.saved[0].Attempt != 0 || repo.saved[1].Attempt != 1 {
		t.Fatalf("unexpected records %+v", repo.saved)
	}
	if repo.saved[0].Outcome != game.OutcomeDefeated {
		t.Fatalf("outcome = %s", repo.saved[0].Outcome)
	}
}

func TestManager_CollaboratorFailuresFallBack(t *testing.T) {
	repo := &mockRepo{species: map[string]game.Species{"pyro": {Key: "pyro", InitialSequence: "AAAG"}}}
	gen := &stubEnv{err: errors.New("unavailable")}
	narr := &stubNarrator{err: errors.New("bad json")}
	m := NewManager(repo, gen, narr, run.DefaultRules(), WithVariance(func() float64 { return 0 }))
	ctx := context.Background()
	id, _ := m.CreateRun()
	_, _ = m.Begin(id)
	st, err := m.SelectSpecies(ctx, id, "pyro")
	if err != nil {
		t.Fatalf("SelectSpecies: %v", err)
	}
	if !st.Environment.Fallback || st.Environment.Temperature != 35 {
		t.Fatalf("expected fallback environment, got %+v", st.Environment)
	}
	res, _, err := m.Commit(ctx, id)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !res.NarrativeFallback {
		t.Fatalf("expected fallback narrative")
	}
	if gen.calls != 1 || narr.calls != 1 {
		t.Fatalf("calls env=%d narr=%d", gen.calls, narr.calls)
	}
}

func TestManager_Errors(t *testing.T) {
	m, _, _ := newTestManager(game.Environment{Temperature: 80}, run.DefaultRules())
	ctx := context.Background()
	if _, err := m.GetRun("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	id, _ := m.CreateRun()
	_, _ = m.Begin(id)
	if _, err := m.SelectSpecies(ctx, id, "nope"); !errors.Is(err, ErrSpeciesNotFound) {
		t.Fatalf("expected ErrSpeciesNotFound, got %v", err)
	}
	if _, err := m.CycleSlot(id, 0); !errors.Is(err, run.ErrInvalidPhase) {
		t.Fatalf("expected ErrInvalidPhase, got %v", err)
	}
	if _, err := m.SelectSpecies(ctx, id, "pyro"); err != nil {
		t.Fatalf("SelectSpecies: %v", err)
	}
	if _, err := m.CycleSlot(id, 0); err != nil {
		t.Fatalf("CycleSlot(0): %v", err)
	}
	if _, err := m.CycleSlot(id, 1); !errors.Is(err, engine.ErrMutationBudgetExceeded) {
		t.Fatalf("expected budget error, got %v", err)
	}
	if _, err := m.Prediction(id); err != nil {
		t.Fatalf("Prediction: %v", err)
	}
	sum, err := m.Summary(id)
	if err != nil || sum.Summary.Rounds != 0 {
		t.Fatalf("Summary: %+v, %v", sum, err)
	}
}

type blockingEnv struct {
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (b *blockingEnv) GenerateEnvironment(ctx context.Context, req run.EnvironmentRequest) (game.Environment, error) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	select {
	case <-b.release:
		return game.Environment{Name: "Slow Marsh", Temperature: 40}, nil
	case <-ctx.Done():
		return game.Environment{}, ctx.Err()
	}
}

func TestManager_CollaboratorTimeoutFallsBack(t *testing.T) {
	repo := &mockRepo{species: map[string]game.Species{"pyro": {Key: "pyro", InitialSequence: "AAAG"}}}
	gen := &blockingEnv{release: make(chan struct{})}
	m := NewManager(repo, gen, &stubNarrator{}, run.DefaultRules(), WithTimeout(20*time.Millisecond))
	id, _ := m.CreateRun()
	_, _ = m.Begin(id)
	st, err := m.SelectSpecies(context.Background(), id, "pyro")
	if err != nil {
		t.Fatalf("SelectSpecies: %v", err)
	}
	if st.Phase != run.PhaseEngineering || st.Environment == nil || !st.Environment.Fallback {
		t.Fatalf("expected fallback environment after timeout, got %+v", st.Environment)
	}
}

func TestManager_ScanLocksPlayerActions(t *testing.T) {
	repo := &mockRepo{species: map[string]game.Species{"pyro": {Key: "pyro", InitialSequence: "AAAG"}}}
	gen := &blockingEnv{release: make(chan struct{})}
	m := NewManager(repo, gen, &stubNarrator{}, run.DefaultRules(), WithTimeout(5*time.Second))
	id, _ := m.CreateRun()
	_, _ = m.Begin(id)

	done := make(chan run.State, 1)
	go func() {
		st, _ := m.SelectSpecies(context.Background(), id, "pyro")
		done <- st
	}()

	// while the scan is outstanding the run is locked
	deadline := time.Now().Add(2 * time.Second)
	for {
		st, _ := m.GetRun(id)
		if st.Phase == run.PhaseScanning {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("run never entered scanning")
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := m.CycleSlot(id, 0); !errors.Is(err, run.ErrActionsLocked) {
		t.Fatalf("expected ErrActionsLocked, got %v", err)
	}
	if _, err := m.SelectSpecies(context.Background(), id, "pyro"); !errors.Is(err, run.ErrActionsLocked) {
		t.Fatalf("expected ErrActionsLocked on a second selection, got %v", err)
	}

	close(gen.release)
	st := <-done
	if st.Phase != run.PhaseEngineering || st.Environment.Name != "Slow Marsh" {
		t.Fatalf("unexpected state %+v", st)
	}
	gen.mu.Lock()
	defer gen.mu.Unlock()
	if gen.calls != 1 {
		t.Fatalf("generator called %d times", gen.calls)
	}
}

func TestManager_SpeciesLookupFailureIsNotNotFound(t *testing.T) {
	m, repo, _ := newTestManager(game.Environment{Temperature: 80}, run.DefaultRules())
	dbErr := errors.New("database is locked")
	repo.getErr = dbErr
	id, _ := m.CreateRun()
	_, _ = m.Begin(id)
	_, err := m.SelectSpecies(context.Background(), id, "pyro")
	if errors.Is(err, ErrSpeciesNotFound) || !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
	if st, _ := m.GetRun(id); st.Phase != run.PhaseSpeciesSelect {
		t.Fatalf("phase = %s, want species selection", st.Phase)
	}
}

// gatedNarrator blocks its first call until release is closed, ignoring the
// context; later calls answer at once. Names echo the narrated sequence.
type gatedNarrator struct {
	release chan struct{}
	mu      sync.Mutex
	seqs    []string
}

func (g *gatedNarrator) Narrate(ctx context.Context, req run.NarrationRequest) (game.Narrative, error) {
	g.mu.Lock()
	g.seqs = append(g.seqs, req.Sequence.String())
	first := len(g.seqs) == 1
	g.mu.Unlock()
	if first {
		<-g.release
	}
	return game.Narrative{OrganismName: "seq-" + req.Sequence.String()}, nil
}

func (g *gatedNarrator) calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.seqs...)
}

func TestManager_RestartDoesNotShareStaleNarration(t *testing.T) {
	repo := &mockRepo{species: map[string]game.Species{
		"pyro": {Key: "pyro", InitialSequence: "AAAG"},
		"cryo": {Key: "cryo", InitialSequence: "TTGT"},
	}}
	narr := &gatedNarrator{release: make(chan struct{})}
	defer close(narr.release)
	rules := run.DefaultRules()
	rules.RoundCeiling = 1
	m := NewManager(repo, &stubEnv{env: game.Environment{Temperature: 60}}, narr, rules,
		WithVariance(func() float64 { return 0 }),
		WithTimeout(30*time.Millisecond))
	ctx := context.Background()
	id, _ := m.CreateRun()

	_, _ = m.Begin(id)
	if _, err := m.SelectSpecies(ctx, id, "pyro"); err != nil {
		t.Fatalf("SelectSpecies pyro: %v", err)
	}
	res, _, err := m.Commit(ctx, id)
	if err != nil || !res.NarrativeFallback {
		t.Fatalf("first attempt should time out into a fallback: %+v %v", res, err)
	}

	// the first narration is still running when the next attempt commits
	if _, err := m.Restart(id); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	_, _ = m.Begin(id)
	if _, err := m.SelectSpecies(ctx, id, "cryo"); err != nil {
		t.Fatalf("SelectSpecies cryo: %v", err)
	}
	res, _, err = m.Commit(ctx, id)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if res.NarrativeFallback || res.OrganismName != "seq-"+res.Sequence.String() || !strings.HasPrefix(res.Sequence.String(), "TTGT") {
		t.Fatalf("second attempt got narration for another sequence: %+v", res)
	}
	calls := narr.calls()
	if len(calls) != 2 || !strings.HasPrefix(calls[0], "AAAG") || calls[1] != res.Sequence.String() {
		t.Fatalf("narrator requests %v", calls)
	}
}

type countingNarrator struct {
	release chan struct{}
	mu      sync.Mutex
	n       int
}

func (c *countingNarrator) Narrate(ctx context.Context, req run.NarrationRequest) (game.Narrative, error) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
	select {
	case <-c.release:
		return game.Narrative{OrganismName: "Shared Drifter", Narrative: "One answer."}, nil
	case <-ctx.Done():
		return game.Narrative{}, ctx.Err()
	}
}

func (c *countingNarrator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func TestManager_ConcurrentCommitsShareOneNarration(t *testing.T) {
	repo := &mockRepo{species: map[string]game.Species{"pyro": {Key: "pyro", InitialSequence: "AAAG"}}}
	narr := &countingNarrator{release: make(chan struct{})}
	m := NewManager(repo, &stubEnv{env: game.Environment{Temperature: 80}}, narr, run.DefaultRules(),
		WithVariance(func() float64 { return 0 }),
		WithTimeout(5*time.Second))
	ctx := context.Background()
	id, _ := m.CreateRun()
	_, _ = m.Begin(id)
	if _, err := m.SelectSpecies(ctx, id, "pyro"); err != nil {
		t.Fatalf("SelectSpecies: %v", err)
	}

	type commitResult struct {
		res game.EvolutionResult
		st  run.State
		err error
	}
	results := make(chan commitResult, 2)
	commit := func() {
		res, st, err := m.Commit(ctx, id)
		results <- commitResult{res, st, err}
	}

	go commit()
	deadline := time.Now().Add(2 * time.Second)
	for narr.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("narrator never called")
		}
		time.Sleep(time.Millisecond)
	}
	go commit()
	// let the second caller join the outstanding request
	time.Sleep(50 * time.Millisecond)
	close(narr.release)

	a, b := <-results, <-results
	if a.err != nil || b.err != nil {
		t.Fatalf("commit errors: %v / %v", a.err, b.err)
	}
	if narr.count() != 1 {
		t.Fatalf("narrator called %d times", narr.count())
	}
	if !reflect.DeepEqual(a.res, b.res) || a.res.OrganismName != "Shared Drifter" {
		t.Fatalf("callers disagree:\n%+v\n%+v", a.res, b.res)
	}
	if a.st.Phase != run.PhaseSurvived || b.st.Phase != run.PhaseSurvived {
		t.Fatalf("phases %s / %s", a.st.Phase, b.st.Phase)
	}
	if st, _ := m.GetRun(id); len(st.History) != 1 {
		t.Fatalf("round resolved %d times", len(st.History))
	}
}
