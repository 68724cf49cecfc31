package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/run"
)

// Repo is the minimal repository interface the manager needs. Using a small
// interface simplifies testing.
type Repo interface {
	GetSpeciesByKey(key string) (*game.Species, error)
	SaveRunRecord(rec *game.RunRecord) error
}

// RoundRecorder receives every resolved round.
type RoundRecorder interface {
	RecordRound(runID string, st run.State, res game.EvolutionResult) error
}

var (
	ErrRunNotFound     = errors.New("run not found")
	ErrSpeciesNotFound = errors.New("species not found")
)

// DefaultCollaboratorTimeout bounds a single environment or narration call.
const DefaultCollaboratorTimeout = 60 * time.Second

type session struct {
	mu         sync.Mutex
	id         string
	machine    *run.Machine
	attempt    int
	recorded   bool
	lastActive time.Time
}

// Manager owns the live runs. Run state is in memory only; finished runs are
// written to the repository once.
type Manager struct {
	repo     Repo
	envgen   run.EnvironmentGenerator
	narrator run.Narrator
	rules    run.Rules

	timeout  time.Duration
	recorder RoundRecorder
	variance func() float64
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// Option customizes a Manager.
type Option func(*Manager)

// WithTimeout bounds each collaborator call.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithRoundRecorder streams resolved rounds to r.
func WithRoundRecorder(r RoundRecorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithVariance fixes the damage variance source of new runs.
func WithVariance(fn func() float64) Option {
	return func(m *Manager) { m.variance = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager wires collaborators and rules. rules must be valid.
func NewManager(repo Repo, envgen run.EnvironmentGenerator, narrator run.Narrator, rules run.Rules, opts ...Option) *Manager {
	m := &Manager{
		repo:     repo,
		envgen:   envgen,
		narrator: narrator,
		rules:    rules,
		timeout:  DefaultCollaboratorTimeout,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Rules returns the tuning new runs are created with.
func (m *Manager) Rules() run.Rules { return m.rules }

// CreateRun starts a new run in the intro phase.
func (m *Manager) CreateRun() (string, run.State) {
	id := uuid.NewString()
	opts := []run.Option{run.WithRunID(id)}
	if m.variance != nil {
		opts = append(opts, run.WithVariance(m.variance))
	}
	s := &session{id: id, machine: run.New(m.rules, opts...), lastActive: m.now()}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return id, s.machine.Snapshot()
}

func (m *Manager) session(id string) (*session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrRunNotFound
	}
	return s, nil
}

// withSession runs fn under the session lock and refreshes its activity.
func (m *Manager) withSession(id string, fn func(s *session) error) error {
	s, err := m.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = m.now()
	return fn(s)
}

// Count returns the number of live runs.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
