package service

import (
	"context"
	"fmt"

	"github.com/ericogr/biogenesis/internal/constants"
	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/history"
	"github.com/ericogr/biogenesis/internal/logging"
	"github.com/ericogr/biogenesis/internal/run"
)

// GetRun returns the current state of a run.
func (m *Manager) GetRun(id string) (run.State, error) {
	var st run.State
	err := m.withSession(id, func(s *session) error {
		st = s.machine.Snapshot()
		return nil
	})
	return st, err
}

// Begin leaves the intro screen.
func (m *Manager) Begin(id string) (run.State, error) {
	var st run.State
	err := m.withSession(id, func(s *session) error {
		if err := s.machine.Begin(); err != nil {
			return err
		}
		st = s.machine.Snapshot()
		return nil
	})
	return st, err
}

// SelectSpecies seeds the run from a stored template and scans the first
// environment. The session is unlocked while the generator runs, so other
// actions observe the scanning phase.
func (m *Manager) SelectSpecies(ctx context.Context, id, speciesKey string) (run.State, error) {
	sp, err := m.repo.GetSpeciesByKey(speciesKey)
	if err != nil {
		return run.State{}, fmt.Errorf("loading species %s: %w", speciesKey, err)
	}
	if sp == nil {
		return run.State{}, ErrSpeciesNotFound
	}
	var (
		req     run.EnvironmentRequest
		attempt int
	)
	err = m.withSession(id, func(s *session) error {
		var err error
		req, err = s.machine.SelectSpecies(*sp)
		attempt = s.attempt
		return err
	})
	if err != nil {
		return run.State{}, err
	}
	return m.completeScan(ctx, id, attempt, req)
}

// NextRound grows the organism after a survived round and scans the next
// environment.
func (m *Manager) NextRound(ctx context.Context, id string) (run.State, error) {
	var (
		req     run.EnvironmentRequest
		attempt int
	)
	err := m.withSession(id, func(s *session) error {
		var err error
		req, err = s.machine.NextRound()
		attempt = s.attempt
		return err
	})
	if err != nil {
		return run.State{}, err
	}
	return m.completeScan(ctx, id, attempt, req)
}

func (m *Manager) completeScan(ctx context.Context, id string, attempt int, req run.EnvironmentRequest) (run.State, error) {
	out := m.generateEnvironment(ctx, id, attempt, req)
	var st run.State
	err := m.withSession(id, func(s *session) error {
		// another caller may have completed the same scan
		if pending, ok := s.machine.ScanRequest(); ok && s.attempt == attempt && pending == req {
			if _, err := s.machine.CompleteScan(out); err != nil {
				return err
			}
		}
		st = s.machine.Snapshot()
		return nil
	})
	return st, err
}

// CycleSlot advances one base of the working sequence.
func (m *Manager) CycleSlot(id string, index int) (run.State, error) {
	var st run.State
	err := m.withSession(id, func(s *session) error {
		if _, err := s.machine.CycleSlot(index); err != nil {
			return err
		}
		st = s.machine.Snapshot()
		return nil
	})
	return st, err
}

// Prediction returns the live readout for the working sequence.
func (m *Manager) Prediction(id string) (run.Prediction, error) {
	var p run.Prediction
	err := m.withSession(id, func(s *session) error {
		var err error
		p, err = s.machine.Prediction()
		return err
	})
	return p, err
}

// Commit locks the working sequence and resolves the round through the
// narrator. A run already evaluating resumes its outstanding request.
func (m *Manager) Commit(ctx context.Context, id string) (game.EvolutionResult, run.State, error) {
	var (
		req     run.NarrationRequest
		attempt int
	)
	err := m.withSession(id, func(s *session) error {
		attempt = s.attempt
		if s.machine.Phase() == run.PhaseEvaluating {
			req, _ = s.machine.NarrationRequest()
			return nil
		}
		var err error
		req, err = s.machine.Commit()
		return err
	})
	if err != nil {
		return game.EvolutionResult{}, run.State{}, err
	}

	out := m.narrate(ctx, id, attempt, req)

	var (
		res game.EvolutionResult
		st  run.State
	)
	err = m.withSession(id, func(s *session) error {
		pending, ok := s.machine.NarrationRequest()
		if ok && s.attempt == attempt && pending.Round == req.Round {
			var err error
			if res, err = s.machine.CompleteEvaluation(out); err != nil {
				return err
			}
			st = s.machine.Snapshot()
			m.recordRound(s, st, res)
			return nil
		}
		// resolved by a concurrent caller
		st = s.machine.Snapshot()
		if last, ok := s.machine.LastResult(); ok {
			res = last
		}
		return nil
	})
	return res, st, err
}

// recordRound streams the round and, once per attempt, stores the finished
// run. Storage failures are logged, never surfaced to the player.
func (m *Manager) recordRound(s *session, st run.State, res game.EvolutionResult) {
	if m.recorder != nil {
		if err := m.recorder.RecordRound(s.id, st, res); err != nil {
			logging.Error("failed to record round history", err, logging.Fields{constants.LogFieldRunID: s.id, constants.LogFieldRound: res.Round})
		}
	}
	if !st.Phase.Terminal() || s.recorded {
		return
	}
	rec := newRunRecord(s.id, s.attempt, st, m.now())
	if err := m.repo.SaveRunRecord(rec); err != nil {
		logging.Error("failed to save run record", err, logging.Fields{constants.LogFieldRunID: s.id})
		return
	}
	s.recorded = true
	logging.Info("run finished", logging.Fields{
		constants.LogFieldRunID:   s.id,
		constants.LogFieldSpecies: st.SpeciesKey,
		constants.LogFieldPhase:   string(st.Phase),
		constants.LogFieldScore:   st.Score,
	})
}

// Restart discards the current attempt and returns the run to the intro.
func (m *Manager) Restart(id string) (run.State, error) {
	var st run.State
	err := m.withSession(id, func(s *session) error {
		if err := s.machine.Restart(); err != nil {
			return err
		}
		s.attempt++
		s.recorded = false
		st = s.machine.Snapshot()
		return nil
	})
	return st, err
}

// RunSummary aggregates the resolved rounds of a run.
type RunSummary struct {
	State   run.State       `json:"state"`
	Summary history.Summary `json:"summary"`
}

// Summary returns the run state together with damage statistics.
func (m *Manager) Summary(id string) (RunSummary, error) {
	var out RunSummary
	err := m.withSession(id, func(s *session) error {
		out.State = s.machine.Snapshot()
		out.Summary = history.Summarize(out.State.History)
		return nil
	})
	return out, err
}
