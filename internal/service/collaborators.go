package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ericogr/biogenesis/internal/constants"
	"github.com/ericogr/biogenesis/internal/dedupe"
	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/keys"
	"github.com/ericogr/biogenesis/internal/logging"
	"github.com/ericogr/biogenesis/internal/run"
)

// ErrCollaboratorTimeout is handed to the machine when a call outlives the
// outer timeout; the machine treats it like any other failure.
var ErrCollaboratorTimeout = errors.New("timed out waiting for collaborator")

// await runs fn once per key and waits at most m.timeout for its result.
// The call is detached from the caller's cancellation because other callers
// may share it.
func (m *Manager) await(ctx context.Context, group *singleflight.Group, key string, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	ch := group.DoChan(key, func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()
		return fn(cctx)
	})
	timer := time.NewTimer(m.timeout)
	defer timer.Stop()
	select {
	case r := <-ch:
		if r.Shared {
			logging.Debug("collaborator result shared", logging.Fields{constants.LogFieldKey: key})
		}
		return r.Val, r.Err
	case <-timer.C:
		logging.Error("collaborator call timed out", ErrCollaboratorTimeout, logging.Fields{constants.LogFieldKey: key})
		return nil, ErrCollaboratorTimeout
	}
}

// generateEnvironment calls the environment generator for one run round.
// Errors are returned as data for the machine to interpret.
func (m *Manager) generateEnvironment(ctx context.Context, runID string, attempt int, req run.EnvironmentRequest) run.EnvironmentOutcome {
	start := m.now()
	v, err := m.await(ctx, &dedupe.ScanGroup, keys.ScanKey(runID, attempt, req.Round), func(cctx context.Context) (interface{}, error) {
		return m.envgen.GenerateEnvironment(cctx, req)
	})
	logging.Debug("environment generation finished", logging.Fields{
		constants.LogFieldRunID:    runID,
		constants.LogFieldRound:    req.Round,
		constants.LogFieldDuration: m.now().Sub(start).Milliseconds(),
	})
	if err != nil {
		return run.EnvironmentOutcome{Err: err}
	}
	env, ok := v.(game.Environment)
	if !ok {
		return run.EnvironmentOutcome{Err: fmt.Errorf("unexpected environment type %T", v)}
	}
	return run.EnvironmentOutcome{Environment: env}
}

// narrate calls the narrator for one round of one attempt.
func (m *Manager) narrate(ctx context.Context, runID string, attempt int, req run.NarrationRequest) run.NarrationOutcome {
	v, err := m.await(ctx, &dedupe.EvaluateGroup, keys.EvaluateKey(runID, attempt, req.Round), func(cctx context.Context) (interface{}, error) {
		return m.narrator.Narrate(cctx, req)
	})
	if err != nil {
		return run.NarrationOutcome{Err: err}
	}
	n, ok := v.(game.Narrative)
	if !ok {
		return run.NarrationOutcome{Err: fmt.Errorf("unexpected narrative type %T", v)}
	}
	return run.NarrationOutcome{Narrative: n}
}
