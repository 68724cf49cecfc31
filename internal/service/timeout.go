package service

import (
	"time"

	"github.com/ericogr/biogenesis/internal/constants"
	"github.com/ericogr/biogenesis/internal/logging"
)

// ExpireIdleRuns drops runs with no activity for maxIdle.
// Behavior:
// - runs waiting on a collaborator are kept; the call will finish them
// - a finished run that was never recorded is recorded before it is dropped
// It returns the ids that were removed.
func (m *Manager) ExpireIdleRuns(maxIdle time.Duration) []string {
	cutoff := m.now().Add(-maxIdle)

	m.mu.RLock()
	candidates := make([]*session, 0)
	for _, s := range m.sessions {
		candidates = append(candidates, s)
	}
	m.mu.RUnlock()

	var expired []string
	for _, s := range candidates {
		s.mu.Lock()
		idle := s.lastActive.Before(cutoff)
		st := s.machine.Snapshot()
		if idle && !st.Phase.Transient() {
			if st.Phase.Terminal() && !s.recorded {
				if err := m.repo.SaveRunRecord(newRunRecord(s.id, s.attempt, st, m.now())); err != nil {
					logging.Error("failed to save expiring run record", err, logging.Fields{constants.LogFieldRunID: s.id})
				} else {
					s.recorded = true
				}
			}
			expired = append(expired, s.id)
		}
		s.mu.Unlock()
	}

	if len(expired) == 0 {
		return nil
	}
	m.mu.Lock()
	for _, id := range expired {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	return expired
}
