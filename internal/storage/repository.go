package storage

import "github.com/ericogr/biogenesis/internal/game"

type Repository interface {
	// GetSpecies lists the configured catalog ordered by key.
	GetSpecies() ([]game.Species, error)
	// GetSpeciesByKey returns nil, nil when no species has the key.
	GetSpeciesByKey(key string) (*game.Species, error)
	SaveRunRecord(rec *game.RunRecord) error
	GetRunRecord(runID string, attempt int) (*game.RunRecord, error)
	// GetTopRuns returns the best finished runs ordered by score desc,
	// then fewer rounds, then earliest finish.
	GetTopRuns(limit int) ([]game.RunRecord, error)
}
