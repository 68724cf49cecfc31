package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/keys"
)

// DefaultLeaderboardLimit applies when a non-positive limit is requested.
const DefaultLeaderboardLimit = 10

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) GetSpecies() ([]game.Species, error) {
	var species []game.Species
	if err := r.db.Order("`key` ASC").Find(&species).Error; err != nil {
		return nil, err
	}
	return species, nil
}

func (r *sqliteRepository) GetSpeciesByKey(key string) (*game.Species, error) {
	var sp game.Species
	err := r.db.Where("`key` = ?", keys.SpeciesKey(key)).First(&sp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (r *sqliteRepository) SaveRunRecord(rec *game.RunRecord) error {
	return r.db.Create(rec).Error
}

func (r *sqliteRepository) GetRunRecord(runID string, attempt int) (*game.RunRecord, error) {
	var rec game.RunRecord
	err := r.db.Where("run_id = ? AND attempt = ?", runID, attempt).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *sqliteRepository) GetTopRuns(limit int) ([]game.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	var recs []game.RunRecord
	if err := r.db.Model(&game.RunRecord{}).
		Order("score DESC").
		Order("rounds ASC").
		Order("finished_at ASC").
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
