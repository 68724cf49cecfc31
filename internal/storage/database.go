package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/logging"
)

// OpenAndMigrate opens the SQLite database, migrates the schema and syncs
// the species catalog from configuration.
func OpenAndMigrate(dataSourceName string, speciesFromConfig []game.Species) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&game.Species{}, &game.RunRecord{}); err != nil {
		return nil, err
	}
	if err := syncSpecies(db, speciesFromConfig); err != nil {
		return nil, err
	}
	return db, nil
}

// syncSpecies upserts every configured species by key. Config is the source
// of truth, so existing rows are overwritten.
func syncSpecies(db *gorm.DB, species []game.Species) error {
	if len(species) == 0 {
		return nil
	}
	rows := make([]game.Species, len(species))
	copy(rows, species)
	for i := range rows {
		rows[i].ID = 0
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "name_en", "description", "initial_sequence", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return err
	}
	logging.Info("species catalog synced", logging.Fields{"count": len(rows)})
	return nil
}
