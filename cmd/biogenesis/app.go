package main

import (
	"context"
	"time"

	"github.com/ericogr/biogenesis/internal/config"
	"github.com/ericogr/biogenesis/internal/constants"
	"github.com/ericogr/biogenesis/internal/envgen"
	"github.com/ericogr/biogenesis/internal/gemini"
	"github.com/ericogr/biogenesis/internal/history"
	"github.com/ericogr/biogenesis/internal/logging"
	"github.com/ericogr/biogenesis/internal/narrator"
	"github.com/ericogr/biogenesis/internal/run"
	"github.com/ericogr/biogenesis/internal/storage"
)

func loadConfigOrExit(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		logging.Fatal("Missing or invalid biogenesis configuration", err, logging.Fields{
			"config_path": path,
			"hint":        "a YAML file overlaying the defaults: server, database, rules, collaborators, sessions, history, leaderboard, species[key,name,initial_sequence]",
		})
	}
	return cfg
}

func createRepositoryOrExit(dbPath string, cfg *config.Config) storage.Repository {
	db, err := storage.OpenAndMigrate(dbPath, cfg.Species)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, logging.Fields{"db_path": dbPath})
	}
	return storage.NewSQLiteRepository(db)
}

func openHistoryOrExit(path string) *history.Recorder {
	rec, err := history.OpenFile(path)
	if err != nil {
		logging.Fatal("Failed to open round history", err, logging.Fields{"history_path": path})
	}
	return rec
}

// buildCollaborators returns the Gemini-backed generator and narrator, or
// the offline pair when configured or when no credentials are available.
func buildCollaborators(cfg *config.Config) (run.EnvironmentGenerator, run.Narrator) {
	if cfg.Collaborators.Offline {
		logging.Info("collaborators running offline", nil)
		return envgen.NewProcedural(time.Now().UnixNano()), narrator.Offline{}
	}
	client, err := gemini.NewFromEnv(context.Background(),
		gemini.WithBaseURL(cfg.Collaborators.BaseURL),
		gemini.WithModel(cfg.Collaborators.Model))
	if err != nil {
		logging.Error("no Gemini credentials, falling back to offline collaborators", err, nil)
		return envgen.NewProcedural(time.Now().UnixNano()), narrator.Offline{}
	}
	logging.Info("collaborators using Gemini", logging.Fields{constants.LogFieldModel: client.Model()})

	gen := envgen.New(client,
		envgen.WithPromptTemplate(cfg.Collaborators.EnvironmentPrompt),
		envgen.WithLanguage(cfg.Collaborators.Language))
	nar := narrator.New(client,
		narrator.WithPromptTemplate(cfg.Collaborators.NarrationPrompt),
		narrator.WithLanguage(cfg.Collaborators.Language))
	return gen, nar
}
