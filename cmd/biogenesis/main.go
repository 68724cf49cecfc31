package main

import (
	"flag"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/biogenesis/internal/api"
	"github.com/ericogr/biogenesis/internal/constants"
	"github.com/ericogr/biogenesis/internal/logging"
	"github.com/ericogr/biogenesis/internal/service"
)

func main() {
	// Configuration path may be provided via -config or BIOGENESIS_CONFIG;
	// without either the embedded defaults are used.
	configPath := flag.String("config", os.Getenv(constants.EnvConfigPath), "YAML config overlaying the defaults")
	flag.Parse()
	cfg := loadConfigOrExit(*configPath)
	cfg.ApplyEnv(os.Getenv)
	if !logging.SetLevel(cfg.Log.Level) {
		logging.Error("unknown log level, keeping info", nil, logging.Fields{"level": cfg.Log.Level})
	}
	defer logging.Sync()

	repo := createRepositoryOrExit(cfg.Database.Path, cfg)
	envgen, narrator := buildCollaborators(cfg)

	opts := []service.Option{service.WithTimeout(cfg.Collaborators.Timeout)}
	if cfg.History.Path != "" {
		rec := openHistoryOrExit(cfg.History.Path)
		defer rec.Close()
		opts = append(opts, service.WithRoundRecorder(rec))
	}
	mgr := service.NewManager(repo, envgen, narrator, cfg.Rules, opts...)

	startIdleSweeper(mgr, cfg.Sessions.IdleTimeout, cfg.Sessions.SweepInterval)

	router := gin.Default()
	api.Routes(router, api.NewRunHandler(mgr, repo, cfg.Leaderboard.Limit))

	addr := cfg.Server.Address
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}
