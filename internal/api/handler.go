package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/biogenesis/internal/constants"
	"github.com/ericogr/biogenesis/internal/engine"
	"github.com/ericogr/biogenesis/internal/game"
	"github.com/ericogr/biogenesis/internal/run"
	"github.com/ericogr/biogenesis/internal/service"
)

// Catalog is the read side of storage the handlers need.
type Catalog interface {
	GetSpecies() ([]game.Species, error)
	GetTopRuns(limit int) ([]game.RunRecord, error)
	GetRunRecord(runID string, attempt int) (*game.RunRecord, error)
}

// RunHandler groups all run-related HTTP handlers.
type RunHandler struct {
	runs             *service.Manager
	catalog          Catalog
	leaderboardLimit int
}

// NewRunHandler creates a RunHandler. leaderboardLimit is the default size
// of the leaderboard when the client sends no limit.
func NewRunHandler(runs *service.Manager, catalog Catalog, leaderboardLimit int) *RunHandler {
	if leaderboardLimit <= 0 {
		leaderboardLimit = 10
	}
	return &RunHandler{runs: runs, catalog: catalog, leaderboardLimit: leaderboardLimit}
}

// writeRunError maps service and state machine errors to HTTP responses.
func writeRunError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRunNotFound):
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrRunNotFound})
	case errors.Is(err, service.ErrSpeciesNotFound):
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrSpeciesNotFound})
	case errors.Is(err, run.ErrActionsLocked):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrActionsLocked})
	case errors.Is(err, run.ErrInvalidPhase):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrInvalidPhase})
	case errors.Is(err, engine.ErrMutationBudgetExceeded):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrMutationBudget})
	case errors.Is(err, engine.ErrSlotOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrSlotOutOfRange})
	case errors.Is(err, run.ErrInvalidSpecies):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest, constants.JSONKeyDetails: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: err.Error()})
	}
}
