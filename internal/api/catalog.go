package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/biogenesis/internal/constants"
	"github.com/ericogr/biogenesis/internal/engine"
)

// ListSpecies returns the starting templates.
func (h *RunHandler) ListSpecies(c *gin.Context) {
	species, err := h.catalog.GetSpecies()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchSpecies})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(species)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchSpecies})
		return
	}
	c.JSON(http.StatusOK, out)
}

// ListCombos returns the fixed combo catalog.
func (h *RunHandler) ListCombos(c *gin.Context) {
	c.JSON(http.StatusOK, engine.Combos())
}

// ListLeaderboard returns the best finished runs by score.
func (h *RunHandler) ListLeaderboard(c *gin.Context) {
	// optional ?limit=N
	limit := h.leaderboardLimit
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	recs, err := h.catalog.GetTopRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLeaderboard})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(recs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchLeaderboard})
		return
	}
	c.JSON(http.StatusOK, out)
}

// Record returns the stored result of one finished attempt of a run
// (?attempt=N, default 0). It is served from storage, so it outlives the
// in-memory run.
func (h *RunHandler) Record(c *gin.Context, id string) {
	attempt := 0
	if s := c.Query("attempt"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidAttempt})
			return
		}
		attempt = n
	}
	rec, err := h.catalog.GetRunRecord(id, attempt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchRecord})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrRecordNotFound})
		return
	}
	out, err := MarshalIntoSnakeTimestamps(rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchRecord})
		return
	}
	c.JSON(http.StatusOK, out)
}
