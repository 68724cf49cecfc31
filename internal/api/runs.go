package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/biogenesis/internal/constants"
)

type SelectSpeciesRequest struct {
	SpeciesKey string `json:"species_key" binding:"required"`
}

// CreateRun opens a new run on the intro screen.
func (h *RunHandler) CreateRun(c *gin.Context) {
	id, st := h.runs.CreateRun()
	c.JSON(http.StatusCreated, gin.H{"run_id": id, "state": st})
}

// withRunID validates the run ID path parameter before calling next.
func withRunID(next func(c *gin.Context, id string)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := runIDParam(c)
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRunID})
			return
		}
		next(c, id)
	}
}

// GetRun returns the state of a run.
func (h *RunHandler) GetRun(c *gin.Context, id string) {
	st, err := h.runs.GetRun(id)
	if err != nil {
		writeRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Begin leaves the intro screen.
func (h *RunHandler) Begin(c *gin.Context, id string) {
	st, err := h.runs.Begin(id)
	if err != nil {
		writeRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// SelectSpecies picks the starting template and scans the first environment.
func (h *RunHandler) SelectSpecies(c *gin.Context, id string) {
	var req SelectSpeciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	st, err := h.runs.SelectSpecies(c.Request.Context(), id, req.SpeciesKey)
	if err != nil {
		writeRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// CycleSlot advances one base of the working sequence.
func (h *RunHandler) CycleSlot(c *gin.Context, id string) {
	index, ok := slotIndexParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidSlotIndex})
		return
	}
	st, err := h.runs.CycleSlot(id, index)
	if err != nil {
		writeRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Prediction returns the live damage readout for the working sequence.
func (h *RunHandler) Prediction(c *gin.Context, id string) {
	p, err := h.runs.Prediction(id)
	if err != nil {
		writeRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Commit resolves the round with the working sequence.
func (h *RunHandler) Commit(c *gin.Context, id string) {
	res, st, err := h.runs.Commit(c.Request.Context(), id)
	if err != nil {
		writeRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res, "state": st})
}

// NextRound advances a survived run to the next environment.
func (h *RunHandler) NextRound(c *gin.Context, id string) {
	st, err := h.runs.NextRound(c.Request.Context(), id)
	if err != nil {
		writeRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Restart discards the attempt and returns to the intro screen.
func (h *RunHandler) Restart(c *gin.Context, id string) {
	st, err := h.runs.Restart(id)
	if err != nil {
		writeRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// Summary returns the run state with damage statistics over its rounds.
func (h *RunHandler) Summary(c *gin.Context, id string) {
	sum, err := h.runs.Summary(id)
	if err != nil {
		writeRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
