package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ericogr/biogenesis/internal/constants"
)

// Routes registers every endpoint on router.
func Routes(router *gin.Engine, h *RunHandler) {
	router.GET(constants.RouteHealth, Health)

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteVersion, Version)
		apiRoutes.GET(constants.RouteSpecies, h.ListSpecies)
		apiRoutes.GET(constants.RouteCombos, h.ListCombos)
		apiRoutes.GET(constants.RouteLeaderboard, h.ListLeaderboard)

		apiRoutes.POST(constants.RouteRuns, h.CreateRun)
		apiRoutes.GET(constants.RouteRunByID, withRunID(h.GetRun))
		apiRoutes.POST(constants.RouteRunBegin, withRunID(h.Begin))
		apiRoutes.POST(constants.RouteRunSpecies, withRunID(h.SelectSpecies))
		apiRoutes.POST(constants.RouteRunCycleSlot, withRunID(h.CycleSlot))
		apiRoutes.GET(constants.RouteRunPrediction, withRunID(h.Prediction))
		apiRoutes.POST(constants.RouteRunCommit, withRunID(h.Commit))
		apiRoutes.POST(constants.RouteRunNext, withRunID(h.NextRound))
		apiRoutes.POST(constants.RouteRunRestart, withRunID(h.Restart))
		apiRoutes.GET(constants.RouteRunSummary, withRunID(h.Summary))
		apiRoutes.GET(constants.RouteRunRecord, withRunID(h.Record))
	}
}
