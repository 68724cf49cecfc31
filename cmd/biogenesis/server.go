package main

import (
	"time"

	"github.com/ericogr/biogenesis/internal/logging"
	"github.com/ericogr/biogenesis/internal/service"
)

// startIdleSweeper periodically drops runs nobody touched for maxIdle.
func startIdleSweeper(mgr *service.Manager, maxIdle, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for range ticker.C {
			expired := mgr.ExpireIdleRuns(maxIdle)
			if len(expired) == 0 {
				continue
			}
			logging.Info("expired idle runs", logging.Fields{"count": len(expired), "active": mgr.Count()})
		}
	}()
}
