package handler

import (
	"context"
	"net/http"
	"time"

	"clinic-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// HealthCheck returns a deep health handler that pings every registered dependency.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(checkers))
		for _, hc := range checkers {
			if err := hc.Ping(ctx); err != nil {
				checks[hc.Name()] = "unhealthy: " + err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[hc.Name()] = "healthy"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		c.JSON(status, gin.H{"status": overall, "checks": checks})
	}
}
