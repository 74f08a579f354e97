package handlers

import (
	"net/http"

	"lawdesk/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last dependency health snapshot. Before the first
// check completes the server reports ok.
func HealthHandler(c *gin.Context) {
	h := utils.GetHealthStatus()
	healthy := h.Mongo
	for _, ok := range h.Redis {
		healthy = healthy && ok
	}
	if h.CheckedAt.IsZero() || healthy {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": h})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": h})
}
