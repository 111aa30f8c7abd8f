package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tourly/utils"
)

// HealthHandler reports the latest store and redis probe. The store is required; redis only
// degrades caching and reminders.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.Store {
		code = http.StatusServiceUnavailable
		state = "unavailable"
	} else if !status.Redis {
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "checks": status})
}
