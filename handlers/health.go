package handlers

import (
	"net/http"

	"roombooking/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the latest dependency snapshot.
type HealthHandler struct {
	Monitor *utils.HealthMonitor
}

func (h *HealthHandler) Health(c *gin.Context) {
	if h.Monitor == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	c.JSON(http.StatusOK, h.Monitor.Status())
}
