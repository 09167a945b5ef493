package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ServiceName identifies this service in health replies and logs
const ServiceName = "lineup-optimizer"

// HealthHandler handles health check endpoints. The service keeps no
// external connections, so readiness only reports the active rules.
type HealthHandler struct {
	checks map[string]string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checks map[string]string) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// GetHealth returns the basic health status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthStatus{
		Status:    "ok",
		Service:   ServiceName,
		Timestamp: time.Now(),
	})
}

// GetReady returns the readiness status
func (h *HealthHandler) GetReady(c *gin.Context) {
	c.JSON(http.StatusOK, HealthStatus{
		Status:    "ready",
		Service:   ServiceName,
		Timestamp: time.Now(),
		Checks:    h.checks,
	})
}
