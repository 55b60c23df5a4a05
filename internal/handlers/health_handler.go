package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakdoczlapie/transit-admin-backend/internal/models"
)

// UpstreamPinger checks that the external transit API answers.
type UpstreamPinger interface {
	Operators(ctx context.Context) ([]models.Operator, error)
}

// HealthHandler reports service liveness and upstream reachability.
type HealthHandler struct {
	pinger UpstreamPinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pinger UpstreamPinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	upstreamStatus := "reachable"
	if _, err := h.pinger.Operators(ctx); err != nil {
		upstreamStatus = "unreachable"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "transit-admin-backend",
		"upstream": upstreamStatus,
	})
}
