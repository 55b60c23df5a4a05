package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jakdoczlapie/transit-admin-backend/internal/services"
)

// LiveHandler serves the poller's tracking and report snapshots.
type LiveHandler struct {
	tracker *services.LiveTracker
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(tracker *services.LiveTracker) *LiveHandler {
	return &LiveHandler{tracker: tracker}
}

// GetTracks handles GET /api/live/tracks
func (h *LiveHandler) GetTracks(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Tracks())
}

// GetReports handles GET /api/live/reports
func (h *LiveHandler) GetReports(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Reports())
}
