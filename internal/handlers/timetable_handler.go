package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jakdoczlapie/transit-admin-backend/internal/models"
	"github.com/jakdoczlapie/transit-admin-backend/internal/services"
	"github.com/jakdoczlapie/transit-admin-backend/internal/timetable"
	"github.com/jakdoczlapie/transit-admin-backend/internal/upstream"
)

// RouteSource is the slice of the upstream client the timetable views need.
type RouteSource interface {
	RouteByID(ctx context.Context, id int64, destination string) (*models.Route, error)
}

// TimetableHandler serves the schedule matrix views for a route.
type TimetableHandler struct {
	source RouteSource
	cache  *services.ViewCache
	logger *logrus.Logger
}

// NewTimetableHandler creates a new timetable handler.
func NewTimetableHandler(source RouteSource, cache *services.ViewCache, logger *logrus.Logger) *TimetableHandler {
	return &TimetableHandler{
		source: source,
		cache:  cache,
		logger: logger,
	}
}

// TimetableResponse is the matrix payload for the timetable page.
type TimetableResponse struct {
	RouteID       int64                        `json:"route_id"`
	RouteName     string                       `json:"route_name"`
	RouteType     string                       `json:"route_type"`
	Runs          []int                        `json:"runs"`
	StopSchedules map[int64]map[int]models.Schedule `json:"stop_schedules"`
	Stops         []models.Stop                `json:"stops"`
	Destinations  []timetable.DestinationGroup `json:"destinations"`
}

// GetTimetable handles GET /api/routes/:id/timetable
func (h *TimetableHandler) GetTimetable(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}
	destination := c.Query("destination")

	cacheKey := services.Key("timetable", c.Param("id"), destination)
	if cached, ok := h.cache.Get(cacheKey); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	route, err := h.source.RouteByID(c.Request.Context(), id, destination)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch route for timetable")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch route"})
		return
	}

	matrix := timetable.BuildMatrix(route.Stops)
	response := TimetableResponse{
		RouteID:       route.ID,
		RouteName:     route.Name,
		RouteType:     route.DisplayType(),
		Runs:          matrix.Runs,
		StopSchedules: matrix.StopSchedules,
		Stops:         route.Stops,
		Destinations:  timetable.BuildDestinationGroups(route.Stops),
	}

	h.cache.Set(cacheKey, response)
	c.JSON(http.StatusOK, response)
}

// GetRuns handles GET /api/routes/:id/runs
func (h *TimetableHandler) GetRuns(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	route, err := h.source.RouteByID(c.Request.Context(), id, "")
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch route for run list")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch route"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": timetable.Runs(route.Stops)})
}
