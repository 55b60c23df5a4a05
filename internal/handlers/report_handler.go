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
	"github.com/jakdoczlapie/transit-admin-backend/internal/upstream"
)

// ReportAPI is the slice of the upstream client the report views need.
type ReportAPI interface {
	OperatorData(ctx context.Context, name string) ([]models.Route, error)
	CreateReport(ctx context.Context, routeID int64, input models.CreateReportInput, authorization string) (*models.Report, error)
	DeleteReport(ctx context.Context, id int64, authorization string) error
}

// ReportHandler serves the report feed and forwards report mutations.
type ReportHandler struct {
	api    ReportAPI
	cache  *services.ViewCache
	logger *logrus.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(api ReportAPI, cache *services.ViewCache, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		api:    api,
		cache:  cache,
		logger: logger,
	}
}

// GetFeed handles GET /api/operators/:name/reports/feed
func (h *ReportHandler) GetFeed(c *gin.Context) {
	operator := c.Param("name")

	cacheKey := services.Key("reports", operator)
	if cached, ok := h.cache.Get(cacheKey); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	routes, err := h.api.OperatorData(c.Request.Context(), operator)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Operator not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch operator reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reports"})
		return
	}

	payload := gin.H{
		"operator": operator,
		"reports":  services.ReportFeed(operator, routes),
	}
	h.cache.Set(cacheKey, payload)
	c.JSON(http.StatusOK, payload)
}

// CreateReport handles POST /api/routes/:id/reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	routeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid route ID"})
		return
	}

	var input models.CreateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid report",
			"details": err.Error(),
		})
		return
	}

	report, err := h.api.CreateReport(c.Request.Context(), routeID, input, c.GetHeader("Authorization"))
	if err != nil {
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) {
			// The upstream rejection is the authoritative answer.
			c.Data(statusErr.StatusCode, "application/json", statusErr.Body)
			return
		}
		if errors.Is(err, upstream.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to submit report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit report"})
		return
	}

	h.invalidateViews()
	h.logger.WithFields(logrus.Fields{
		"route_id":  routeID,
		"report_id": report.ID,
		"type":      report.Type,
	}).Info("Report submitted")

	c.JSON(http.StatusCreated, report)
}

// DeleteReport handles DELETE /api/reports/:id
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report ID"})
		return
	}

	if err := h.api.DeleteReport(c.Request.Context(), id, c.GetHeader("Authorization")); err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
			return
		}
		var statusErr *upstream.StatusError
		if errors.As(err, &statusErr) {
			c.Data(statusErr.StatusCode, "application/json", statusErr.Body)
			return
		}
		h.logger.WithError(err).Error("Failed to delete report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
		return
	}

	h.invalidateViews()
	h.logger.WithField("report_id", id).Info("Report deleted")

	c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully"})
}

// invalidateViews drops every cached view that embeds reports. The route a
// deleted report belonged to is unknown here, so both families go.
func (h *ReportHandler) invalidateViews() {
	h.cache.InvalidatePrefix("reports")
	h.cache.InvalidatePrefix("timetable")
}
