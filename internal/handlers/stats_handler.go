package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jakdoczlapie/transit-admin-backend/internal/models"
	"github.com/jakdoczlapie/transit-admin-backend/internal/selection"
)

// OperatorSource is the slice of the upstream client the dashboard needs.
type OperatorSource interface {
	OperatorData(ctx context.Context, name string) ([]models.Route, error)
}

// StatsHandler serves the dashboard stat cards.
type StatsHandler struct {
	source OperatorSource
	store  *selection.Store
	logger *logrus.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(source OperatorSource, store *selection.Store, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{
		source: source,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// StatsResponse aggregates one operator's routes and reports into the
// dashboard totals.
type StatsResponse struct {
	Operator     OperatorStats `json:"operator"`
	TotalReports int                `json:"total_reports"`
	ReportsToday int                `json:"reports_today"`
	BySeverity   SeverityCounts     `json:"reports_by_severity"`
}

// OperatorStats counts one operator's routes by display type.
type OperatorStats struct {
	Name        string `json:"name"`
	TotalRoutes int    `json:"total_routes"`
	BusRoutes   int    `json:"bus_routes"`
	TrainRoutes int    `json:"train_routes"`
	TramRoutes  int    `json:"tram_routes"`
}

// SeverityCounts breaks the report total down by display severity.
type SeverityCounts struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}

// GetStats handles GET /api/dashboard/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	operator := c.Query("operator")
	if operator == "" {
		operator = h.store.State().Active
	}
	if operator == "" {
		operator = selection.DefaultOperator
	}

	routes, err := h.source.OperatorData(c.Request.Context(), operator)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch operator data for stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statistics"})
		return
	}

	c.JSON(http.StatusOK, h.buildStats(operator, routes))
}

func (h *StatsHandler) buildStats(operator string, routes []models.Route) StatsResponse {
	stats := StatsResponse{
		Operator: OperatorStats{Name: operator},
	}
	today := h.now().UTC().Format("2006-01-02")

	for _, route := range routes {
		stats.Operator.TotalRoutes++
		switch route.DisplayType() {
		case models.RouteTypeBus:
			stats.Operator.BusRoutes++
		case models.RouteTypeTrain:
			stats.Operator.TrainRoutes++
		case models.RouteTypeTram:
			stats.Operator.TramRoutes++
		}

		for _, report := range route.Reports {
			stats.TotalReports++
			if strings.HasPrefix(report.CreatedAt, today) {
				stats.ReportsToday++
			}
			switch models.ReportSeverity(report.Type) {
			case models.SeverityCritical:
				stats.BySeverity.Critical++
			case models.SeverityWarning:
				stats.BySeverity.Warning++
			default:
				stats.BySeverity.Info++
			}
		}
	}

	return stats
}
