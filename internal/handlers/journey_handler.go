package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jakdoczlapie/transit-admin-backend/internal/gateway"
	"github.com/jakdoczlapie/transit-admin-backend/internal/journey"
	"github.com/jakdoczlapie/transit-admin-backend/internal/models"
)

// JourneySearcher is the slice of the upstream client the journey view needs.
type JourneySearcher interface {
	SearchJourneys(ctx context.Context, filter gateway.RoutesFilter) ([]models.JourneySearchResult, error)
}

// JourneyHandler serves delay-adjusted journey options.
type JourneyHandler struct {
	searcher JourneySearcher
	logger   *logrus.Logger
}

// NewJourneyHandler creates a new journey handler.
func NewJourneyHandler(searcher JourneySearcher, logger *logrus.Logger) *JourneyHandler {
	return &JourneyHandler{
		searcher: searcher,
		logger:   logger,
	}
}

type journeyQuery struct {
	FromLatitude   *float64 `form:"fromLatitude" binding:"required"`
	FromLongitude  *float64 `form:"fromLongitude" binding:"required"`
	ToLatitude     *float64 `form:"toLatitude" binding:"required"`
	ToLongitude    *float64 `form:"toLongitude" binding:"required"`
	Radius         *int     `form:"radius"`
	TransferRadius *int     `form:"transferRadius"`
	MaxTransfers   *int     `form:"maxTransfers"`
}

// Search handles GET /api/journeys
func (h *JourneyHandler) Search(c *gin.Context) {
	var query journeyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid journey query",
			"details": err.Error(),
		})
		return
	}

	results, err := h.searcher.SearchJourneys(c.Request.Context(), gateway.RoutesFilter{
		FromLatitude:   query.FromLatitude,
		FromLongitude:  query.FromLongitude,
		ToLatitude:     query.ToLatitude,
		ToLongitude:    query.ToLongitude,
		Radius:         query.Radius,
		TransferRadius: query.TransferRadius,
		MaxTransfers:   query.MaxTransfers,
	})
	if err != nil {
		h.logger.WithError(err).Error("Journey search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search journeys"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"options": journey.PresentAll(results)})
}
