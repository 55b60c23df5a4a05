package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jakdoczlapie/transit-admin-backend/internal/selection"
)

// PreferencesHandler exposes the operator selection state.
type PreferencesHandler struct {
	store  *selection.Store
	logger *logrus.Logger
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(store *selection.Store, logger *logrus.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		store:  store,
		logger: logger,
	}
}

// GetOperators handles GET /api/preferences/operators
func (h *PreferencesHandler) GetOperators(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.State())
}

type setActiveInput struct {
	// A null operator clears the active selection.
	Operator *string `json:"operator"`
}

// SetActive handles PUT /api/preferences/operators/active
func (h *PreferencesHandler) SetActive(c *gin.Context) {
	var input setActiveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	operator := ""
	if input.Operator != nil {
		operator = *input.Operator
	}

	if err := h.store.SetActive(operator); err != nil {
		h.logger.WithError(err).Error("Failed to update active operator")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save selection"})
		return
	}

	c.JSON(http.StatusOK, h.store.State())
}

type toggleComparisonInput struct {
	Operator string `json:"operator" binding:"required"`
}

// ToggleComparison handles POST /api/preferences/operators/comparison/toggle
func (h *PreferencesHandler) ToggleComparison(c *gin.Context) {
	var input toggleComparisonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Operator is required"})
		return
	}

	if err := h.store.ToggleComparison(input.Operator); err != nil {
		h.logger.WithError(err).Error("Failed to toggle comparison operator")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save selection"})
		return
	}

	c.JSON(http.StatusOK, h.store.State())
}
