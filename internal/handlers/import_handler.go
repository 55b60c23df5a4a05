package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jakdoczlapie/transit-admin-backend/pkg/extract"
)

// ImportHandler accepts uploaded timetable files and delegates recognition
// to the extraction service.
type ImportHandler struct {
	extractor   extract.Extractor
	maxFileSize int64
	logger      *logrus.Logger
}

// NewImportHandler creates a new import handler.
func NewImportHandler(extractor extract.Extractor, maxFileSize int64, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{
		extractor:   extractor,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// ImportSchedules handles POST /api/schedules/import
func (h *ImportHandler) ImportSchedules(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	if header.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") && contentType != "application/pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type. Upload an image or a PDF."})
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxFileSize))
	if err != nil {
		h.logger.WithError(err).Error("Failed to read uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	schedules, err := h.extractor.ExtractSchedules(c.Request.Context(), content, header.Filename, contentType)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"filename": header.Filename,
			"size":     header.Size,
			"error":    err.Error(),
		}).Error("Schedule extraction failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Schedule extraction failed",
			"details": err.Error(),
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"filename":  header.Filename,
		"schedules": len(schedules),
	}).Info("Schedules extracted")

	c.JSON(http.StatusOK, gin.H{"data": schedules})
}
