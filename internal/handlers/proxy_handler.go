package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProxyHandler relays /api/v1/* requests to the external transit API
// unchanged, so the dashboard stays same-origin. Stateless, no retries: an
// upstream error belongs to the caller.
type ProxyHandler struct {
	upstreamBase string
	client       *http.Client
	logger       *logrus.Logger
}

// NewProxyHandler creates a proxy against the given upstream base URL
// (including the /api/v1 suffix).
func NewProxyHandler(upstreamBase string, timeout time.Duration, logger *logrus.Logger) *ProxyHandler {
	return &ProxyHandler{
		upstreamBase: strings.TrimSuffix(upstreamBase, "/"),
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// Proxy handles ANY /api/v1/*path. The method, subpath and query string are
// forwarded as-is; the request body is forwarded for non-GET/HEAD methods.
// Authorization is the only inbound header relayed.
func (h *ProxyHandler) Proxy(c *gin.Context) {
	target := h.upstreamBase + c.Param("path")
	if c.Request.URL.RawQuery != "" {
		target += "?" + c.Request.URL.RawQuery
	}

	var body io.Reader
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		body = c.Request.Body
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, body)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build proxy request")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Proxy error"})
		return
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization := c.GetHeader("Authorization"); authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Param("path"),
			"error":  err.Error(),
		}).Error("Proxy request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Proxy error"})
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read upstream response")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Proxy error"})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var payload interface{}
		if err := json.Unmarshal(respBody, &payload); err == nil {
			c.JSON(resp.StatusCode, payload)
			return
		}
	}
	if contentType == "" {
		contentType = "text/plain"
	}
	c.Data(resp.StatusCode, contentType, respBody)
}
