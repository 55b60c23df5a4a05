package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mssola/user_agent"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs every request with its outcome. Mutating requests
// additionally record the submitting client's device, for auditing report
// submissions and schedule imports.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"client_ip":  c.ClientIP(),
			"request_id": GetRequestID(c),
		}

		if c.Request.Method != "GET" && c.Request.Method != "HEAD" {
			ua := user_agent.New(c.Request.UserAgent())
			browser, version := ua.Browser()
			fields["browser"] = browser
			fields["browser_version"] = version
			fields["os"] = ua.OS()
			fields["mobile"] = ua.Mobile()
		}

		entry := logger.WithFields(fields)
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("Request failed")
		case c.Writer.Status() >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request completed")
		}
	}
}
