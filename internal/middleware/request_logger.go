package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sannchesda/hotel-reservation-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// RequestLogger emits one structured log line per request, including the
// parsed client device info and latency
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		client := utils.ParseUserAgent(c.Request.UserAgent())
		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"latency_ms":  time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
			"device_type": client.DeviceType,
			"os":          client.OS,
			"browser":     client.Browser,
		}).Info("Request completed")
	}
}
