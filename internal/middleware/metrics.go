package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"turfbook/internal/metrics"
)

// Metrics records request count and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequests.WithLabelValues(path, c.Request.Method, status).Inc()
		metrics.RequestDuration.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
