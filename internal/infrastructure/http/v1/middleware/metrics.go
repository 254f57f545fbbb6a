package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"velora/pkg/metrics"
)

// Metrics records request count and latency. Uses the route template
// (c.FullPath) as the path label so ids don't explode cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path, status).
			Observe(time.Since(start).Seconds())
	}
}
