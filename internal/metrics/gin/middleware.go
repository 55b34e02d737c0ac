package gin

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/academia-moderation/internal/metrics"
)

// PrometheusMiddleware records request counts and latencies per route.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusCode := strconv.Itoa(c.Writer.Status())
		metrics.RecordRequest("http", c.Request.Method+" "+path, statusCode, time.Since(start))
	}
}
