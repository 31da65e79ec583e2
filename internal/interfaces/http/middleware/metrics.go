package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"wtyczki.backend/pkg/metrics"
)

// MetricsMiddleware records one counter increment per served request,
// labelled by the route template so path parameters don't explode the
// cardinality
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
