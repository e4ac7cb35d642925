package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
)

// unmatchedRoute labels requests that hit no route, keeping label
// cardinality bounded.
const unmatchedRoute = "unmatched"

// Metrics records request count, latency and in-flight gauge on m. The
// scrape endpoint itself is not recorded.
func Metrics(m *telemetry.HTTPMetrics, metricsPath string) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if c.Request.URL.Path == metricsPath {
			c.Next()
			return
		}

		m.IncInFlight()
		defer m.DecInFlight()

		start := time.Now()
		c.Next()

		m.RecordHTTPRequest(c.Request.Method, routeLabel(c), c.Writer.Status(), time.Since(start))
	}
}

// MetricsHandler serves the Prometheus registry
func MetricsHandler(m *telemetry.HTTPMetrics) gin.HandlerFunc {
	return gin.WrapH(m.Handler())
}

func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
