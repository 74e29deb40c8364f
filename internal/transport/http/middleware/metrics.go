package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/telemetry"
)

// Metrics records request counts, latencies and in-flight gauge per route.
// The matched route template keeps label cardinality bounded.
func Metrics(provider *telemetry.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		provider.HTTPInFlight.Inc()

		c.Next()

		provider.HTTPInFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		provider.HTTPRequestsTotal.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Inc()
		provider.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}
