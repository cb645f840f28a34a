package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/userdeck/userdeck/pkg/logger"
	"github.com/userdeck/userdeck/pkg/metrics"
)

// Observe emits one access-log line and one latency observation per request.
// The histogram is labelled with the route pattern (e.g. /api/users/:id) so
// path parameters do not explode the cardinality; requests that match no
// route fall back to the raw path.
func Observe() gin.HandlerFunc {
	log := logger.WithModule("http")

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.APILatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).
			Observe(elapsed.Seconds())

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", RequestID(c)),
		}
		if id, ok := c.Get(CtxAccountKey); ok {
			if accountID, ok := id.(uint64); ok {
				fields = append(fields, zap.Uint64("account_id", accountID))
			}
		}

		log.Info("request", fields...)
	}
}
