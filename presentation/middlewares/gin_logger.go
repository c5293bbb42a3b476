package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hilthontt/ephemera/infrastructure/logger"
	"go.uber.org/zap"
)

// GinLogger logs one line per request. The query string is left out because
// it carries room ids.
func GinLogger(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()),
		}

		switch {
		case len(c.Errors) > 0:
			logger.Error("Request error", append(fields, zap.String("errors", c.Errors.String()))...)
		case status >= 500:
			logger.Error("Request", fields...)
		case status >= 400:
			logger.Warn("Request", fields...)
		default:
			logger.Info("Request", fields...)
		}
	}
}
