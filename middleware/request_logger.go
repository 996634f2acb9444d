package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one structured log line per request after the
// handler chain finishes, so the client identity set by AuthMiddleware
// is included when present.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()

		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
			"request_id", GetRequestID(c),
		}

		if clientID := GetClientID(c); clientID != "" {
			attrs = append(attrs, "client_id", clientID)
		}
		if query != "" {
			attrs = append(attrs, "query", query)
		}

		switch {
		case status >= 500:
			slog.Error("request handled", attrs...)
		case status >= 400:
			slog.Warn("request handled", attrs...)
		default:
			slog.Info("request handled", attrs...)
		}
	}
}
