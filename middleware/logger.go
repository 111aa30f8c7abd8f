package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	loggerKey       = "logger"
	requestIDHeader = "X-Request-ID"
)

// ZapLogger attaches a request-scoped logger to the context and logs every completed request.
func ZapLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(requestIDHeader, requestID)

		logger := base.With(
			zap.String("requestId", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		)
		c.Set(loggerKey, logger)

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", getClientIP(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("Request failed", fields...)
		case status >= 400:
			logger.Warn("Request rejected", fields...)
		default:
			logger.Info("Request completed", fields...)
		}
	}
}

// RequestLogger returns the logger ZapLogger attached, or the global logger.
func RequestLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get(loggerKey); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return zap.L()
}
