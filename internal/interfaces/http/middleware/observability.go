package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pulsemetrics/analytics-api/internal/infrastructure/monitoring"
	"github.com/pulsemetrics/analytics-api/pkg/constants"
	"github.com/pulsemetrics/analytics-api/pkg/errors"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

// RequestID assigns a correlation identifier to each request, honoring one
// supplied by the caller, and propagates it through the request context and
// the response headers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(constants.HeaderRequestID, requestID)

		c.Next()
	}
}

// Logging logs each completed request and records its metrics.
func Logging(log logger.Logger, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		metrics.RecordRequest(route, c.Request.Method, strconv.Itoa(status), duration)

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("route", route),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", status),
			logger.String("client_ip", c.ClientIP()),
			logger.Duration("duration", duration),
		}
		if last := c.Errors.Last(); last != nil && errors.IsQuotaExceeded(last.Err) {
			fields = append(fields, logger.Bool("rate_limited", true))
		}

		log.Info(c.Request.Context(), "request completed", fields...)
	}
}

// Recovery converts panics in handlers into logged 500 responses.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error(c.Request.Context(), "panic recovered", nil,
					logger.String("route", c.FullPath()),
					logger.Any("panic", r),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":             string(errors.CodeServerError),
					"error_description": "An unexpected error occurred",
				})
			}
		}()
		c.Next()
	}
}
