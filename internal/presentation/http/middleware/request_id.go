package middleware

import (
	"context"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

// RequestIDHeader correlates a request across logs
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags each request with a ULID and logs its outcome
func RequestIDMiddleware(logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = security.GenerateULID()
		}
		c.Set("requestId", requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logging.RequestIDKey, requestID))
		c.Header(RequestIDHeader, requestID)

		c.Next()

		logger.WithContext(logging.ChannelHTTP, c.Request.Context()).Debug("Request completed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
