package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
)

// SysopAuthMiddleware guards operator routes with a bearer password.
// With no password configured the routes stay closed.
func SysopAuthMiddleware(password string, logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if password == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		token := ""
		if len(authHeader) > 7 && strings.HasPrefix(authHeader, "Bearer ") {
			token = authHeader[7:]
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(password)) != 1 {
			logger.Auth().Warn("Rejected sysop request", "path", c.Request.URL.Path, "clientIP", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}
