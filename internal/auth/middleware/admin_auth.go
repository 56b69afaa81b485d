package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/casadecor/portfolio-backend/internal/auth/service"
)

// AdminAuth guards the admin routes with a Bearer token issued by the auth
// service.
func AdminAuth(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		if err := auth.Verify(token); err != nil {
			if errors.Is(err, service.ErrNotConfigured) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "admin access is not configured"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			}
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
