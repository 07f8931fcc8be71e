package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/storefront_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// untrackedPrefixes are routes PostHog never sees. Sign-in outcomes under
// /api/v1/auth are reported by the auth orchestrator itself.
var untrackedPrefixes = []string{"/health", "/metrics", "/swagger", "/api/v1/auth"}

// PosthogMiddleware reports successful authenticated API calls as
// "api_request" events keyed by the session's user id.
func PosthogMiddleware(client *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if !client.IsInitialized() {
			return
		}
		route := c.FullPath()
		if route == "" || isUntracked(route) {
			return
		}
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			return
		}
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}

		client.Enqueue(userID, "api_request", map[string]any{
			"route":  route,
			"method": c.Request.Method,
			"status": c.Writer.Status(),
		})
	}
}

func isUntracked(route string) bool {
	for _, p := range untrackedPrefixes {
		if strings.HasPrefix(route, p) {
			return true
		}
	}
	return false
}
