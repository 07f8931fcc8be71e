package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	portssvc "github.com/SscSPs/storefront_backend/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware creates a Gin middleware handler that validates session tokens.
// Invalid, expired or malformed tokens are treated as unauthenticated.
func AuthMiddleware(sessions portssvc.SessionIssuerSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			abortUnauthorized(c, "Authorization header required.")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			abortUnauthorized(c, "Authorization header format must be Bearer {token}.")
			return
		}

		claims := sessions.Verify(parts[1])
		if !claims.Valid || claims.Subject == "" {
			logger.Warn("Invalid session token")
			abortUnauthorized(c, "Invalid or expired session.")
			return
		}

		// Store the user ID in the context (using standard context)
		ctx := context.WithValue(c.Request.Context(), userIDKey, claims.Subject)

		// Add user ID to the logger
		enrichedLogger := logger.With(slog.String("user_id", claims.Subject))
		c.Request = c.Request.WithContext(WithLogger(ctx, enrichedLogger))
		c.Set(string(userIDKey), claims.Subject)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	appErr := apperrors.NewUnauthorizedError(msg)
	c.AbortWithStatusJSON(appErr.Code, appErr)
}
