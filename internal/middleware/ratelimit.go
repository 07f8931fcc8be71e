package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// RateLimit throttles sign-in style endpoints per client IP and route, so a
// burst against /auth/signin does not consume the /auth/register budget.
func RateLimit(l *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP() + "|" + c.FullPath()

		lctx, err := l.Get(c.Request.Context(), key)
		if err != nil {
			// Fail open: an unavailable limiter store must not lock users out.
			GetLoggerFromCtx(c.Request.Context()).Error("Rate limiter lookup failed",
				slog.String("key", key), slog.String("error", err.Error()))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			GetLoggerFromCtx(c.Request.Context()).Warn("Rate limit exceeded",
				slog.String("key", key), slog.Int64("limit", lctx.Limit))
			appErr := apperrors.NewAppError(http.StatusTooManyRequests, "Too many attempts. Please try again later.", nil)
			c.AbortWithStatusJSON(appErr.Code, appErr)
			return
		}

		c.Next()
	}
}
