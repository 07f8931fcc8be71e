package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/SscSPs/storefront_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError writes the client-safe AppError for err. Server-side failures
// are logged with the underlying cause; the client only sees the message.
func respondError(c *gin.Context, err error, msg string) {
	appErr := apperrors.ToAppError(err)
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if appErr.Code >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()), slog.Int("status", appErr.Code))
	} else {
		logger.Info(msg, slog.String("error", err.Error()), slog.Int("status", appErr.Code))
	}
	c.JSON(appErr.Code, appErr)
}

func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request body", slog.String("error", err.Error()))
	appErr := apperrors.NewBadRequestError("Invalid request body.")
	c.JSON(appErr.Code, appErr)
}
