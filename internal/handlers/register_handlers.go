package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/storefront_backend/cmd/docs"
	portssvc "github.com/SscSPs/storefront_backend/internal/core/ports/services"
	"github.com/SscSPs/storefront_backend/internal/middleware"
	"github.com/SscSPs/storefront_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const defaultLoginRateLimit = "5-M"

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// metricsHandler is mounted at /metrics when non-nil.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	metricsHandler http.Handler,
) {
	r.GET("/health", getHealth)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := r.Group("/api/v1")

	// Public authentication routes
	registerAuthRoutes(v1, services, loginRateLimit(cfg))

	// Routes below require a valid session
	authed := v1.Group("", middleware.AuthMiddleware(services.Sessions))
	registerUserRoutes(authed, services.User)

	setupSwaggerRoutes(r, cfg)
}

// loginRateLimit builds the per-IP limiter for the secret-accepting endpoints.
func loginRateLimit(cfg *config.Config) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(cfg.LoginRateLimit)
	if err != nil {
		slog.Warn("Invalid LOGIN_RATE_LIMIT, using default",
			slog.String("value", cfg.LoginRateLimit),
			slog.String("default", defaultLoginRateLimit))
		rate, _ = limiter.NewRateFromFormatted(defaultLoginRateLimit)
	}
	return middleware.RateLimit(limiter.New(memory.NewStore(), rate))
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
