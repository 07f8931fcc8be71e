package handlers

import (
	"net/http"

	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portssvc "github.com/SscSPs/storefront_backend/internal/core/ports/services"
	"github.com/SscSPs/storefront_backend/internal/dto"
	"github.com/gin-gonic/gin"
)

// oauthHandler serves the social provider registry and the code-exchange flow.
type oauthHandler struct {
	auth      portssvc.AuthOrchestratorSvc
	providers portssvc.SocialProviderSvc
}

func registerOAuthRoutes(auth *gin.RouterGroup, services *portssvc.ServiceContainer, limit gin.HandlerFunc) {
	h := &oauthHandler{auth: services.Auth, providers: services.SocialProviders}

	auth.GET("/providers", h.listProviders)
	oauth := auth.Group("/oauth/:provider")
	{
		oauth.GET("/url", h.loginURL)
		oauth.POST("/exchange-code", limit, h.exchangeCode)
	}
}

// listProviders godoc
// @Summary List enabled social sign-in providers
// @Tags oauth
// @Produce json
// @Success 200 {object} dto.ProvidersResponse
// @Router /auth/providers [get]
func (h *oauthHandler) listProviders(c *gin.Context) {
	enabled := h.providers.EnabledProviders()
	names := make([]string, len(enabled))
	for i, p := range enabled {
		names[i] = string(p)
	}
	c.JSON(http.StatusOK, dto.ProvidersResponse{Providers: names})
}

// loginURL godoc
// @Summary Get the provider consent URL
// @Description Returns the URL to redirect to and the state the frontend must verify on return.
// @Tags oauth
// @Produce json
// @Param provider path string true "google, facebook or apple"
// @Success 200 {object} dto.OAuthURLResponse
// @Failure 404 {object} dto.ErrorResponse "Provider not configured"
// @Router /auth/oauth/{provider}/url [get]
func (h *oauthHandler) loginURL(c *gin.Context) {
	ctx := c.Request.Context()
	provider := domain.AuthProvider(c.Param("provider"))

	state, err := h.providers.GenerateStateString(ctx)
	if err != nil {
		respondError(c, err, "Failed to generate OAuth state")
		return
	}
	url, err := h.providers.GetLoginURL(ctx, provider, state)
	if err != nil {
		respondError(c, err, "Failed to build provider login URL")
		return
	}
	c.JSON(http.StatusOK, dto.OAuthURLResponse{URL: url, State: state})
}

// exchangeCode godoc
// @Summary Exchange an authorization code for a session
// @Tags oauth
// @Accept json
// @Produce json
// @Param provider path string true "google, facebook or apple"
// @Param code body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.AuthResponse "Existing user signed in"
// @Success 201 {object} dto.AuthResponse "User created and signed in"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse "Provider rejected the code"
// @Failure 404 {object} dto.ErrorResponse "Provider not configured"
// @Failure 503 {object} dto.ErrorResponse
// @Router /auth/oauth/{provider}/exchange-code [post]
func (h *oauthHandler) exchangeCode(c *gin.Context) {
	ctx := c.Request.Context()
	provider := domain.AuthProvider(c.Param("provider"))

	var req dto.ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.providers.ExchangeCode(ctx, provider, req.Code)
	if err != nil {
		respondError(c, err, "Failed to exchange authorization code")
		return
	}
	result, err := h.auth.SocialSignIn(ctx, *profile)
	if err != nil {
		respondError(c, err, "Social sign-in failed")
		return
	}
	c.JSON(signInStatus(result), dto.ToAuthResponse(result))
}
