package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portssvc "github.com/SscSPs/storefront_backend/internal/core/ports/services"
	"github.com/SscSPs/storefront_backend/internal/dto"
	"github.com/SscSPs/storefront_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// authHandler handles authentication related requests.
type authHandler struct {
	auth      portssvc.AuthOrchestratorSvc
	providers portssvc.SocialProviderSvc
}

func newAuthHandler(auth portssvc.AuthOrchestratorSvc, providers portssvc.SocialProviderSvc) *authHandler {
	return &authHandler{auth: auth, providers: providers}
}

// registerAuthRoutes sets up the public authentication routes. limit guards the
// endpoints that accept secrets or probe for accounts.
func registerAuthRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, limit gin.HandlerFunc) {
	h := newAuthHandler(services.Auth, services.SocialProviders)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", limit, h.register)
		auth.POST("/check-user", limit, h.checkUser)
		auth.POST("/signin", limit, h.signIn)
		auth.POST("/login-link", limit, h.requestLoginLink)
	}
	registerOAuthRoutes(auth, services, limit)
}

// register godoc
// @Summary Register new user
// @Description Creates a credential account and signs it in.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Failure 503 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *authHandler) register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondError(c, err, "Registration failed")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAuthResponse(result))
}

// checkUser godoc
// @Summary Check whether an account exists
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.CheckUserRequest true "Email to probe"
// @Success 200 {object} dto.CheckUserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /auth/check-user [post]
func (h *authHandler) checkUser(c *gin.Context) {
	var req dto.CheckUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, exists, err := h.auth.CheckUser(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err, "User existence check failed")
		return
	}
	resp := dto.CheckUserResponse{Exists: exists}
	if exists {
		resp.User = &dto.CheckUserEntry{ID: user.UserID, Email: user.Email}
	}
	c.JSON(http.StatusOK, resp)
}

// signIn godoc
// @Summary Sign in with any configured provider
// @Description provider "credentials" uses email+password, "email" uses email+token
// @Description (passwordless), and social providers use an OAuth authorization code.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.SignInRequest true "Provider and credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Provider not configured"
// @Failure 503 {object} dto.ErrorResponse
// @Router /auth/signin [post]
func (h *authHandler) signIn(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	creds := req.Credentials

	var (
		result *domain.AuthResult
		err    error
	)
	switch req.Provider {
	case dto.SignInProviderCredentials:
		result, err = h.auth.CredentialSignIn(ctx, creds.Email, creds.Password)
	case dto.SignInProviderEmail:
		result, err = h.auth.PasswordlessSignIn(ctx, creds.Email, creds.Token)
	default:
		result, err = h.socialSignIn(c, domain.AuthProvider(req.Provider), creds.Code)
	}
	if err != nil {
		respondError(c, err, "Sign-in failed")
		return
	}

	c.JSON(signInStatus(result), dto.ToAuthResponse(result))
}

// signInStatus is 201 when the sign-in created the user, 200 otherwise.
func signInStatus(result *domain.AuthResult) int {
	if result.Created {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (h *authHandler) socialSignIn(c *gin.Context, provider domain.AuthProvider, code string) (*domain.AuthResult, error) {
	ctx := c.Request.Context()
	if !provider.IsSocial() {
		return nil, apperrors.ErrProviderNotConfigured
	}
	profile, err := h.providers.ExchangeCode(ctx, provider, code)
	if err != nil {
		return nil, err
	}
	middleware.GetLoggerFromCtx(ctx).Info("Exchanged authorization code",
		slog.String("provider", string(provider)),
		slog.String("email", profile.Email))
	return h.auth.SocialSignIn(ctx, *profile)
}

// requestLoginLink godoc
// @Summary Send a one-time login link
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginLinkRequest true "Email to send the link to"
// @Success 202 {object} dto.LoginLinkResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Login links disabled"
// @Failure 503 {object} dto.ErrorResponse
// @Router /auth/login-link [post]
func (h *authHandler) requestLoginLink(c *gin.Context) {
	var req dto.LoginLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	expiresAt, err := h.auth.RequestLoginLink(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err, "Login link request failed")
		return
	}
	c.JSON(http.StatusAccepted, dto.LoginLinkResponse{Sent: true, ExpiresAt: expiresAt})
}
