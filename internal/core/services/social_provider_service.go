package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portssvc "github.com/SscSPs/storefront_backend/internal/core/ports/services"
	"github.com/SscSPs/storefront_backend/internal/platform/config"
	"github.com/SscSPs/storefront_backend/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

const defaultFacebookGraphURL = "https://graph.facebook.com/v19.0"

var appleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://appleid.apple.com/auth/authorize",
	TokenURL:  "https://appleid.apple.com/auth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// IDTokenValidator validates a Google ID token for audience.
type IDTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type profileFetcher func(ctx context.Context, p *socialProvider, token *oauth2.Token) (*domain.SocialProfile, error)

type socialProvider struct {
	name   domain.AuthProvider
	oauth  *oauth2.Config
	fetch  profileFetcher
	svc    *socialProviderService
	extras []oauth2.AuthCodeOption
}

// socialProviderService implements SocialProviderSvc over the configured provider registry.
type socialProviderService struct {
	BaseService
	providers       map[domain.AuthProvider]*socialProvider
	httpClient      *http.Client
	graphURL        string
	validateIDToken IDTokenValidator
}

// SocialProviderOption configures a socialProviderService.
type SocialProviderOption func(*socialProviderService)

// WithProviderEndpoint replaces the OAuth endpoint of a configured provider.
func WithProviderEndpoint(p domain.AuthProvider, endpoint oauth2.Endpoint) SocialProviderOption {
	return func(s *socialProviderService) {
		if sp, ok := s.providers[p]; ok {
			sp.oauth.Endpoint = endpoint
		}
	}
}

// WithOAuthHTTPClient sets the client used for token exchange and profile calls.
func WithOAuthHTTPClient(c *http.Client) SocialProviderOption {
	return func(s *socialProviderService) {
		s.httpClient = c
	}
}

// WithFacebookGraphURL overrides the Graph API base URL.
func WithFacebookGraphURL(u string) SocialProviderOption {
	return func(s *socialProviderService) {
		s.graphURL = strings.TrimRight(u, "/")
	}
}

// WithIDTokenValidator overrides Google ID token validation.
func WithIDTokenValidator(v IDTokenValidator) SocialProviderOption {
	return func(s *socialProviderService) {
		s.validateIDToken = v
	}
}

// NewSocialProviderService builds the provider registry from cfg. Providers
// absent from cfg.Providers are simply not available.
func NewSocialProviderService(cfg *config.Config, opts ...SocialProviderOption) portssvc.SocialProviderSvc {
	s := &socialProviderService{
		providers:       make(map[domain.AuthProvider]*socialProvider),
		graphURL:        defaultFacebookGraphURL,
		validateIDToken: idtoken.Validate,
	}

	if pc, ok := cfg.Provider(domain.ProviderGoogle); ok {
		s.providers[domain.ProviderGoogle] = &socialProvider{
			name:  domain.ProviderGoogle,
			oauth: oauthConfig(pc, google.Endpoint, "openid", "https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"),
			fetch: fetchGoogleProfile,
		}
	}
	if pc, ok := cfg.Provider(domain.ProviderFacebook); ok {
		s.providers[domain.ProviderFacebook] = &socialProvider{
			name:  domain.ProviderFacebook,
			oauth: oauthConfig(pc, facebook.Endpoint, "email", "public_profile"),
			fetch: fetchFacebookProfile,
		}
	}
	if pc, ok := cfg.Provider(domain.ProviderApple); ok {
		s.providers[domain.ProviderApple] = &socialProvider{
			name:   domain.ProviderApple,
			oauth:  oauthConfig(pc, appleEndpoint, "name", "email"),
			fetch:  fetchAppleProfile,
			extras: []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("response_mode", "form_post")},
		}
	}
	for _, sp := range s.providers {
		sp.svc = s
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func oauthConfig(pc config.ProviderConfig, endpoint oauth2.Endpoint, scopes ...string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     pc.ClientID,
		ClientSecret: pc.ClientSecret,
		RedirectURL:  pc.RedirectURL,
		Scopes:       scopes,
		Endpoint:     endpoint,
	}
}

// EnabledProviders lists configured providers in a stable order.
func (s *socialProviderService) EnabledProviders() []domain.AuthProvider {
	enabled := make([]domain.AuthProvider, 0, len(s.providers))
	for _, p := range []domain.AuthProvider{domain.ProviderGoogle, domain.ProviderFacebook, domain.ProviderApple} {
		if _, ok := s.providers[p]; ok {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
func (s *socialProviderService) GenerateStateString(ctx context.Context) (string, error) {
	// 16 bytes -> 32 char hex string
	state, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate state string for OAuth: %w", err)
	}
	return state, nil
}

func (s *socialProviderService) GetLoginURL(ctx context.Context, provider domain.AuthProvider, state string) (string, error) {
	sp, err := s.provider(provider)
	if err != nil {
		return "", err
	}
	return sp.oauth.AuthCodeURL(state, sp.extras...), nil
}

// ExchangeCode exchanges an OAuth authorization code and returns the provider's verified profile.
func (s *socialProviderService) ExchangeCode(ctx context.Context, provider domain.AuthProvider, code string) (*domain.SocialProfile, error) {
	sp, err := s.provider(provider)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code is required", apperrors.ErrValidation)
	}

	ctx = s.clientContext(ctx)
	token, err := sp.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			s.LogWarn(ctx, "Provider rejected authorization code",
				slog.String("provider", string(provider)),
				slog.String("error_code", retrieveErr.ErrorCode))
			return nil, fmt.Errorf("%w: provider rejected authorization code", apperrors.ErrUnauthorized)
		}
		s.LogError(ctx, err, "Failed to exchange oauth code", slog.String("provider", string(provider)))
		return nil, apperrors.Unavailable(fmt.Errorf("failed to exchange oauth code for token: %w", err))
	}

	profile, err := sp.fetch(ctx, sp, token)
	if err != nil {
		return nil, err
	}
	profile.Provider = provider
	profile.Email = domain.NormalizeEmail(profile.Email)
	if profile.Email == "" {
		return nil, apperrors.ErrInvalidIdentity
	}
	return profile, nil
}

func (s *socialProviderService) provider(p domain.AuthProvider) (*socialProvider, error) {
	sp, ok := s.providers[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrProviderNotConfigured, p)
	}
	return sp, nil
}

func (s *socialProviderService) clientContext(ctx context.Context) context.Context {
	if s.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

func fetchGoogleProfile(ctx context.Context, p *socialProvider, token *oauth2.Token) (*domain.SocialProfile, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: google response carried no id_token", apperrors.ErrUnauthorized)
	}

	payload, err := p.svc.validateIDToken(ctx, rawIDToken, p.oauth.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: google ID token validation failed: %v", apperrors.ErrUnauthorized, err)
	}

	return &domain.SocialProfile{
		ProviderID:    payload.Subject,
		Email:         claimString(payload.Claims, "email"),
		EmailVerified: claimBool(payload.Claims, "email_verified"),
		DisplayName:   claimString(payload.Claims, "name"),
		AvatarURL:     claimString(payload.Claims, "picture"),
	}, nil
}

type facebookMe struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

func fetchFacebookProfile(ctx context.Context, p *socialProvider, token *oauth2.Token) (*domain.SocialProfile, error) {
	client := p.oauth.Client(ctx, token)
	resp, err := client.Get(p.svc.graphURL + "/me?fields=id,name,email,picture")
	if err != nil {
		return nil, apperrors.Unavailable(fmt.Errorf("failed to get user info from facebook: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Unavailable(fmt.Errorf("facebook graph api returned non-200 status: %s", resp.Status))
	}

	var me facebookMe
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return nil, apperrors.Unavailable(fmt.Errorf("failed to decode user info from facebook: %w", err))
	}

	return &domain.SocialProfile{
		ProviderID: me.ID,
		Email:      me.Email,
		// Graph only returns a confirmed primary email.
		EmailVerified: me.Email != "",
		DisplayName:   me.Name,
		AvatarURL:     me.Picture.Data.URL,
	}, nil
}

func fetchAppleProfile(ctx context.Context, p *socialProvider, token *oauth2.Token) (*domain.SocialProfile, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: apple response carried no id_token", apperrors.ErrUnauthorized)
	}

	// The id_token was received directly from Apple's token endpoint over TLS.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, claims); err != nil {
		return nil, fmt.Errorf("%w: malformed apple id_token: %v", apperrors.ErrUnauthorized, err)
	}
	if aud, err := claims.GetAudience(); err != nil || !slices.Contains(aud, p.oauth.ClientID) {
		return nil, fmt.Errorf("%w: apple id_token audience mismatch", apperrors.ErrUnauthorized)
	}
	sub, _ := claims.GetSubject()

	return &domain.SocialProfile{
		ProviderID:    sub,
		Email:         claimString(claims, "email"),
		EmailVerified: claimBool(claims, "email_verified"),
	}, nil
}

func claimString(claims map[string]any, key string) string {
	v, _ := claims[key].(string)
	return v
}

// claimBool accepts both JSON booleans and the "true" strings Apple sends.
func claimBool(claims map[string]any, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	default:
		return false
	}
}
