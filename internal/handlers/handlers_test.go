package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/storefront_backend/internal/apperrors"
	"github.com/SscSPs/storefront_backend/internal/core/domain"
	portssvc "github.com/SscSPs/storefront_backend/internal/core/ports/services"
	"github.com/SscSPs/storefront_backend/internal/core/services"
	"github.com/SscSPs/storefront_backend/internal/dto"
	"github.com/SscSPs/storefront_backend/internal/handlers"
	"github.com/SscSPs/storefront_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AuthOrchestrator ---
type MockAuthOrchestrator struct {
	mock.Mock
}

func (m *MockAuthOrchestrator) Register(ctx context.Context, email, password, displayName string) (*domain.AuthResult, error) {
	args := m.Called(ctx, email, password, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthOrchestrator) CheckUser(ctx context.Context, email string) (*domain.User, bool, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Bool(1), args.Error(2)
}

func (m *MockAuthOrchestrator) SocialSignIn(ctx context.Context, profile domain.SocialProfile) (*domain.AuthResult, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthOrchestrator) CredentialSignIn(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthOrchestrator) PasswordlessSignIn(ctx context.Context, email, secret string) (*domain.AuthResult, error) {
	args := m.Called(ctx, email, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthOrchestrator) RequestLoginLink(ctx context.Context, email string) (time.Time, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(time.Time), args.Error(1)
}

var _ portssvc.AuthOrchestratorSvc = (*MockAuthOrchestrator)(nil)

// --- Mock SocialProviderSvc ---
type MockSocialProviders struct {
	mock.Mock
}

func (m *MockSocialProviders) EnabledProviders() []domain.AuthProvider {
	args := m.Called()
	return args.Get(0).([]domain.AuthProvider)
}

func (m *MockSocialProviders) GenerateStateString(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSocialProviders) GetLoginURL(ctx context.Context, provider domain.AuthProvider, state string) (string, error) {
	args := m.Called(ctx, provider, state)
	return args.String(0), args.Error(1)
}

func (m *MockSocialProviders) ExchangeCode(ctx context.Context, provider domain.AuthProvider, code string) (*domain.SocialProfile, error) {
	args := m.Called(ctx, provider, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialProfile), args.Error(1)
}

var _ portssvc.SocialProviderSvc = (*MockSocialProviders)(nil)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Test Suite Setup ---
type HandlersTestSuite struct {
	suite.Suite
	router    *gin.Engine
	auth      *MockAuthOrchestrator
	providers *MockSocialProviders
	users     *MockUserService
	sessions  portssvc.SessionIssuerSvc
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.auth = new(MockAuthOrchestrator)
	s.providers = new(MockSocialProviders)
	s.users = new(MockUserService)
	s.sessions = services.NewSessionIssuer("handler-secret", "storefront-test", time.Hour)

	container := &portssvc.ServiceContainer{
		User:            s.users,
		Auth:            s.auth,
		Sessions:        s.sessions,
		SocialProviders: s.providers,
	}
	cfg := &config.Config{IsProduction: true, LoginRateLimit: "1000-M"}

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, container, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("storefront_auth_attempts_total 0\n"))
	}))
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) authResult(created bool) *domain.AuthResult {
	user := &domain.User{UserID: "u-1", Email: "alice@x.com", Provider: domain.ProviderEmail}
	session, err := s.sessions.Issue(context.Background(), user)
	s.Require().NoError(err)
	return &domain.AuthResult{User: user, Session: session, Created: created}
}

func decode[T any](s *HandlersTestSuite, w *httptest.ResponseRecorder) T {
	var v T
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

// --- Test Cases ---

func (s *HandlersTestSuite) TestHealthAndMetrics() {
	w := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/metrics", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "storefront_auth_attempts_total")
}

func (s *HandlersTestSuite) TestRegister() {
	s.auth.On("Register", mock.Anything, "alice@x.com", "s3cret!", "Alice").Return(s.authResult(true), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{Email: "alice@x.com", Password: "s3cret!", DisplayName: "Alice"}, "")
	s.Equal(http.StatusCreated, w.Code)
	resp := decode[dto.AuthResponse](s, w)
	s.NotEmpty(resp.Token)
	s.True(resp.Created)
	s.Equal("u-1", resp.User.UserID)
	s.auth.AssertExpectations(s.T())
}

func (s *HandlersTestSuite) TestRegister_Errors() {
	s.auth.On("Register", mock.Anything, "taken@x.com", "pw", "").Return(nil, apperrors.ErrDuplicateEmail).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/register", dto.RegisterRequest{Email: "taken@x.com", Password: "pw"}, "")
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("An account with this email already exists.", decode[dto.ErrorResponse](s, w).Message)

	w = s.do(http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "a@x.com"}, "")
	s.Equal(http.StatusBadRequest, w.Code, "password is required")
}

func (s *HandlersTestSuite) TestCheckUser() {
	s.auth.On("CheckUser", mock.Anything, "alice@x.com").Return(&domain.User{UserID: "u-1", Email: "alice@x.com"}, true, nil).Once()
	s.auth.On("CheckUser", mock.Anything, "nobody@x.com").Return(nil, false, nil).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/check-user", dto.CheckUserRequest{Email: "alice@x.com"}, "")
	s.Equal(http.StatusOK, w.Code)
	resp := decode[dto.CheckUserResponse](s, w)
	s.True(resp.Exists)
	s.Require().NotNil(resp.User)
	s.Equal("u-1", resp.User.ID)

	w = s.do(http.MethodPost, "/api/v1/auth/check-user", dto.CheckUserRequest{Email: "nobody@x.com"}, "")
	s.Equal(http.StatusOK, w.Code)
	resp = decode[dto.CheckUserResponse](s, w)
	s.False(resp.Exists)
	s.Nil(resp.User)
}

func (s *HandlersTestSuite) TestSignIn_Credentials() {
	s.auth.On("CredentialSignIn", mock.Anything, "alice@x.com", "s3cret!").Return(s.authResult(false), nil).Once()
	s.auth.On("CredentialSignIn", mock.Anything, "alice@x.com", "wrong").Return(nil, apperrors.ErrInvalidPassword).Once()

	body := dto.SignInRequest{Provider: "credentials", Credentials: dto.SignInCredentials{Email: "alice@x.com", Password: "s3cret!"}}
	w := s.do(http.MethodPost, "/api/v1/auth/signin", body, "")
	s.Equal(http.StatusOK, w.Code)

	body.Credentials.Password = "wrong"
	w = s.do(http.MethodPost, "/api/v1/auth/signin", body, "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid email or password.", decode[dto.ErrorResponse](s, w).Message)
}

func (s *HandlersTestSuite) TestSignIn_Passwordless() {
	s.auth.On("PasswordlessSignIn", mock.Anything, "bob@y.com", "tok").Return(s.authResult(true), nil).Once()
	s.auth.On("PasswordlessSignIn", mock.Anything, "old@y.com", "tok").Return(nil, apperrors.ErrUseManualSignIn).Once()
	s.auth.On("PasswordlessSignIn", mock.Anything, "new@y.com", "tok").
		Return(nil, apperrors.ErrLoginFailedAfterRegistration).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/signin", dto.SignInRequest{Provider: "email", Credentials: dto.SignInCredentials{Email: "bob@y.com", Token: "tok"}}, "")
	s.Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/signin", dto.SignInRequest{Provider: "email", Credentials: dto.SignInCredentials{Email: "old@y.com", Token: "tok"}}, "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Please use Sign In to enter your password.", decode[dto.ErrorResponse](s, w).Message)

	w = s.do(http.MethodPost, "/api/v1/auth/signin", dto.SignInRequest{Provider: "email", Credentials: dto.SignInCredentials{Email: "new@y.com", Token: "tok"}}, "")
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *HandlersTestSuite) TestSignIn_Social() {
	profile := &domain.SocialProfile{Provider: domain.ProviderGoogle, Email: "alice@x.com", EmailVerified: true}
	s.providers.On("ExchangeCode", mock.Anything, domain.ProviderGoogle, "code-1").Return(profile, nil).Once()
	s.auth.On("SocialSignIn", mock.Anything, *profile).Return(s.authResult(false), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/signin", dto.SignInRequest{Provider: "google", Credentials: dto.SignInCredentials{Code: "code-1"}}, "")
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/signin", dto.SignInRequest{Provider: "myspace"}, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.auth.AssertExpectations(s.T())
}

func (s *HandlersTestSuite) TestRequestLoginLink() {
	expires := time.Now().Add(15 * time.Minute).UTC().Truncate(time.Second)
	s.auth.On("RequestLoginLink", mock.Anything, "liz@x.com").Return(expires, nil).Once()
	s.auth.On("RequestLoginLink", mock.Anything, "off@x.com").Return(time.Time{}, apperrors.ErrProviderNotConfigured).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/login-link", dto.LoginLinkRequest{Email: "liz@x.com"}, "")
	s.Equal(http.StatusAccepted, w.Code)
	resp := decode[dto.LoginLinkResponse](s, w)
	s.True(resp.Sent)
	s.True(resp.ExpiresAt.Equal(expires))

	w = s.do(http.MethodPost, "/api/v1/auth/login-link", dto.LoginLinkRequest{Email: "off@x.com"}, "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestOAuthRoutes() {
	s.providers.On("EnabledProviders").Return([]domain.AuthProvider{domain.ProviderGoogle, domain.ProviderApple}).Once()
	s.providers.On("GenerateStateString", mock.Anything).Return("state-1", nil)
	s.providers.On("GetLoginURL", mock.Anything, domain.ProviderGoogle, "state-1").Return("https://accounts.example/auth?state=state-1", nil).Once()
	s.providers.On("GetLoginURL", mock.Anything, domain.ProviderFacebook, "state-1").Return("", apperrors.ErrProviderNotConfigured).Once()

	w := s.do(http.MethodGet, "/api/v1/auth/providers", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal([]string{"google", "apple"}, decode[dto.ProvidersResponse](s, w).Providers)

	w = s.do(http.MethodGet, "/api/v1/auth/oauth/google/url", nil, "")
	s.Equal(http.StatusOK, w.Code)
	urlResp := decode[dto.OAuthURLResponse](s, w)
	s.Equal("state-1", urlResp.State)
	s.Contains(urlResp.URL, "state=state-1")

	w = s.do(http.MethodGet, "/api/v1/auth/oauth/facebook/url", nil, "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestExchangeCode() {
	profile := &domain.SocialProfile{Provider: domain.ProviderApple, Email: "kim@x.com", EmailVerified: true}
	s.providers.On("ExchangeCode", mock.Anything, domain.ProviderApple, "good").Return(profile, nil).Once()
	s.providers.On("ExchangeCode", mock.Anything, domain.ProviderApple, "bad").Return(nil, apperrors.ErrUnauthorized).Once()
	s.auth.On("SocialSignIn", mock.Anything, *profile).Return(s.authResult(true), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/oauth/apple/exchange-code", dto.ExchangeCodeRequest{Code: "good"}, "")
	s.Equal(http.StatusCreated, w.Code, "first sign-in creates the user, same as /auth/signin")
	s.NotEmpty(decode[dto.AuthResponse](s, w).Token)

	s.providers.On("ExchangeCode", mock.Anything, domain.ProviderApple, "again").Return(profile, nil).Once()
	s.auth.On("SocialSignIn", mock.Anything, *profile).Return(s.authResult(false), nil).Once()
	w = s.do(http.MethodPost, "/api/v1/auth/oauth/apple/exchange-code", dto.ExchangeCodeRequest{Code: "again"}, "")
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/oauth/apple/exchange-code", dto.ExchangeCodeRequest{Code: "bad"}, "")
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/oauth/apple/exchange-code", map[string]string{}, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestMe() {
	result := s.authResult(false)
	s.users.On("GetUserByID", mock.Anything, "u-1").Return(result.User, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/me", nil, result.Session.Token)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("alice@x.com", decode[dto.UserResponse](s, w).Email)
}

func (s *HandlersTestSuite) TestMe_Unauthorized() {
	foreign := services.NewSessionIssuer("someone-elses-secret", "storefront-test", time.Hour)
	forged, err := foreign.Issue(context.Background(), &domain.User{UserID: "u-1"})
	s.Require().NoError(err)

	for name, token := range map[string]string{"missing": "", "garbage": "abc", "forged": forged.Token} {
		w := s.do(http.MethodGet, "/api/v1/me", nil, token)
		s.Equal(http.StatusUnauthorized, w.Code, name)
	}

	result := s.authResult(false)
	s.users.On("GetUserByID", mock.Anything, "u-1").Return(nil, apperrors.ErrNotFound).Once()
	w := s.do(http.MethodGet, "/api/v1/me", nil, result.Session.Token)
	s.Equal(http.StatusUnauthorized, w.Code, "deleted user")
	s.users.AssertNotCalled(s.T(), "GetUserByEmail", mock.Anything, mock.Anything)
}

func (s *HandlersTestSuite) TestUnavailableHidesCause() {
	s.auth.On("CheckUser", mock.Anything, "a@x.com").
		Return(nil, false, apperrors.Unavailable(context.DeadlineExceeded)).Once()

	w := s.do(http.MethodPost, "/api/v1/auth/check-user", dto.CheckUserRequest{Email: "a@x.com"}, "")
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.NotContains(w.Body.String(), "deadline")
}
