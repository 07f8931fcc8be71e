package services

import (
	portsrepo "github.com/SscSPs/storefront_backend/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/storefront_backend/internal/core/ports/services"
	"github.com/SscSPs/storefront_backend/internal/platform/config"
)

// ContainerDeps carries the infrastructure the services need beyond repositories.
type ContainerDeps struct {
	Notifier       portssvc.LoginLinkNotifier
	Metrics        portssvc.AuthMetrics
	Tracker        portssvc.AuthEventTracker
	SocialProvider []SocialProviderOption
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, deps ContainerDeps) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.User = NewUserService(repos.UserRepo)
	container.Sessions = NewSessionIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL)
	container.SocialProviders = NewSocialProviderService(cfg, deps.SocialProvider...)
	container.Tracker = deps.Tracker
	if container.Tracker == nil {
		container.Tracker = noopEventTracker{}
	}

	verifier := NewPasswordVerifier(cfg.BcryptCost,
		WithDeterministicTokens(cfg.PasswordlessMode == config.PasswordlessModeLegacy),
		WithVerifierMetrics(deps.Metrics),
	)
	reconciler := NewIdentityReconciler(repos.UserRepo)

	orchestratorOpts := []AuthOrchestratorOption{
		WithRetryPolicy(DefaultRegistrationRetry(cfg.RegistrationRetryDelay)),
		WithAuthMetrics(deps.Metrics),
		WithAuthEventTracker(container.Tracker),
	}
	if repos.LoginLinkRepo != nil && deps.Notifier != nil {
		container.LoginLinks = NewLoginLinkService(repos.LoginLinkRepo, deps.Notifier, cfg.LoginLinkTTL, cfg.LoginLinkBaseURL)
		orchestratorOpts = append(orchestratorOpts, WithLoginLinks(container.LoginLinks))
	}

	container.Auth = NewAuthOrchestrator(repos.UserRepo, verifier, reconciler, container.Sessions, orchestratorOpts...)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AuthOrchestratorSvc   = (*authOrchestrator)(nil)
	_ portssvc.IdentityReconcilerSvc = (*identityReconciler)(nil)
	_ portssvc.PasswordVerifierSvc   = (*passwordVerifier)(nil)
	_ portssvc.SessionIssuerSvc      = (*sessionIssuer)(nil)
	_ portssvc.LoginLinkSvc          = (*loginLinkService)(nil)
	_ portssvc.SocialProviderSvc     = (*socialProviderService)(nil)
	_ portssvc.UserSvcFacade         = (*userService)(nil)
)
