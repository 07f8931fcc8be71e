package config

import (
	"log"
	"strings"
	"time"

	"github.com/SscSPs/storefront_backend/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"

	PasswordlessModeLink   = "link"
	PasswordlessModeLegacy = "legacy"

	defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"
)

// ProviderConfig holds OAuth client settings for one external identity provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Config holds application configuration.
type Config struct {
	Port           string
	IsProduction   bool
	StoreDriver    string
	DatabaseURL    string
	SQLitePath     string
	EnableDBCheck  bool
	MigrationsPath string

	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration
	BcryptCost int

	PasswordlessMode       string
	LoginLinkTTL           time.Duration
	LoginLinkBaseURL       string
	RegistrationRetryDelay time.Duration
	LoginRateLimit         string

	FrontendBaseURL string

	// Providers is the social provider registry. A provider is present only when
	// its client id and secret are both configured.
	Providers map[domain.AuthProvider]ProviderConfig

	PosthogAPIKey  string
	RabbitMQURL    string
	LoginLinkQueue string

	// LoginLinkWebhookURL receives login link deliveries as JSON POSTs, usually a
	// transactional email provider's send endpoint.
	LoginLinkWebhookURL string
}

// Provider returns the registry entry for p.
func (c *Config) Provider(p domain.AuthProvider) (ProviderConfig, bool) {
	pc, ok := c.Providers[p]
	return pc, ok
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("SQLITE_PATH", "storefront.db")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "storefront-backend")
	v.SetDefault("SESSION_TTL", "720h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("PASSWORDLESS_MODE", PasswordlessModeLink)
	v.SetDefault("LOGIN_LINK_TTL", "15m")
	v.SetDefault("LOGIN_LINK_BASE_URL", "http://localhost:3000/finish-sign-in")
	v.SetDefault("REGISTRATION_RETRY_DELAY", "500ms")
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	v.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOGIN_LINK_QUEUE", "storefront.login_links")
	v.SetDefault("LOGIN_LINK_WEBHOOK_URL", "")
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Port:             v.GetString("PORT"),
		IsProduction:     v.GetBool("IS_PRODUCTION"),
		StoreDriver:      strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseURL:      v.GetString("PGSQL_URL"),
		SQLitePath:       v.GetString("SQLITE_PATH"),
		EnableDBCheck:    v.GetBool("ENABLE_DB_CHECK"),
		MigrationsPath:   v.GetString("MIGRATIONS_PATH"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTIssuer:        v.GetString("JWT_ISSUER"),
		BcryptCost:       v.GetInt("BCRYPT_COST"),
		PasswordlessMode: strings.ToLower(v.GetString("PASSWORDLESS_MODE")),
		LoginLinkBaseURL: v.GetString("LOGIN_LINK_BASE_URL"),
		LoginRateLimit:   v.GetString("LOGIN_RATE_LIMIT"),
		FrontendBaseURL:  v.GetString("FRONTEND_BASE_URL"),
		PosthogAPIKey:    v.GetString("POSTHOG_API_KEY"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		LoginLinkQueue:   v.GetString("LOGIN_LINK_QUEUE"),

		LoginLinkWebhookURL: v.GetString("LOGIN_LINK_WEBHOOK_URL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case StoreDriverSQLite:
	default:
		log.Printf("Warning: Unknown STORE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StoreDriver, StoreDriverPostgres)
		cfg.StoreDriver = StoreDriverPostgres
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "storefront-backend"
	}

	cfg.SessionTTL = durationOrDefault(v, "SESSION_TTL", 30*24*time.Hour)
	cfg.LoginLinkTTL = durationOrDefault(v, "LOGIN_LINK_TTL", 15*time.Minute)
	cfg.RegistrationRetryDelay = durationOrDefault(v, "REGISTRATION_RETRY_DELAY", 500*time.Millisecond)

	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = 10
	}

	if cfg.PasswordlessMode != PasswordlessModeLink && cfg.PasswordlessMode != PasswordlessModeLegacy {
		log.Printf("Warning: Invalid value for PASSWORDLESS_MODE ('%s'). Defaulting to %s.\n", cfg.PasswordlessMode, PasswordlessModeLink)
		cfg.PasswordlessMode = PasswordlessModeLink
	}
	if cfg.PasswordlessMode == PasswordlessModeLegacy {
		log.Println("Warning: PASSWORDLESS_MODE=legacy accepts email-derived tokens. Anyone who knows an email can sign in as that user.")
	}

	if cfg.IsProduction && cfg.LoginLinkWebhookURL == "" {
		log.Println("Warning: LOGIN_LINK_WEBHOOK_URL not set. Login links cannot be delivered in production.")
	}

	cfg.Providers = loadProviders(v)
	if len(cfg.Providers) == 0 {
		log.Println("Warning: no social sign-in providers configured.")
	}

	return cfg
}

// loadProviders builds the provider registry. Absent configuration omits the entry.
func loadProviders(v *viper.Viper) map[domain.AuthProvider]ProviderConfig {
	providers := make(map[domain.AuthProvider]ProviderConfig)
	for _, p := range []domain.AuthProvider{domain.ProviderGoogle, domain.ProviderFacebook, domain.ProviderApple} {
		prefix := strings.ToUpper(string(p))
		pc := ProviderConfig{
			ClientID:     v.GetString(prefix + "_CLIENT_ID"),
			ClientSecret: v.GetString(prefix + "_CLIENT_SECRET"),
			RedirectURL:  v.GetString(prefix + "_REDIRECT_URL"),
		}
		if pc.ClientID == "" || pc.ClientSecret == "" {
			continue
		}
		if pc.RedirectURL == "" {
			log.Printf("Warning: %s_REDIRECT_URL not set. %s sign-in will rely on the provider default.\n", prefix, p)
		}
		providers[p] = pc
	}
	return providers
}

func durationOrDefault(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}
