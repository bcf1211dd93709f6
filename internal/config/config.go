package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Session  SessionConfig
	OAuth    OAuthConfig
	Mail     MailConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	BaseURL               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	TokenTTLMinutes      int
	OAuthStateSecret     string
	OAuthStateTTLMinutes int
	BcryptCost           int
	LoginRatePerMinute   int
	LoginRateBurst       int
}

// SessionConfig controls the server-side session store.
type SessionConfig struct {
	CookieName     string
	TTLHours       int
	CookieSecure   bool
	CookieHTTPOnly bool
}

// OAuthProviderConfig is the static per-provider record. Immutable after load.
type OAuthProviderConfig struct {
	Name         string
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	ProfileURL   string
	Scopes       []string
}

// OAuthConfig lists the configured federation providers.
type OAuthConfig struct {
	Providers []OAuthProviderConfig
}

// MailConfig holds outbound mail settings. An empty Host selects the
// development notifier that only logs.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "project-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			BaseURL:               getEnv("APP_BASE_URL", "http://localhost:8080"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			TokenTTLMinutes:      getEnvAsInt("AUTH_TOKEN_TTL_MINUTES", 60),
			OAuthStateSecret:     getEnv("AUTH_OAUTH_STATE_SECRET", "dev-secret"),
			OAuthStateTTLMinutes: getEnvAsInt("AUTH_OAUTH_STATE_TTL_MINUTES", 10),
			BcryptCost:           getEnvAsInt("AUTH_BCRYPT_COST", 12),
			LoginRatePerMinute:   getEnvAsInt("AUTH_LOGIN_RATE_PER_MINUTE", 5),
			LoginRateBurst:       getEnvAsInt("AUTH_LOGIN_RATE_BURST", 5),
		},
		Session: SessionConfig{
			CookieName:     getEnv("SESSION_COOKIE_NAME", "sid"),
			TTLHours:       getEnvAsInt("SESSION_TTL_HOURS", 168),
			CookieSecure:   getEnvAsBool("SESSION_COOKIE_SECURE", false),
			CookieHTTPOnly: getEnvAsBool("SESSION_COOKIE_HTTP_ONLY", true),
		},
		OAuth: OAuthConfig{
			Providers: loadProviders(),
		},
		Mail: MailConfig{
			Host:     os.Getenv("MAIL_HOST"),
			Port:     getEnvAsInt("MAIL_PORT", 587),
			Username: os.Getenv("MAIL_USERNAME"),
			Password: os.Getenv("MAIL_PASSWORD"),
			From:     getEnv("MAIL_FROM", "noreply@example.com"),
		},
	}

	return cfg, nil
}

// loadProviders builds the static provider list from env. A provider is
// included only when its client id is set.
func loadProviders() []OAuthProviderConfig {
	var providers []OAuthProviderConfig

	if id := os.Getenv("OAUTH_GOOGLE_CLIENT_ID"); id != "" {
		providers = append(providers, OAuthProviderConfig{
			Name:         "google",
			ClientID:     id,
			ClientSecret: os.Getenv("OAUTH_GOOGLE_CLIENT_SECRET"),
			AuthURL:      getEnv("OAUTH_GOOGLE_AUTH_URL", "https://accounts.google.com/o/oauth2/v2/auth"),
			TokenURL:     getEnv("OAUTH_GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			ProfileURL:   getEnv("OAUTH_GOOGLE_PROFILE_URL", "https://www.googleapis.com/oauth2/v3/userinfo"),
			Scopes:       splitScopes(getEnv("OAUTH_GOOGLE_SCOPES", "openid email profile")),
		})
	}

	if id := os.Getenv("OAUTH_GITHUB_CLIENT_ID"); id != "" {
		providers = append(providers, OAuthProviderConfig{
			Name:         "github",
			ClientID:     id,
			ClientSecret: os.Getenv("OAUTH_GITHUB_CLIENT_SECRET"),
			AuthURL:      getEnv("OAUTH_GITHUB_AUTH_URL", "https://github.com/login/oauth/authorize"),
			TokenURL:     getEnv("OAUTH_GITHUB_TOKEN_URL", "https://github.com/login/oauth/access_token"),
			ProfileURL:   getEnv("OAUTH_GITHUB_PROFILE_URL", "https://api.github.com/user"),
			Scopes:       splitScopes(getEnv("OAUTH_GITHUB_SCOPES", "read:user user:email")),
		})
	}

	return providers
}

func splitScopes(raw string) []string {
	return strings.Fields(raw)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL is the lifetime applied to issued single-use tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// StateTTL is the lifetime of the signed OAuth state parameter.
func (a AuthConfig) StateTTL() time.Duration {
	if a.OAuthStateTTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(a.OAuthStateTTLMinutes) * time.Minute
}

// TTL is the session lifetime.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLHours <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(s.TTLHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
