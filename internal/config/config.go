package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName             = "Tangent"
	defaultAppEnv              = "development"
	defaultPort                = "8080"
	defaultLogLevel            = "info"
	defaultLanguage            = "en"
	defaultMongoDatabase       = "tangent"
	defaultMailFrom            = "Tangent <no-reply@tangent.app>"
	defaultKYCURL              = "https://connect.stripe.com/setup/example"
	defaultShutdownDelay       = 10 * time.Second
	defaultIdempotencyTTL      = 24 * time.Hour
	defaultAccessTokenTTL      = 15 * time.Minute
	defaultRefreshTokenTTL     = 30 * 24 * time.Hour
	defaultSessionTTL          = 24 * time.Hour
	defaultVerificationTTL     = 10 * time.Minute
	defaultVerificationTries   = 5
	devJWTSecret               = "tangent-dev-access-secret"
	devRefreshSecret           = "tangent-dev-refresh-secret"
	verificationAttemptsEnvVar = "VERIFICATION_MAX_ATTEMPTS"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName       string
	AppEnv        string
	Port          string
	LogLevel      string
	DatabaseURL   string
	RedisURL      string
	MongoURI      string
	MongoDatabase string
	NATSURL       string
	ResendAPIKey  string
	MailFrom      string
	JWTSecret     string
	RefreshSecret string
	KYCURL        string
	Language      string

	ShutdownPeriod      time.Duration
	IdempotencyTTL      time.Duration
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	SessionTTL          time.Duration
	VerificationTTL     time.Duration
	VerificationTries   int
	PlaceholderDefaults bool
}

// Load reads configuration values from the environment and populates a Config instance.
// A .env file in the working directory is applied first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getEnv("APP_NAME", defaultAppName),
		AppEnv:            strings.ToLower(getEnv("APP_ENV", defaultAppEnv)),
		Port:              getEnv("PORT", defaultPort),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		MongoURI:          os.Getenv("MONGODB_URI"),
		MongoDatabase:     getEnv("MONGODB_DATABASE", defaultMongoDatabase),
		NATSURL:           os.Getenv("NATS_URL"),
		ResendAPIKey:      os.Getenv("RESEND_API_KEY"),
		MailFrom:          getEnv("MAIL_FROM", defaultMailFrom),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RefreshSecret:     os.Getenv("REFRESH_SECRET"),
		KYCURL:            getEnv("KYC_URL", defaultKYCURL),
		Language:          strings.ToLower(getEnv("DEFAULT_LANGUAGE", defaultLanguage)),
		VerificationTries: defaultVerificationTries,
	}

	durations := []struct {
		name     string
		target   *time.Duration
		fallback time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownPeriod, defaultShutdownDelay},
		{"IDEMPOTENCY_TTL", &cfg.IdempotencyTTL, defaultIdempotencyTTL},
		{"ACCESS_TOKEN_TTL", &cfg.AccessTokenTTL, defaultAccessTokenTTL},
		{"REFRESH_TOKEN_TTL", &cfg.RefreshTokenTTL, defaultRefreshTokenTTL},
		{"ONBOARDING_SESSION_TTL", &cfg.SessionTTL, defaultSessionTTL},
		{"VERIFICATION_CODE_TTL", &cfg.VerificationTTL, defaultVerificationTTL},
	}
	for _, d := range durations {
		v, err := durationFromEnv(d.name, d.fallback)
		if err != nil {
			return Config{}, err
		}
		*d.target = v
	}

	if v := os.Getenv(verificationAttemptsEnvVar); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("invalid %s: %q", verificationAttemptsEnvVar, v)
		}
		cfg.VerificationTries = n
	}

	cfg.PlaceholderDefaults = cfg.IsDev()
	if v := os.Getenv("PLACEHOLDER_DEFAULTS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PLACEHOLDER_DEFAULTS: %w", err)
		}
		cfg.PlaceholderDefaults = b
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.KYCURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("KYC_URL must be an absolute http(s) url, got %q", c.KYCURL)
	}

	if c.IsDev() {
		if c.JWTSecret == "" {
			c.JWTSecret = devJWTSecret
		}
		if c.RefreshSecret == "" {
			c.RefreshSecret = devRefreshSecret
		}
		return nil
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", c.AppEnv)
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", c.AppEnv)
	}
	if c.JWTSecret == "" || c.RefreshSecret == "" {
		return fmt.Errorf("JWT_SECRET and REFRESH_SECRET must be set when APP_ENV=%s", c.AppEnv)
	}
	return nil
}

// IsDev reports whether the service runs in a local development environment.
func (c Config) IsDev() bool {
	switch c.AppEnv {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// durationFromEnv accepts NAME_SECONDS as an integer or NAME as a Go duration string.
func durationFromEnv(name string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(name + "_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s_SECONDS: %w", name, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(name); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", name, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
