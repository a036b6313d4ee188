package config

import (
	"testing"
	"time"
)

func TestLoadDevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("REFRESH_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWTSecret == "" || cfg.RefreshSecret == "" {
		t.Fatalf("expected dev secrets to be filled in")
	}
	if !cfg.PlaceholderDefaults {
		t.Fatalf("expected placeholder defaults in development")
	}
	if cfg.SessionTTL != defaultSessionTTL {
		t.Fatalf("expected session ttl %s, got %s", defaultSessionTTL, cfg.SessionTTL)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %s", cfg.Address())
	}
}

func TestLoadProductionRequiresStores(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected missing DATABASE_URL error")
	}
}

func TestLoadDurations(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("ONBOARDING_SESSION_TTL_SECONDS", "90")
	t.Setenv("VERIFICATION_CODE_TTL", "2m")
	t.Setenv("PLACEHOLDER_DEFAULTS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SessionTTL != 90*time.Second {
		t.Fatalf("expected 90s session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.VerificationTTL != 2*time.Minute {
		t.Fatalf("expected 2m verification ttl, got %s", cfg.VerificationTTL)
	}
	if cfg.PlaceholderDefaults {
		t.Fatalf("expected placeholder defaults to be disabled")
	}
}

func TestLoadRejectsRelativeKYCURL(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("KYC_URL", "/kyc")

	if _, err := Load(); err == nil {
		t.Fatalf("expected KYC_URL validation error")
	}
}
