package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tangent-app/tangent/internal/config"
	"github.com/tangent-app/tangent/internal/identity"
)

func setup(t *testing.T) (*Service, identity.User) {
	t.Helper()
	repo := identity.NewMemoryRepository()
	ids := identity.NewService(repo)
	user, err := ids.Register(context.Background(), identity.Registration{
		Username:    "johndoe",
		PhoneNumber: "+15551234567",
		PIN:         "1234",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	cfg := config.Config{
		JWTSecret:       "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	}
	return NewService(cfg, repo), user
}

func TestLoginRefreshLogout(t *testing.T) {
	svc, user := setup(t)
	ctx := context.Background()

	pair, err := svc.Login(user)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := svc.Authorize(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if claims.Subject != user.ID || claims.Version != 0 {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := svc.Authorize(ctx, pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token must not authorize requests, got %v", err)
	}

	access, exp, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access == "" || exp != 60 {
		t.Fatalf("unexpected refresh result %q %d", access, exp)
	}

	if err := svc.Logout(ctx, user.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authorize(ctx, pair.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected revoked access token, got %v", err)
	}
	if _, _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected revoked refresh token, got %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	token, _, err := Sign("user-1", 0, "secret", time.Minute, past)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := Parse(token, "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
	if _, err := Parse("not-a-token", "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected malformed token to be rejected, got %v", err)
	}
}
