package verification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/tangent-app/tangent/internal/logging"
	"github.com/tangent-app/tangent/internal/notification"
)

const phone = "+15551234567"

func newService(t *testing.T, store Store) (*Service, *notification.Recorder) {
	t.Helper()
	rec := notification.NewRecorder()
	svc := NewService(store, rec, Config{TTL: time.Minute, MaxAttempts: 3, MaxIssues: 2, HashCost: bcrypt.MinCost}, logging.Discard())
	return svc, rec
}

func sentCode(t *testing.T, rec *notification.Recorder) string {
	t.Helper()
	msg, ok := rec.Last(phone)
	if !ok {
		t.Fatalf("no code delivered to %s", phone)
	}
	return msg.Body[len(msg.Body)-CodeLength:]
}

func TestIssueAndVerify(t *testing.T) {
	svc, rec := newService(t, NewMemoryStore())
	ctx := context.Background()

	if _, err := svc.Issue(ctx, notification.ChannelSMS, phone); err != nil {
		t.Fatalf("issue: %v", err)
	}
	code := sentCode(t, rec)
	if len(code) != CodeLength || strings.Trim(code, "0123456789") != "" {
		t.Fatalf("expected 6 digit code, got %q", code)
	}

	if err := svc.Verify(ctx, notification.ChannelSMS, phone, code); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := svc.Verify(ctx, notification.ChannelSMS, phone, code); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected code to be consumed, got %v", err)
	}
}

func TestVerifyAttemptBudget(t *testing.T) {
	svc, rec := newService(t, NewMemoryStore())
	ctx := context.Background()

	if _, err := svc.Issue(ctx, notification.ChannelSMS, phone); err != nil {
		t.Fatalf("issue: %v", err)
	}
	wrong := "000000"
	if sentCode(t, rec) == wrong {
		wrong = "111111"
	}

	err := svc.Verify(ctx, notification.ChannelSMS, phone, wrong)
	var attemptErr *AttemptError
	if !errors.As(err, &attemptErr) || attemptErr.Remaining != 2 {
		t.Fatalf("expected 2 remaining attempts, got %v", err)
	}
	if !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	_ = svc.Verify(ctx, notification.ChannelSMS, phone, wrong)
	if err := svc.Verify(ctx, notification.ChannelSMS, phone, wrong); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if err := svc.Verify(ctx, notification.ChannelSMS, phone, sentCode(t, rec)); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected locked code, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	svc, rec := newService(t, NewMemoryStore())
	ctx := context.Background()

	if _, err := svc.Issue(ctx, notification.ChannelSMS, phone); err != nil {
		t.Fatalf("issue: %v", err)
	}
	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Minute) }

	if err := svc.Verify(ctx, notification.ChannelSMS, phone, sentCode(t, rec)); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestIssueRateLimitedWithRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	svc, rec := newService(t, NewRedisStore(cache))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Issue(ctx, notification.ChannelSMS, phone); err != nil {
			t.Fatalf("issue %d: %v", i, err)
		}
	}
	if _, err := svc.Issue(ctx, notification.ChannelSMS, phone); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	if err := svc.Verify(ctx, notification.ChannelSMS, phone, sentCode(t, rec)); err != nil {
		t.Fatalf("verify latest code: %v", err)
	}
	if mr.Exists(codePrefix + key(notification.ChannelSMS, phone)) {
		t.Fatalf("expected code key to be deleted")
	}
}
