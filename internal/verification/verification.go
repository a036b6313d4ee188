// Package verification issues and checks one-time codes sent by SMS or email.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tangent-app/tangent/internal/notification"
)

// CodeLength is the number of digits in every issued code.
const CodeLength = 6

var (
	ErrNotFound        = errors.New("verification code not found")
	ErrExpired         = errors.New("verification code expired")
	ErrTooManyAttempts = errors.New("too many verification attempts")
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrRateLimited     = errors.New("too many verification codes requested")
)

// Code is the stored state of an issued code. Only the hash is kept.
type Code struct {
	Channel     string    `json:"channel"`
	Destination string    `json:"destination"`
	Hash        []byte    `json:"hash"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// AttemptError reports a wrong code together with the attempts left.
type AttemptError struct {
	Remaining int
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s: %d attempts remaining", ErrInvalidCode, e.Remaining)
}

func (e *AttemptError) Unwrap() error { return ErrInvalidCode }

// Store persists issued codes and counts issuance per destination.
type Store interface {
	Save(ctx context.Context, code Code, ttl time.Duration) error
	Get(ctx context.Context, channel, destination string) (Code, error)
	Delete(ctx context.Context, channel, destination string) error
	CountIssue(ctx context.Context, channel, destination string, window time.Duration) (int64, error)
}

// Config tunes code lifetime, attempt budget and issuance rate.
type Config struct {
	TTL         time.Duration
	MaxAttempts int
	MaxIssues   int
	IssueWindow time.Duration
	HashCost    int
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = 10 * time.Minute
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.MaxIssues <= 0 {
		c.MaxIssues = 5
	}
	if c.IssueWindow <= 0 {
		c.IssueWindow = 15 * time.Minute
	}
	if c.HashCost == 0 {
		c.HashCost = bcrypt.DefaultCost
	}
	return c
}

// Service issues codes through a notifier and verifies them.
type Service struct {
	store    Store
	notifier notification.Notifier
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a verification service.
func NewService(store Store, notifier notification.Notifier, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Issue generates a fresh code for destination, replacing any previous one, and delivers it.
func (s *Service) Issue(ctx context.Context, channel, destination string) (time.Time, error) {
	count, err := s.store.CountIssue(ctx, channel, destination, s.cfg.IssueWindow)
	if err != nil {
		return time.Time{}, fmt.Errorf("count issued codes: %w", err)
	}
	if count > int64(s.cfg.MaxIssues) {
		return time.Time{}, ErrRateLimited
	}

	plain, err := generate(CodeLength)
	if err != nil {
		return time.Time{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.cfg.HashCost)
	if err != nil {
		return time.Time{}, fmt.Errorf("hash code: %w", err)
	}

	now := s.now()
	code := Code{
		Channel:     channel,
		Destination: destination,
		Hash:        hash,
		MaxAttempts: s.cfg.MaxAttempts,
		ExpiresAt:   now.Add(s.cfg.TTL),
		CreatedAt:   now,
	}
	if err := s.store.Save(ctx, code, s.cfg.TTL); err != nil {
		return time.Time{}, fmt.Errorf("store code: %w", err)
	}

	msg := notification.Message{
		Kind:        notification.KindVerificationCode,
		Channel:     channel,
		Destination: destination,
		Subject:     "Your Tangent verification code",
		Body:        fmt.Sprintf("Your Tangent verification code is %s", plain),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		return time.Time{}, fmt.Errorf("deliver code: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("verification code issued", slog.String("channel", channel), slog.Time("expires_at", code.ExpiresAt))
	}
	return code.ExpiresAt, nil
}

// Verify checks candidate against the stored code and consumes it on success.
func (s *Service) Verify(ctx context.Context, channel, destination, candidate string) error {
	code, err := s.store.Get(ctx, channel, destination)
	if err != nil {
		return err
	}

	now := s.now()
	if now.After(code.ExpiresAt) {
		_ = s.store.Delete(ctx, channel, destination)
		return ErrExpired
	}
	if code.Attempts >= code.MaxAttempts {
		return ErrTooManyAttempts
	}

	if err := bcrypt.CompareHashAndPassword(code.Hash, []byte(candidate)); err != nil {
		code.Attempts++
		remaining := code.MaxAttempts - code.Attempts
		if err := s.store.Save(ctx, code, code.ExpiresAt.Sub(now)); err != nil {
			return fmt.Errorf("record attempt: %w", err)
		}
		if remaining <= 0 {
			return ErrTooManyAttempts
		}
		return &AttemptError{Remaining: remaining}
	}

	return s.store.Delete(ctx, channel, destination)
}

func generate(n int) (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < n; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
