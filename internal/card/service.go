package card

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tangent-app/tangent/internal/events"
)

const defaultCurrency = "USD"

// Service issues and lists virtual cards.
type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService builds a card service. publisher may be nil.
func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

// IssueInput describes a new virtual card.
type IssueInput struct {
	UserID string
	Name   string
	Type   Type
}

// IssueVirtual creates a zero-balance virtual card. The user's first card becomes the default.
func (s *Service) IssueVirtual(ctx context.Context, input IssueInput) (Card, error) {
	if _, err := uuid.Parse(input.UserID); err != nil {
		return Card{}, fmt.Errorf("invalid user id: %w", err)
	}
	existing, err := s.repo.ListByUser(ctx, input.UserID)
	if err != nil {
		return Card{}, err
	}
	lastFour, err := randomDigits(4)
	if err != nil {
		return Card{}, err
	}

	kind := input.Type
	if kind == "" {
		kind = TypeMastercard
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = "Tangent Card"
	}

	card := Card{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		Name:      name,
		LastFour:  lastFour,
		Currency:  defaultCurrency,
		Type:      kind,
		Gradient:  Gradients[len(existing)%len(Gradients)],
		IsDefault: len(existing) == 0,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, card); err != nil {
		return Card{}, err
	}

	if s.publisher != nil {
		ev := events.New(events.KindCardIssued, card.UserID, map[string]string{"card_id": card.ID, "type": string(card.Type)})
		if err := s.publisher.Publish(ctx, ev); err != nil && s.logger != nil {
			s.logger.Warn("card event publish failed", slog.Any("error", err))
		}
	}
	return card, nil
}

// List returns the user's cards, default first.
func (s *Service) List(ctx context.Context, userID string) ([]Card, error) {
	return s.repo.ListByUser(ctx, userID)
}

// SetDefault makes cardID the user's default card.
func (s *Service) SetDefault(ctx context.Context, userID, cardID string) error {
	return s.repo.SetDefault(ctx, userID, cardID)
}

func randomDigits(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate card digits: %w", err)
		}
		b.WriteString(d.String())
	}
	return b.String(), nil
}
