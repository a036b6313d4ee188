package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tangent-app/tangent/internal/audit"
	"github.com/tangent-app/tangent/internal/events"
	"github.com/tangent-app/tangent/internal/validate"
)

// DefaultChainID is Ethereum mainnet.
const DefaultChainID = 1

// Service manages wallet connections.
type Service struct {
	repo      Repository
	audit     audit.Recorder
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService builds a wallet service instance. audit and publisher may be nil.
func NewService(repo Repository, recorder audit.Recorder, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: recorder, publisher: publisher, logger: logger}
}

// ConnectInput captures data required to connect a wallet.
type ConnectInput struct {
	UserID   string
	Provider string
	Address  string
	Name     string
	ChainID  int64
	ClientIP string
}

// Connect stores a new wallet. The first wallet of a user becomes the default.
func (s *Service) Connect(ctx context.Context, input ConnectInput) (Wallet, error) {
	if _, err := uuid.Parse(input.UserID); err != nil {
		return Wallet{}, fmt.Errorf("invalid user id: %w", err)
	}
	provider, err := ParseProvider(input.Provider)
	if err != nil {
		return Wallet{}, validate.Fieldf("wallet_provider", "%s", err.Error())
	}
	address := strings.TrimSpace(input.Address)
	if err := validate.Required("wallet_address", address); err != nil {
		return Wallet{}, err
	}

	existing, err := s.repo.ListByUser(ctx, input.UserID)
	if err != nil {
		return Wallet{}, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = string(provider)
	}
	chainID := input.ChainID
	if chainID == 0 {
		chainID = DefaultChainID
	}

	wallet := Wallet{
		ID:          uuid.New().String(),
		UserID:      input.UserID,
		Name:        name,
		Address:     address,
		Type:        provider,
		ChainID:     chainID,
		IsDefault:   len(existing) == 0,
		IsActive:    true,
		ConnectedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, wallet); err != nil {
		return Wallet{}, err
	}

	s.record(ctx, audit.Entry{UserID: wallet.UserID, SettingType: audit.SettingWalletAdded, NewValue: ShortAddress(wallet.Address), IPAddress: input.ClientIP})
	s.publish(ctx, events.New(events.KindWalletConnected, wallet.UserID, map[string]string{
		"wallet_id": wallet.ID,
		"provider":  string(wallet.Type),
	}))
	return wallet, nil
}

// List returns the user's active wallets, default first.
func (s *Service) List(ctx context.Context, userID string) ([]Wallet, error) {
	return s.repo.ListByUser(ctx, userID)
}

// SetDefault makes walletID the user's default wallet.
func (s *Service) SetDefault(ctx context.Context, userID, walletID string) error {
	return s.repo.SetDefault(ctx, userID, walletID)
}

// Remove disconnects a wallet. Removing the default promotes the most recently connected remaining wallet.
func (s *Service) Remove(ctx context.Context, userID, walletID, clientIP string) error {
	wallet, err := s.repo.Get(ctx, userID, walletID)
	if err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, userID, walletID); err != nil {
		return err
	}

	if wallet.IsDefault {
		remaining, err := s.repo.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			if err := s.repo.SetDefault(ctx, userID, remaining[0].ID); err != nil {
				return fmt.Errorf("reassign default wallet: %w", err)
			}
		}
	}

	s.record(ctx, audit.Entry{UserID: userID, SettingType: audit.SettingWalletRemoved, OldValue: ShortAddress(wallet.Address), IPAddress: clientIP})
	return nil
}

func (s *Service) record(ctx context.Context, entry audit.Entry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil && s.logger != nil {
		s.logger.Warn("wallet audit failed", slog.String("user_id", entry.UserID), slog.Any("error", err))
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil && s.logger != nil {
		s.logger.Warn("wallet event publish failed", slog.String("kind", event.Kind), slog.Any("error", err))
	}
}
