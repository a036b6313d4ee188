package onboarding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tangent-app/tangent/internal/auth"
	"github.com/tangent-app/tangent/internal/card"
	"github.com/tangent-app/tangent/internal/identity"
	"github.com/tangent-app/tangent/internal/kyc"
	"github.com/tangent-app/tangent/internal/validate"
	"github.com/tangent-app/tangent/internal/wallet"
)

// Completion is returned once a session reaches home.
type Completion struct {
	UserID         string          `json:"user_id"`
	WalletID       string          `json:"wallet_id,omitempty"`
	WalletProvider string          `json:"wallet_provider,omitempty"`
	CardID         string          `json:"card_id,omitempty"`
	Tokens         *auth.TokenPair `json:"tokens,omitempty"`
}

// Completer turns a completed session into an account.
type Completer interface {
	Complete(ctx context.Context, s *Session) (*Completion, error)
}

// AccountCompleter registers the user, then connects the chosen wallet,
// issues a first virtual card and signs the user in.
type AccountCompleter struct {
	identities *identity.Service
	wallets    *wallet.Service
	cards      *card.Service
	tokens     *auth.Service
	logger     *slog.Logger
}

// NewAccountCompleter wires the account services. wallets, cards and tokens may be nil.
func NewAccountCompleter(identities *identity.Service, wallets *wallet.Service, cards *card.Service, tokens *auth.Service, logger *slog.Logger) *AccountCompleter {
	return &AccountCompleter{identities: identities, wallets: wallets, cards: cards, tokens: tokens, logger: logger}
}

// Complete fails only if registration fails; wallet and card errors are logged.
func (a *AccountCompleter) Complete(ctx context.Context, s *Session) (*Completion, error) {
	reg, err := registrationFrom(s)
	if err != nil {
		return nil, err
	}
	user, err := a.identities.Register(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	out := &Completion{UserID: user.ID}

	out.WalletProvider = s.Field(FieldWalletProvider)
	// Without an address the client links the wallet later through the wallets API.
	if a.wallets != nil && out.WalletProvider != "" && s.Field(FieldWalletAddress) != "" {
		w, err := a.wallets.Connect(ctx, wallet.ConnectInput{
			UserID:   user.ID,
			Provider: s.Field(FieldWalletProvider),
			Address:  s.Field(FieldWalletAddress),
		})
		if err != nil {
			a.warn("wallet connect failed", user.ID, err)
		} else {
			out.WalletID = w.ID
		}
	}

	if a.cards != nil {
		c, err := a.cards.IssueVirtual(ctx, card.IssueInput{UserID: user.ID, Name: user.FullName})
		if err != nil {
			a.warn("card issue failed", user.ID, err)
		} else {
			out.CardID = c.ID
		}
	}

	if a.tokens != nil {
		pair, err := a.tokens.Login(user)
		if err != nil {
			a.warn("token issue failed", user.ID, err)
		} else {
			out.Tokens = &pair
		}
	}
	return out, nil
}

func (a *AccountCompleter) warn(msg, userID string, err error) {
	if a.logger == nil {
		return
	}
	a.logger.Warn(msg, slog.String("user_id", userID), slog.Any("error", err))
}

func registrationFrom(s *Session) (identity.Registration, error) {
	reg := identity.Registration{
		Email:         s.Field(FieldEmail),
		AuthProvider:  s.Field(FieldAuthProvider),
		GoogleID:      s.Field(FieldGoogleID),
		FullName:      s.Field(FieldFullName),
		Username:      s.Field(FieldUsername),
		PhoneNumber:   s.Field(FieldPhoneE164),
		PhoneVerified: s.Field(FieldPhoneVerified) == "true",
		PINHash:       []byte(s.Field(FieldPINHash)),
		Language:      s.Language,
		Address: identity.Address{
			Street:  s.Field(FieldStreet),
			City:    s.Field(FieldCity),
			State:   s.Field(FieldState),
			ZIPCode: s.Field(FieldZIPCode),
			Country: s.Field(FieldCountry),
		},
	}
	if reg.PhoneNumber == "" {
		reg.PhoneNumber = s.Field(FieldPhoneNumber)
	}
	if len(reg.PINHash) == 0 {
		return identity.Registration{}, validate.Fieldf("pin", "is required")
	}
	if raw := s.Field(FieldDateOfBirth); raw != "" {
		dob, err := time.Parse(validate.DateLayout, raw)
		if err != nil {
			return identity.Registration{}, validate.Fieldf(FieldDateOfBirth, "must be MM/DD/YYYY")
		}
		reg.DateOfBirth = &dob
	}
	if raw := s.Field(FieldKYCStatus); raw != "" {
		status, err := kyc.ParseStatus(raw)
		if err != nil {
			return identity.Registration{}, err
		}
		reg.KYCStatus = status
	}
	for _, step := range s.CompletedSteps {
		reg.CompletedSteps = append(reg.CompletedSteps, string(step))
	}
	return reg, nil
}
