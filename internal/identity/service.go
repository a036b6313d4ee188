package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tangent-app/tangent/internal/kyc"
	"github.com/tangent-app/tangent/internal/validate"
)

var (
	ErrIncorrectPIN   = errors.New("incorrect PIN")
	ErrDeviceRequired = errors.New("device binding required")
	ErrDeviceMismatch = errors.New("device mismatch")
)

// Service manages identity lifecycle.
type Service struct {
	repo     Repository
	hashCost int
	now      func() time.Time
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, hashCost: bcrypt.DefaultCost, now: func() time.Time { return time.Now().UTC() }}
}

// HashPIN validates and hashes a 4-digit PIN.
func HashPIN(pin string, cost int) ([]byte, error) {
	if err := validate.PIN("pin", pin); err != nil {
		return nil, err
	}
	return bcrypt.GenerateFromPassword([]byte(pin), cost)
}

// Register creates a tier-zero user from completed onboarding data.
func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	if reg.PhoneNumber == "" {
		return User{}, validate.Fieldf("phone_number", "is required")
	}

	hash := reg.PINHash
	if len(hash) == 0 {
		var err error
		if hash, err = HashPIN(reg.PIN, s.hashCost); err != nil {
			return User{}, err
		}
	}

	status := reg.KYCStatus
	if status == "" {
		status = kyc.StatusNotStarted
	}
	provider := reg.AuthProvider
	if provider == "" {
		provider = ProviderPhone
	}
	lang := reg.Language
	if lang == "" {
		lang = "en"
	}

	now := s.now()
	user := User{
		ID:                       uuid.New().String(),
		Email:                    reg.Email,
		AuthProvider:             provider,
		GoogleID:                 reg.GoogleID,
		FullName:                 reg.FullName,
		Username:                 reg.Username,
		DateOfBirth:              reg.DateOfBirth,
		Address:                  reg.Address,
		PhoneNumber:              reg.PhoneNumber,
		PhoneCountryCode:         validate.USCountryCode,
		PhoneVerified:            reg.PhoneVerified,
		PINHash:                  hash,
		PINSetAt:                 &now,
		DeviceID:                 reg.DeviceID,
		Tier:                     TierZero,
		KYCStatus:                status,
		OnboardingStatus:         OnboardingCompleted,
		OnboardingCompletedSteps: reg.CompletedSteps,
		NotificationsEnabled:     true,
		PreferredLanguage:        lang,
		AccountStatus:            AccountActive,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if reg.PhoneVerified {
		user.PhoneVerifiedAt = &now
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// Authenticate verifies credentials and device binding.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	phone, err := validate.USPhone(creds.Phone)
	if err != nil {
		phone = creds.Phone
	}
	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PINHash, []byte(creds.PIN)); err != nil {
		return User{}, ErrIncorrectPIN
	}

	if user.DeviceID == "" {
		if creds.DeviceID == "" {
			return User{}, ErrDeviceRequired
		}
		if err := s.repo.UpdateDevice(ctx, user.ID, creds.DeviceID); err != nil {
			return User{}, err
		}
		user.DeviceID = creds.DeviceID
	} else if creds.DeviceID != "" && user.DeviceID != creds.DeviceID {
		return User{}, ErrDeviceMismatch
	}

	now := s.now()
	if err := s.repo.TouchLogin(ctx, user.ID, now); err != nil {
		return User{}, err
	}
	user.LastLoginAt = &now

	return user, nil
}

// VerifyPIN checks pin against the stored hash.
func (s *Service) VerifyPIN(ctx context.Context, id, pin string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(user.PINHash, []byte(pin)); err != nil {
		return ErrIncorrectPIN
	}
	return nil
}

// ChangePIN replaces the PIN after verifying the current one.
func (s *Service) ChangePIN(ctx context.Context, id, current, next string) error {
	if err := s.VerifyPIN(ctx, id, current); err != nil {
		return err
	}
	hash, err := HashPIN(next, s.hashCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePIN(ctx, id, hash, s.now())
}

// UpdatePhone stores a verified E.164 phone number.
func (s *Service) UpdatePhone(ctx context.Context, id, e164 string) error {
	return s.repo.UpdatePhone(ctx, id, e164, s.now())
}

// UpdateAddress validates and stores a new address.
func (s *Service) UpdateAddress(ctx context.Context, id string, addr Address) error {
	required := []struct{ field, value string }{
		{"street", addr.Street},
		{"city", addr.City},
		{"state", addr.State},
	}
	for _, r := range required {
		if err := validate.Required(r.field, r.value); err != nil {
			return err
		}
	}
	if err := validate.ZIP(addr.ZIPCode); err != nil {
		return err
	}
	if addr.Country == "" {
		addr.Country = "US"
	}
	return s.repo.UpdateAddress(ctx, id, addr)
}

// SetNotifications stores notification preferences.
func (s *Service) SetNotifications(ctx context.Context, id string, push, marketing bool) error {
	return s.repo.UpdateNotifications(ctx, id, push, marketing)
}

// SetKYCStatus moves the KYC status along a legal transition. Approval promotes to tier one.
func (s *Service) SetKYCStatus(ctx context.Context, id string, next kyc.Status) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	status, err := kyc.Transition(user.KYCStatus, next)
	if err != nil {
		return User{}, err
	}
	tier := user.Tier
	if status == kyc.StatusApproved {
		tier = TierOne
	}
	if err := s.repo.UpdateKYC(ctx, id, status, tier); err != nil {
		return User{}, err
	}
	user.KYCStatus, user.Tier = status, tier
	return user, nil
}

// BumpTokenVersion invalidates every token issued so far.
func (s *Service) BumpTokenVersion(ctx context.Context, id string) (int, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	next := user.TokenVersion + 1
	if err := s.repo.UpdateTokenVersion(ctx, id, next); err != nil {
		return 0, fmt.Errorf("bump token version: %w", err)
	}
	return next, nil
}
