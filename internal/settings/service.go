// Package settings applies account changes made after onboarding and audits each one.
package settings

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/tangent-app/tangent/internal/audit"
	"github.com/tangent-app/tangent/internal/events"
	"github.com/tangent-app/tangent/internal/identity"
	"github.com/tangent-app/tangent/internal/notification"
	"github.com/tangent-app/tangent/internal/validate"
)

// ErrPINMismatch is returned when the new PIN and its confirmation differ.
var ErrPINMismatch = errors.New("PINs don't match")

// Verifier issues and checks one-time codes.
type Verifier interface {
	Issue(ctx context.Context, channel, destination string) (time.Time, error)
	Verify(ctx context.Context, channel, destination, code string) error
}

// Service changes PIN, phone, address and notification preferences.
type Service struct {
	identities *identity.Service
	verifier   Verifier
	audit      audit.Recorder
	publisher  events.Publisher
	logger     *slog.Logger
}

// NewService wires the settings service.
func NewService(identities *identity.Service, verifier Verifier, recorder audit.Recorder, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{identities: identities, verifier: verifier, audit: recorder, publisher: publisher, logger: logger}
}

// Origin describes where a change request came from.
type Origin struct {
	UserID   string
	ClientIP string
	DeviceID string
}

// ChangePIN replaces the PIN after checking the current one and the confirmation.
func (s *Service) ChangePIN(ctx context.Context, o Origin, current, next, confirm string) error {
	if err := validate.PIN("new_pin", next); err != nil {
		return err
	}
	if next != confirm {
		return ErrPINMismatch
	}
	if err := s.identities.ChangePIN(ctx, o.UserID, current, next); err != nil {
		return err
	}
	s.changed(ctx, o, audit.SettingPIN, "", "")
	return nil
}

// RequestPhoneChange sends a verification code to the new number and returns it in E.164 form.
func (s *Service) RequestPhoneChange(ctx context.Context, o Origin, raw string) (string, time.Time, error) {
	e164, err := validate.USPhone(raw)
	if err != nil {
		return "", time.Time{}, err
	}
	expires, err := s.verifier.Issue(ctx, notification.ChannelSMS, e164)
	if err != nil {
		return "", time.Time{}, err
	}
	return e164, expires, nil
}

// ConfirmPhoneChange stores the new number once its code checks out.
func (s *Service) ConfirmPhoneChange(ctx context.Context, o Origin, raw, code string) (string, error) {
	e164, err := validate.USPhone(raw)
	if err != nil {
		return "", err
	}
	if err := validate.Digits("code", code, 6); err != nil {
		return "", err
	}
	user, err := s.identities.Get(ctx, o.UserID)
	if err != nil {
		return "", err
	}
	if err := s.verifier.Verify(ctx, notification.ChannelSMS, e164, code); err != nil {
		return "", err
	}
	if err := s.identities.UpdatePhone(ctx, o.UserID, e164); err != nil {
		return "", err
	}
	s.changed(ctx, o, audit.SettingPhone, validate.DisplayUSPhone(user.PhoneNumber), validate.DisplayUSPhone(e164))
	return validate.DisplayUSPhone(e164), nil
}

// ChangeAddress replaces the home address. Every field is required.
func (s *Service) ChangeAddress(ctx context.Context, o Origin, addr identity.Address) error {
	user, err := s.identities.Get(ctx, o.UserID)
	if err != nil {
		return err
	}
	if err := s.identities.UpdateAddress(ctx, o.UserID, addr); err != nil {
		return err
	}
	s.changed(ctx, o, audit.SettingAddress, formatAddress(user.Address), formatAddress(addr))
	return nil
}

// SetNotifications stores push and marketing preferences.
func (s *Service) SetNotifications(ctx context.Context, o Origin, push, marketing bool) error {
	user, err := s.identities.Get(ctx, o.UserID)
	if err != nil {
		return err
	}
	if err := s.identities.SetNotifications(ctx, o.UserID, push, marketing); err != nil {
		return err
	}
	s.changed(ctx, o, audit.SettingNotifications,
		formatPrefs(user.NotificationsEnabled, user.MarketingEmailsEnabled), formatPrefs(push, marketing))
	return nil
}

// History returns the user's most recent audited changes.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]audit.Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.audit.ListByUser(ctx, userID, limit)
}

func (s *Service) changed(ctx context.Context, o Origin, setting audit.SettingType, oldValue, newValue string) {
	entry := audit.Entry{
		UserID:      o.UserID,
		SettingType: setting,
		OldValue:    oldValue,
		NewValue:    newValue,
		IPAddress:   o.ClientIP,
		DeviceID:    o.DeviceID,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("settings audit failed", slog.String("setting", string(setting)), slog.Any("error", err))
	}
	if s.publisher == nil {
		return
	}
	ev := events.New(events.KindSettingsChanged, o.UserID, map[string]string{"setting": string(setting)})
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("settings event publish failed", slog.Any("error", err))
	}
}

func formatAddress(a identity.Address) string {
	if a.Street == "" {
		return ""
	}
	return a.Street + ", " + a.City + ", " + a.State + " " + a.ZIPCode
}

func formatPrefs(push, marketing bool) string {
	return "push=" + strconv.FormatBool(push) + " marketing=" + strconv.FormatBool(marketing)
}
