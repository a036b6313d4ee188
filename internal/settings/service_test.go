package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tangent-app/tangent/internal/audit"
	"github.com/tangent-app/tangent/internal/events"
	"github.com/tangent-app/tangent/internal/identity"
	"github.com/tangent-app/tangent/internal/logging"
	"github.com/tangent-app/tangent/internal/notification"
	"github.com/tangent-app/tangent/internal/validate"
	"github.com/tangent-app/tangent/internal/verification"
)

type fixture struct {
	svc       *Service
	users     *identity.Service
	sms       *notification.Recorder
	audit     *audit.MemoryRecorder
	published *events.Recorder
	user      identity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logging.Discard()
	users := identity.NewService(identity.NewMemoryRepository())
	user, err := users.Register(context.Background(), identity.Registration{
		FullName:    "Ana Smith",
		Username:    "ana",
		PhoneNumber: "+15551234567",
		PIN:         "1234",
		Address:     identity.Address{Street: "1 Market St", City: "San Francisco", State: "CA", ZIPCode: "94105", Country: "US"},
	})
	require.NoError(t, err)

	sms := notification.NewRecorder()
	verifier := verification.NewService(verification.NewMemoryStore(), sms, verification.Config{HashCost: bcrypt.MinCost}, logger)
	recorder := audit.NewMemoryRecorder()
	published := events.NewRecorder()

	return &fixture{
		svc:       NewService(users, verifier, recorder, published, logger),
		users:     users,
		sms:       sms,
		audit:     recorder,
		published: published,
		user:      user,
	}
}

func (f *fixture) origin() Origin {
	return Origin{UserID: f.user.ID, ClientIP: "203.0.113.7", DeviceID: "device-1"}
}

func TestChangePIN(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.ChangePIN(ctx, f.origin(), "1234", "5678", "8765"), ErrPINMismatch)
	assert.ErrorIs(t, f.svc.ChangePIN(ctx, f.origin(), "0000", "5678", "5678"), identity.ErrIncorrectPIN)

	_, ok := validateErr(f.svc.ChangePIN(ctx, f.origin(), "1234", "56a8", "56a8"))
	assert.True(t, ok)

	require.NoError(t, f.svc.ChangePIN(ctx, f.origin(), "1234", "5678", "5678"))
	assert.NoError(t, f.users.VerifyPIN(ctx, f.user.ID, "5678"))

	entries, err := f.svc.History(ctx, f.user.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.SettingPIN, entries[0].SettingType)
	assert.Empty(t, entries[0].NewValue)
	assert.Equal(t, "203.0.113.7", entries[0].IPAddress)
	assert.Equal(t, []string{events.KindSettingsChanged}, f.published.Kinds())
}

func TestPhoneChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e164, _, err := f.svc.RequestPhoneChange(ctx, f.origin(), "(415) 555-0100")
	require.NoError(t, err)
	assert.Equal(t, "+14155550100", e164)

	msg, ok := f.sms.Last(e164)
	require.True(t, ok)
	code := msg.Body[len(msg.Body)-verification.CodeLength:]

	display, err := f.svc.ConfirmPhoneChange(ctx, f.origin(), "4155550100", code)
	require.NoError(t, err)
	assert.Equal(t, "+1 (415) 555-0100", display)

	user, err := f.users.Get(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "+14155550100", user.PhoneNumber)

	entries, _ := f.svc.History(ctx, f.user.ID, 10)
	require.Len(t, entries, 1)
	assert.Equal(t, "+1 (555) 123-4567", entries[0].OldValue)
	assert.Equal(t, "+1 (415) 555-0100", entries[0].NewValue)

	_, err = f.svc.ConfirmPhoneChange(ctx, f.origin(), "4155550100", code)
	assert.ErrorIs(t, err, verification.ErrNotFound, "codes are single use")

	_, _, err = f.svc.RequestPhoneChange(ctx, f.origin(), "555-01")
	_, ok = validateErr(err)
	assert.True(t, ok)
}

func TestChangeAddressAndNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.ChangeAddress(ctx, f.origin(), identity.Address{Street: "2 Main St", City: "Austin", State: "TX", ZIPCode: "7870"})
	verr, ok := validateErr(err)
	require.True(t, ok)
	assert.Equal(t, "zip_code", verr.Field)

	require.NoError(t, f.svc.ChangeAddress(ctx, f.origin(), identity.Address{Street: "2 Main St", City: "Austin", State: "TX", ZIPCode: "78701-1234"}))
	user, _ := f.users.Get(ctx, f.user.ID)
	assert.Equal(t, "US", user.Address.Country)

	require.NoError(t, f.svc.SetNotifications(ctx, f.origin(), false, true))
	user, _ = f.users.Get(ctx, f.user.ID)
	assert.False(t, user.NotificationsEnabled)
	assert.True(t, user.MarketingEmailsEnabled)

	entries, _ := f.svc.History(ctx, f.user.ID, 10)
	require.Len(t, entries, 2)
	types := []audit.SettingType{entries[0].SettingType, entries[1].SettingType}
	assert.ElementsMatch(t, []audit.SettingType{audit.SettingAddress, audit.SettingNotifications}, types)
}

func validateErr(err error) (*validate.Error, bool) {
	return validate.AsError(err)
}
