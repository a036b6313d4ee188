package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertEnglish(t *testing.T) {
	loc, err := New("en")
	require.NoError(t, err)

	alert := loc.Alert("en", MsgPINMismatch, nil)
	assert.Equal(t, "PINs Don't Match", alert.Title)
	assert.Equal(t, "The PINs you entered don't match. Please try again.", alert.Message)
}

func TestMessageTemplate(t *testing.T) {
	loc, err := New("en")
	require.NoError(t, err)

	got := loc.Message("en", MsgPhoneVerifySubtitle, map[string]any{"Phone": "5551234567"})
	assert.Contains(t, got, "5551234567")

	got = loc.Message("es", MsgPhoneVerifySubtitle, map[string]any{"Phone": "5551234567"})
	assert.Contains(t, got, "Ingresa")
}

func TestResolve(t *testing.T) {
	loc, err := New("en")
	require.NoError(t, err)

	assert.Equal(t, "es", loc.Resolve("es-MX,es;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", loc.Resolve("fr-FR"))
	assert.Equal(t, "en", loc.Resolve(""))
}

func TestUnknownMessage(t *testing.T) {
	loc, err := New("en")
	require.NoError(t, err)
	assert.Equal(t, "missing_id", loc.Message("en", "missing_id", nil))
}
