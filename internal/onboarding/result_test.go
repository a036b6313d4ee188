package onboarding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodePayloadSanitizesTypedCode(t *testing.T) {
	p := pin(" 12-34 ")
	require.NoError(t, p.Validate(Policy{}))
	assert.Equal(t, "1234", p.Value())

	assert.EqualError(t, pin("12345").Validate(Policy{}), "pin: PIN must be exactly 4 digits")
	assert.EqualError(t, pin("12a4").Validate(Policy{}), "pin: PIN must be exactly 4 digits")
}

func TestCodePayloadFromDigits(t *testing.T) {
	r, err := DecodeResult(StepPINSetup, ActionNext, json.RawMessage(`{"digits":["1","2","3","4"]}`))
	require.NoError(t, err)
	require.NoError(t, r.Payload.Validate(Policy{}))
	assert.Equal(t, "1234", r.Payload.(*CodePayload).Value())

	r, err = DecodeResult(StepPINSetup, ActionNext, json.RawMessage(`{"digits":["1","","3","4"]}`))
	require.NoError(t, err)
	assert.EqualError(t, r.Payload.Validate(Policy{}), "pin: PIN must be exactly 4 digits")
}

func TestWalletPayloadAddressOptional(t *testing.T) {
	w := &WalletPayload{Provider: "metamask"}
	require.NoError(t, w.Validate(Policy{}))
	assert.Equal(t, map[string]string{FieldWalletProvider: "MetaMask"}, w.Fields())

	w = &WalletPayload{Provider: "metamask", Address: " 0xabc "}
	require.NoError(t, w.Validate(Policy{}))
	assert.Equal(t, "0xabc", w.Fields()[FieldWalletAddress])

	assert.Error(t, (&WalletPayload{Provider: "paypal"}).Validate(Policy{}))
}
