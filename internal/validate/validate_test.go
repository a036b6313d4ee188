package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZIP(t *testing.T) {
	tests := []struct {
		zip string
		ok  bool
	}{
		{"94105", true},
		{"94105-1234", true},
		{"9410", false},
		{"abcde", false},
		{"94105-123", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.zip, func(t *testing.T) {
			err := ZIP(tt.zip)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			verr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, "zip_code", verr.Field)
		})
	}
}

func TestUsername(t *testing.T) {
	name, err := Username("@John_Doe")
	require.NoError(t, err)
	assert.Equal(t, "john_doe", name)

	_, err = Username("ab")
	assert.Error(t, err)

	_, err = Username("john doe")
	assert.Error(t, err)
}

func TestDateOfBirth(t *testing.T) {
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	dob, err := DateOfBirth("01/01/1990", now)
	require.NoError(t, err)
	assert.Equal(t, 1990, dob.Year())

	_, err = DateOfBirth("02/30/1990", now)
	assert.Error(t, err, "february 30th does not exist")

	_, err = DateOfBirth("1990-01-01", now)
	assert.Error(t, err)

	_, err = DateOfBirth("01/01/2030", now)
	assert.Error(t, err)
}

func TestPIN(t *testing.T) {
	assert.NoError(t, PIN("pin", "1234"))
	assert.Error(t, PIN("pin", "123"))
	assert.Error(t, PIN("pin", "12345"))
	assert.Error(t, PIN("pin", "12a4"))
}

func TestUSPhone(t *testing.T) {
	e164, err := USPhone("(555) 123-4567")
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", e164)

	e164, err = USPhone("+1 555 123 4567")
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", e164)

	_, err = USPhone("12345")
	assert.Error(t, err)

	assert.Equal(t, "+1 (555) 123-4567", DisplayUSPhone("+15551234567"))
	assert.Equal(t, "+44 20", DisplayUSPhone("+44 20"))
}
