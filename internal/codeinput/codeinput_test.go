package codeinput

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeAdvancesFocus(t *testing.T) {
	in := New(CodeLength)
	for i := 0; i < CodeLength-1; i++ {
		in.Type(i, '1'+rune(i))
		assert.Equal(t, i+1, in.Focus(), "focus after typing into box %d", i)
	}

	in.Type(CodeLength-1, '9')
	assert.Equal(t, CodeLength-1, in.Focus(), "last box keeps focus")
	assert.True(t, in.Complete())
	assert.Equal(t, "123459", in.Value())
}

func TestTypeIgnoresNonDigits(t *testing.T) {
	in := New(PINLength)
	in.Type(0, 'a')
	assert.Equal(t, "", in.Box(0))
	assert.Equal(t, 0, in.Focus())
	assert.False(t, in.Complete())
}

func TestBackspace(t *testing.T) {
	in := New(PINLength)
	in.Type(0, '1')
	in.Type(1, '2')

	// box 2 is empty: focus moves back and clears box 1
	in.Backspace(2)
	assert.Equal(t, 1, in.Focus())
	assert.Equal(t, "", in.Box(1))
	assert.Equal(t, "1", in.Value())

	// box 0 holds a digit: it is cleared in place
	in.Backspace(0)
	assert.Equal(t, 0, in.Focus())
	assert.Equal(t, "", in.Value())

	// first box stays put
	in.Backspace(0)
	assert.Equal(t, 0, in.Focus())
}

func TestFromDigitsAndReset(t *testing.T) {
	in := FromDigits(PINLength, []string{"1", "2x", "", "4"})
	require.Equal(t, PINLength, in.Len())
	assert.False(t, in.Complete())
	assert.Equal(t, 2, in.Focus())
	assert.Equal(t, "124", in.Value())

	in.Reset()
	assert.Equal(t, "", in.Value())
	assert.Equal(t, 0, in.Focus())
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "123456", Sanitize("12-34 56 78", 6))
	assert.Equal(t, "12", Sanitize("a1b2", 6))
	assert.Equal(t, "", Sanitize("", 4))
}
