// Package codeinput models a row of single-digit boxes used for verification codes and PINs.
// Type and Backspace follow the client's box editing; the server rebuilds submitted
// boxes with FromDigits and cleans typed codes with Sanitize.
package codeinput

import "strings"

// Lengths used by the onboarding screens.
const (
	PINLength  = 4
	CodeLength = 6
)

// Input is a fixed-length row of digit boxes with a focused index.
// The zero value is not usable; build one with New or FromDigits.
type Input struct {
	boxes []byte
	focus int
}

// New returns n empty boxes with focus on the first.
func New(n int) *Input {
	if n < 1 {
		n = 1
	}
	return &Input{boxes: make([]byte, n)}
}

// FromDigits fills n boxes from per-box entries. Each entry contributes its first digit;
// entries without a digit leave the box empty.
func FromDigits(n int, digits []string) *Input {
	in := New(n)
	for i := 0; i < len(digits) && i < n; i++ {
		if d := Sanitize(digits[i], 1); d != "" {
			in.Type(i, rune(d[0]))
		}
	}
	in.focus = in.firstEmpty()
	return in
}

// Len returns the number of boxes.
func (in *Input) Len() int { return len(in.boxes) }

// Focus returns the focused box index.
func (in *Input) Focus() int { return in.focus }

// Box returns the digit in box i, or "" when empty or out of range.
func (in *Input) Box(i int) string {
	if i < 0 || i >= len(in.boxes) || in.boxes[i] == 0 {
		return ""
	}
	return string(in.boxes[i])
}

// Type stores r in box i and advances focus. The last box keeps focus.
// Non-digit runes and out-of-range indexes are ignored.
func (in *Input) Type(i int, r rune) {
	if i < 0 || i >= len(in.boxes) || !isDigit(r) {
		return
	}
	in.boxes[i] = byte(r)
	if i < len(in.boxes)-1 {
		in.focus = i + 1
	} else {
		in.focus = i
	}
}

// Backspace clears box i. When box i is already empty and not the first, focus
// moves to the previous box and that box is cleared instead.
func (in *Input) Backspace(i int) {
	if i < 0 || i >= len(in.boxes) {
		return
	}
	if in.boxes[i] != 0 {
		in.boxes[i] = 0
		in.focus = i
		return
	}
	if i > 0 {
		in.boxes[i-1] = 0
		in.focus = i - 1
	}
}

// Value joins the filled boxes.
func (in *Input) Value() string {
	var b strings.Builder
	for _, d := range in.boxes {
		if d != 0 {
			b.WriteByte(d)
		}
	}
	return b.String()
}

// Complete reports whether every box holds a digit.
func (in *Input) Complete() bool {
	for _, d := range in.boxes {
		if d == 0 {
			return false
		}
	}
	return true
}

// Reset clears every box and focuses the first.
func (in *Input) Reset() {
	for i := range in.boxes {
		in.boxes[i] = 0
	}
	in.focus = 0
}

func (in *Input) firstEmpty() int {
	for i, d := range in.boxes {
		if d == 0 {
			return i
		}
	}
	return len(in.boxes) - 1
}

// Sanitize strips non-digits from text and truncates to n.
func Sanitize(text string, n int) string {
	var b strings.Builder
	for _, r := range text {
		if b.Len() == n {
			break
		}
		if isDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
