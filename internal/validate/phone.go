package validate

import (
	"fmt"
	"strings"
)

// USCountryCode prefixes every normalized number.
const USCountryCode = "+1"

// StripDigits drops every non-digit rune.
func StripDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// USPhone normalizes a 10-digit US number, optionally prefixed with 1 or +1,
// and returns its E.164 form.
func USPhone(raw string) (string, error) {
	digits := StripDigits(raw)
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", Fieldf("phone_number", "please enter a valid 10-digit phone number")
	}
	return USCountryCode + digits, nil
}

// DisplayUSPhone renders an E.164 US number as +1 (555) 123-4567. Other inputs are returned as given.
func DisplayUSPhone(e164 string) string {
	digits := StripDigits(e164)
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return e164
	}
	return fmt.Sprintf("%s (%s) %s-%s", USCountryCode, digits[:3], digits[3:6], digits[6:])
}
