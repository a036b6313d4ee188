// Package validate holds the input rules shared by onboarding screens and settings changes.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the MM/DD/YYYY format used for dates of birth.
const DateLayout = "01/02/2006"

var (
	zipPattern      = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)
)

// Error reports a rejected field. Handlers render it as 422.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Fieldf builds a validation error for field.
func Fieldf(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AsError unwraps a validation error from err.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Required rejects blank values.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return Fieldf(field, "is required")
	}
	return nil
}

// ZIP accepts 5-digit and ZIP+4 US postal codes.
func ZIP(zip string) error {
	if !zipPattern.MatchString(zip) {
		return Fieldf("zip_code", "please enter a valid ZIP code")
	}
	return nil
}

// Username strips a leading @, lowercases and checks the handle.
func Username(raw string) (string, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "@"))
	if !usernamePattern.MatchString(name) {
		return "", Fieldf("username", "must be 3-30 characters of a-z, 0-9, _ or .")
	}
	return name, nil
}

// DateOfBirth parses an MM/DD/YYYY date that exists and is not after now.
func DateOfBirth(raw string, now time.Time) (time.Time, error) {
	dob, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, Fieldf("date_of_birth", "must be a valid date in MM/DD/YYYY format")
	}
	if dob.After(now) {
		return time.Time{}, Fieldf("date_of_birth", "cannot be in the future")
	}
	return dob, nil
}

// Digits checks that value is exactly n ASCII digits.
func Digits(field, value string, n int) error {
	if len(value) != n {
		return Fieldf(field, "must be exactly %d digits", n)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return Fieldf(field, "must contain only digits")
		}
	}
	return nil
}

// PIN requires exactly four numeric digits.
func PIN(field, pin string) error {
	return Digits(field, pin, 4)
}
