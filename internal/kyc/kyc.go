// Package kyc tracks identity verification status delegated to the hosted provider.
package kyc

import (
	"errors"
	"fmt"
	"net/url"
)

// Status is the verification state stored on the user record.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusPending    Status = "pending"
	StatusInReview   Status = "in_review"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

// ErrInvalidTransition is returned when a status change is not allowed.
var ErrInvalidTransition = errors.New("invalid kyc status transition")

var transitions = map[Status][]Status{
	StatusNotStarted: {StatusPending},
	StatusPending:    {StatusInReview, StatusApproved, StatusRejected},
	StatusInReview:   {StatusApproved, StatusRejected},
	StatusRejected:   {StatusPending},
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusNotStarted, StatusPending, StatusInReview, StatusApproved, StatusRejected:
		return s, nil
	case "":
		return StatusNotStarted, nil
	default:
		return "", fmt.Errorf("unknown kyc status %q", raw)
	}
}

// CanTransition reports whether s may move to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns next when the move is legal.
func Transition(from, next Status) (Status, error) {
	if !from.CanTransition(next) {
		return from, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
	}
	return next, nil
}

// RedirectURL appends the onboarding reference to the provider URL so the
// provider callback can be correlated later.
func RedirectURL(base, reference string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse kyc url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("kyc url must be absolute: %q", base)
	}
	if reference != "" {
		q := u.Query()
		q.Set("reference", reference)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
