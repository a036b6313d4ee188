package kyc

import (
	"errors"
	"testing"
)

func TestTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusNotStarted, StatusPending, true},
		{StatusPending, StatusInReview, true},
		{StatusInReview, StatusApproved, true},
		{StatusInReview, StatusRejected, true},
		{StatusRejected, StatusPending, true},
		{StatusNotStarted, StatusApproved, false},
		{StatusApproved, StatusPending, false},
	}
	for _, tc := range cases {
		_, err := Transition(tc.from, tc.to)
		if tc.ok && err != nil {
			t.Fatalf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s -> %s: expected ErrInvalidTransition, got %v", tc.from, tc.to, err)
		}
	}
}

func TestRedirectURL(t *testing.T) {
	got, err := RedirectURL("https://connect.stripe.com/setup/example", "sess-1")
	if err != nil {
		t.Fatalf("redirect url: %v", err)
	}
	if got != "https://connect.stripe.com/setup/example?reference=sess-1" {
		t.Fatalf("unexpected url %s", got)
	}

	if _, err := RedirectURL("/relative", "x"); err == nil {
		t.Fatalf("expected relative url to be rejected")
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("")
	if err != nil || s != StatusNotStarted {
		t.Fatalf("expected not_started default, got %q %v", s, err)
	}
	if _, err := ParseStatus("verified"); err == nil {
		t.Fatalf("expected unknown status error")
	}
}
