package onboarding

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// Collected field names.
const (
	FieldAuthProvider   = "auth_provider"
	FieldEmail          = "email"
	FieldGoogleID       = "google_id"
	FieldPhoneNumber    = "phone_number"
	FieldPhoneE164      = "phone_e164"
	FieldPhoneVerified  = "phone_verified"
	FieldFullName       = "full_name"
	FieldUsername       = "username"
	FieldDateOfBirth    = "date_of_birth"
	FieldStreet         = "street"
	FieldCity           = "city"
	FieldState          = "state"
	FieldZIPCode        = "zip_code"
	FieldCountry        = "country"
	FieldKYCStatus      = "kyc_status"
	FieldPINHash        = "pin_hash"
	FieldWalletProvider = "wallet_provider"
	FieldWalletAddress  = "wallet_address"
)

// Session accumulates fields entered during onboarding.
// History is a stack of visited steps used for back navigation.
type Session struct {
	ID             string            `json:"id"`
	CurrentStep    StepID            `json:"current_step"`
	Fields         map[string]string `json:"fields"`
	History        []StepID          `json:"history"`
	CompletedSteps []StepID          `json:"completed_steps"`
	Status         Status            `json:"status"`
	Language       string            `json:"language"`
	StartedAt      time.Time         `json:"started_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewSession starts a session at initial.
func NewSession(initial StepID, lang string, now time.Time) *Session {
	return &Session{
		ID:          uuid.NewString(),
		CurrentStep: initial,
		Fields:      make(map[string]string),
		Status:      StatusInProgress,
		Language:    lang,
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.Fields = make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		c.Fields[k] = v
	}
	c.History = append([]StepID(nil), s.History...)
	c.CompletedSteps = append([]StepID(nil), s.CompletedSteps...)
	return &c
}

// Field returns a collected value.
func (s *Session) Field(name string) string {
	return s.Fields[name]
}

// CanGoBack reports whether the history stack has an entry.
func (s *Session) CanGoBack() bool {
	return len(s.History) > 0
}

func (s *Session) push(step StepID) {
	s.History = append(s.History, step)
}

func (s *Session) pop() (StepID, bool) {
	if len(s.History) == 0 {
		return "", false
	}
	step := s.History[len(s.History)-1]
	s.History = s.History[:len(s.History)-1]
	return step, true
}

func (s *Session) markCompleted(step StepID) {
	for _, done := range s.CompletedSteps {
		if done == step {
			return
		}
	}
	s.CompletedSteps = append(s.CompletedSteps, step)
}
