package identity

import (
	"time"

	"github.com/tangent-app/tangent/internal/kyc"
)

// Account tiers. Tier one unlocks once KYC is approved.
const (
	TierZero = "tier0"
	TierOne  = "tier1"
)

// Onboarding and account statuses stored on the user.
const (
	OnboardingCompleted = "completed"
	AccountActive       = "active"
)

// Auth providers.
const (
	ProviderPhone  = "phone"
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// Address is a US postal address.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZIPCode string `json:"zip_code"`
	Country string `json:"country"`
}

// User represents a registered Tangent account.
type User struct {
	ID                       string
	Email                    string
	AuthProvider             string
	GoogleID                 string
	FullName                 string
	Username                 string
	DateOfBirth              *time.Time
	Address                  Address
	PhoneNumber              string
	PhoneCountryCode         string
	PhoneVerified            bool
	PhoneVerifiedAt          *time.Time
	PINHash                  []byte
	PINSetAt                 *time.Time
	DeviceID                 string
	TokenVersion             int
	Tier                     string
	KYCStatus                kyc.Status
	OnboardingStatus         string
	OnboardingCompletedSteps []string
	NotificationsEnabled     bool
	MarketingEmailsEnabled   bool
	PreferredLanguage        string
	AccountStatus            string
	CreatedAt                time.Time
	UpdatedAt                time.Time
	LastLoginAt              *time.Time
}

// Registration carries the fields collected during onboarding.
// Either PIN or an already computed PINHash must be set.
type Registration struct {
	Email          string
	AuthProvider   string
	GoogleID       string
	FullName       string
	Username       string
	DateOfBirth    *time.Time
	Address        Address
	PhoneNumber    string
	PhoneVerified  bool
	PIN            string
	PINHash        []byte
	DeviceID       string
	KYCStatus      kyc.Status
	CompletedSteps []string
	Language       string
}

// Credentials request structure.
type Credentials struct {
	Phone    string
	PIN      string
	DeviceID string
}
