package onboarding

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tangent-app/tangent/internal/codeinput"
	"github.com/tangent-app/tangent/internal/validate"
	"github.com/tangent-app/tangent/internal/wallet"
)

// Placeholder values used for empty input when placeholder defaults are enabled.
const (
	PlaceholderEmail       = "test@example.com"
	PlaceholderPhone       = "+1234567890"
	PlaceholderFullName    = "John Doe"
	PlaceholderUsername    = "johndoe"
	PlaceholderDateOfBirth = "01/01/1990"
	PlaceholderStreet      = "123 Main St"
	PlaceholderCity        = "Anytown"
	PlaceholderState       = "CA"
	PlaceholderZIPCode     = "12345"
	DefaultCountry         = "US"
)

// Policy controls payload validation.
type Policy struct {
	Placeholders bool
	Now          func() time.Time
}

func (p Policy) now() time.Time {
	if p.Now == nil {
		return time.Now().UTC()
	}
	return p.Now()
}

// fill trims value and applies the placeholder or the required rule.
func (p Policy) fill(field, value, placeholder string) (string, error) {
	v := strings.TrimSpace(value)
	if v != "" {
		return v, nil
	}
	if p.Placeholders && placeholder != "" {
		return placeholder, nil
	}
	return "", validate.Required(field, v)
}

// Payload is the typed data a screen submits. Validate normalizes in place;
// Fields returns what gets merged into the session.
type Payload interface {
	Validate(p Policy) error
	Fields() map[string]string
}

// Result is the single tagged value every screen produces.
type Result struct {
	Step    StepID
	Action  Action
	Payload Payload
}

// EmailPayload is submitted by email-entry.
type EmailPayload struct {
	Email string `json:"email"`
}

func (e *EmailPayload) Validate(p Policy) (err error) {
	e.Email, err = p.fill(FieldEmail, e.Email, PlaceholderEmail)
	return err
}

func (e *EmailPayload) Fields() map[string]string {
	return map[string]string{FieldEmail: e.Email}
}

// GooglePayload is submitted by google-auth once the provider returns.
type GooglePayload struct {
	GoogleID string `json:"google_id"`
	Email    string `json:"email"`
}

func (g *GooglePayload) Validate(p Policy) (err error) {
	g.GoogleID = strings.TrimSpace(g.GoogleID)
	g.Email, err = p.fill(FieldEmail, g.Email, PlaceholderEmail)
	return err
}

func (g *GooglePayload) Fields() map[string]string {
	fields := map[string]string{FieldEmail: g.Email}
	if g.GoogleID != "" {
		fields[FieldGoogleID] = g.GoogleID
	}
	return fields
}

// PhonePayload is submitted by phone-entry. Any non-empty number is accepted;
// the E.164 form is derived when the number is a valid US number.
type PhonePayload struct {
	PhoneNumber string `json:"phone_number"`
	e164        string
}

func (ph *PhonePayload) Validate(p Policy) (err error) {
	if ph.PhoneNumber, err = p.fill(FieldPhoneNumber, ph.PhoneNumber, PlaceholderPhone); err != nil {
		return err
	}
	if ph.e164, err = validate.USPhone(ph.PhoneNumber); err != nil {
		ph.e164 = ph.PhoneNumber
	}
	return nil
}

func (ph *PhonePayload) Fields() map[string]string {
	return map[string]string{FieldPhoneNumber: ph.PhoneNumber, FieldPhoneE164: ph.e164}
}

// CodePayload is submitted by fixed-length code screens: phone-verify and the PIN steps.
// Either Code or the per-box Digits may be set.
type CodePayload struct {
	Code   string   `json:"code"`
	Digits []string `json:"digits"`
	length int
	field  string
}

func (c *CodePayload) Validate(Policy) error {
	c.Code = codeinput.Sanitize(c.Code, len(c.Code))
	if c.Code == "" && len(c.Digits) > 0 {
		in := codeinput.FromDigits(c.length, c.Digits)
		if !in.Complete() {
			return c.incomplete()
		}
		c.Code = in.Value()
	}
	if len(c.Code) != c.length {
		return c.incomplete()
	}
	return validate.Digits(c.field, c.Code, c.length)
}

func (c *CodePayload) incomplete() error {
	if c.field == "pin" {
		return validate.Fieldf(c.field, "PIN must be exactly %d digits", c.length)
	}
	return validate.Fieldf(c.field, "Please enter the complete %d-digit code", c.length)
}

// Fields is empty: codes and PINs never enter the session in clear.
func (c *CodePayload) Fields() map[string]string { return nil }

// Value returns the validated code.
func (c *CodePayload) Value() string { return c.Code }

// PersonalInfoPayload is submitted by personal-info.
type PersonalInfoPayload struct {
	FullName    string `json:"full_name"`
	Username    string `json:"username"`
	DateOfBirth string `json:"date_of_birth"`
}

func (pi *PersonalInfoPayload) Validate(p Policy) (err error) {
	if pi.FullName, err = p.fill(FieldFullName, pi.FullName, PlaceholderFullName); err != nil {
		return err
	}
	if pi.Username, err = p.fill(FieldUsername, pi.Username, PlaceholderUsername); err != nil {
		return err
	}
	if pi.Username, err = validate.Username(pi.Username); err != nil {
		return err
	}
	if pi.DateOfBirth, err = p.fill(FieldDateOfBirth, pi.DateOfBirth, PlaceholderDateOfBirth); err != nil {
		return err
	}
	dob, err := validate.DateOfBirth(pi.DateOfBirth, p.now())
	if err != nil {
		return err
	}
	pi.DateOfBirth = dob.Format(validate.DateLayout)
	return nil
}

func (pi *PersonalInfoPayload) Fields() map[string]string {
	return map[string]string{
		FieldFullName:    pi.FullName,
		FieldUsername:    pi.Username,
		FieldDateOfBirth: pi.DateOfBirth,
	}
}

// AddressPayload is submitted by home-address.
type AddressPayload struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZIPCode string `json:"zip_code"`
	Country string `json:"country"`
}

func (a *AddressPayload) Validate(p Policy) (err error) {
	if a.Street, err = p.fill(FieldStreet, a.Street, PlaceholderStreet); err != nil {
		return err
	}
	if a.City, err = p.fill(FieldCity, a.City, PlaceholderCity); err != nil {
		return err
	}
	if a.State, err = p.fill(FieldState, a.State, PlaceholderState); err != nil {
		return err
	}
	if a.ZIPCode, err = p.fill(FieldZIPCode, a.ZIPCode, PlaceholderZIPCode); err != nil {
		return err
	}
	if err := validate.ZIP(a.ZIPCode); err != nil {
		return err
	}
	a.Country = strings.ToUpper(strings.TrimSpace(a.Country))
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	return nil
}

func (a *AddressPayload) Fields() map[string]string {
	return map[string]string{
		FieldStreet:  a.Street,
		FieldCity:    a.City,
		FieldState:   a.State,
		FieldZIPCode: a.ZIPCode,
		FieldCountry: a.Country,
	}
}

// KYCPayload is submitted by the kyc redirect screen. Skipping requires Confirmed.
type KYCPayload struct {
	Confirmed bool `json:"confirmed"`
}

func (k *KYCPayload) Validate(Policy) error { return nil }

func (k *KYCPayload) Fields() map[string]string { return nil }

// WalletPayload is submitted by connect-wallet. Address is optional: the screen
// only picks a provider and the address arrives once the wallet app links back.
type WalletPayload struct {
	Provider string `json:"provider"`
	Address  string `json:"address"`
}

func (w *WalletPayload) Validate(Policy) error {
	provider, err := wallet.ParseProvider(w.Provider)
	if err != nil {
		return validate.Fieldf(FieldWalletProvider, "please select a wallet")
	}
	w.Provider = string(provider)
	w.Address = strings.TrimSpace(w.Address)
	return nil
}

func (w *WalletPayload) Fields() map[string]string {
	fields := map[string]string{FieldWalletProvider: w.Provider}
	if w.Address != "" {
		fields[FieldWalletAddress] = w.Address
	}
	return fields
}

// extended adds hook-produced fields to a payload.
type extended struct {
	Payload
	extra map[string]string
}

func (e extended) Fields() map[string]string {
	out := make(map[string]string)
	if e.Payload != nil {
		for k, v := range e.Payload.Fields() {
			out[k] = v
		}
	}
	for k, v := range e.extra {
		out[k] = v
	}
	return out
}

// Extend returns p with extra fields merged over its own.
func Extend(p Payload, extra map[string]string) Payload {
	if len(extra) == 0 {
		return p
	}
	return extended{Payload: p, extra: extra}
}

// fieldsOf tolerates a nil payload.
func fieldsOf(p Payload) map[string]string {
	if p == nil {
		return nil
	}
	return p.Fields()
}

// NewPayload returns the empty payload a (step, action) accepts, or nil when it takes none.
func NewPayload(step StepID, action Action) Payload {
	if action == ActionBack {
		return nil
	}
	switch step {
	case StepEmailEntry:
		return &EmailPayload{}
	case StepGoogleAuth:
		return &GooglePayload{}
	case StepPhoneEntry:
		return &PhonePayload{}
	case StepPhoneVerify:
		return &CodePayload{length: codeinput.CodeLength, field: "code"}
	case StepPINSetup, StepPINConfirm:
		return &CodePayload{length: codeinput.PINLength, field: "pin"}
	case StepPersonalInfo:
		return &PersonalInfoPayload{}
	case StepHomeAddress:
		return &AddressPayload{}
	case StepKYC:
		return &KYCPayload{}
	case StepConnectWallet:
		if action == ActionNext {
			return &WalletPayload{}
		}
	}
	return nil
}

// DecodeResult builds a Result from wire input. An empty body yields the empty payload.
func DecodeResult(step StepID, action Action, raw json.RawMessage) (Result, error) {
	payload := NewPayload(step, action)
	if payload != nil && len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, payload); err != nil {
			return Result{}, validate.Fieldf("payload", "malformed %s payload: %v", step, err)
		}
	}
	return Result{Step: step, Action: action, Payload: payload}, nil
}

func (r Result) String() string {
	return fmt.Sprintf("%s/%s", r.Step, r.Action)
}
