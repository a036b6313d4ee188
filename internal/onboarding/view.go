package onboarding

import (
	"github.com/tangent-app/tangent/internal/codeinput"
	"github.com/tangent-app/tangent/internal/i18n"
	"github.com/tangent-app/tangent/internal/kyc"
	"github.com/tangent-app/tangent/internal/wallet"
)

// SplashDelayMillis is how long the client shows the splash before advancing.
const SplashDelayMillis = 2500

// ViewConfig holds what Render needs besides the session.
type ViewConfig struct {
	Localizer    *i18n.Localizer
	KYCURL       string
	Placeholders bool
}

// View describes the screen the client should draw.
type View struct {
	SessionID  string         `json:"session_id"`
	Step       StepID         `json:"step"`
	Status     Status         `json:"status"`
	Actions    []Action       `json:"actions"`
	CanGoBack  bool           `json:"can_go_back"`
	Props      map[string]any `json:"props,omitempty"`
	Alert      *i18n.Alert    `json:"alert,omitempty"`
	Completion *Completion    `json:"completion,omitempty"`
}

// Render builds the view for the session's current step in lang.
func (c *Controller) Render(s *Session, lang string) View {
	if lang == "" {
		lang = s.Language
	}
	actions := c.flow.Actions(s.CurrentStep)
	if s.CanGoBack() && s.Status == StatusInProgress {
		actions = append(actions, ActionBack)
	}
	return View{
		SessionID: s.ID,
		Step:      s.CurrentStep,
		Status:    s.Status,
		Actions:   actions,
		CanGoBack: s.CanGoBack() && s.Status == StatusInProgress,
		Props:     c.props(s, lang),
	}
}

// Alert localizes an alert for the session language.
func (c *Controller) Alert(s *Session, id string) *i18n.Alert {
	if c.views.Localizer == nil {
		return &i18n.Alert{ID: id}
	}
	return c.views.Localizer.Alert(s.Language, id, nil)
}

func (c *Controller) message(lang, id string, data map[string]any) string {
	if c.views.Localizer == nil {
		return id
	}
	return c.views.Localizer.Message(lang, id, data)
}

func (c *Controller) props(s *Session, lang string) map[string]any {
	ph := c.views.Placeholders
	switch s.CurrentStep {
	case StepSplash:
		return map[string]any{"auto_advance_ms": SplashDelayMillis}
	case StepCreateAccount:
		return map[string]any{"methods": []string{"phone", "google", "email"}}
	case StepEmailEntry, StepGoogleAuth:
		return placeholderProps(ph, map[string]any{FieldEmail: PlaceholderEmail})
	case StepPhoneEntry:
		props := placeholderProps(ph, map[string]any{FieldPhoneNumber: PlaceholderPhone})
		props["country_code"] = "+1"
		return props
	case StepPhoneVerify:
		phone := s.Field(FieldPhoneNumber)
		return map[string]any{
			"phone_number": phone,
			"subtitle":     c.message(lang, i18n.MsgPhoneVerifySubtitle, map[string]any{"Phone": phone}),
			"code_length":  codeinput.CodeLength,
		}
	case StepPersonalInfo:
		return placeholderProps(ph, map[string]any{
			FieldFullName:    PlaceholderFullName,
			FieldUsername:    PlaceholderUsername,
			FieldDateOfBirth: PlaceholderDateOfBirth,
		})
	case StepHomeAddress:
		props := placeholderProps(ph, map[string]any{
			FieldStreet:  PlaceholderStreet,
			FieldCity:    PlaceholderCity,
			FieldState:   PlaceholderState,
			FieldZIPCode: PlaceholderZIPCode,
		})
		props["default_country"] = DefaultCountry
		return props
	case StepKYC:
		props := map[string]any{"subtitle": c.message(lang, i18n.MsgKYCSubtitle, nil)}
		if url, err := kyc.RedirectURL(c.views.KYCURL, s.ID); err == nil {
			props["url"] = url
		}
		if c.views.Localizer != nil {
			props["skip_confirmation"] = c.views.Localizer.Alert(lang, i18n.MsgKYCSkip, nil)
			props["link_error"] = c.views.Localizer.Alert(lang, i18n.MsgKYCLinkError, nil)
		}
		return props
	case StepPINSetup, StepPINConfirm:
		return map[string]any{"pin_length": codeinput.PINLength}
	case StepConnectWallet:
		providers := make([]string, 0, len(wallet.Providers))
		for _, p := range wallet.Providers {
			providers = append(providers, string(p))
		}
		return map[string]any{"providers": providers, "subtitle": c.message(lang, i18n.MsgWalletSubtitle, nil)}
	case StepWelcome:
		return map[string]any{"subtitle": c.message(lang, i18n.MsgWelcomeSubtitle, map[string]any{"Name": s.Field(FieldFullName)})}
	}
	return nil
}

func placeholderProps(enabled bool, values map[string]any) map[string]any {
	if !enabled {
		return map[string]any{}
	}
	return map[string]any{"placeholders": values}
}
