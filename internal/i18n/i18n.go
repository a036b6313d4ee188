// Package i18n localizes alert and subtitle copy returned in onboarding and settings views.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// Message identifiers shared by views.
const (
	MsgPINMismatch         = "pin_mismatch"
	MsgIncorrectPIN        = "incorrect_pin"
	MsgPINUpdated          = "pin_updated"
	MsgKYCSkip             = "kyc_skip"
	MsgKYCLinkError        = "kyc_link_error"
	MsgIncompleteCode      = "incomplete_code"
	MsgCodeResent          = "code_resent"
	MsgPhoneUpdated        = "phone_updated"
	MsgAddressUpdated      = "address_updated"
	MsgInvalidZIP          = "invalid_zip"
	MsgPhoneVerifySubtitle = "phone_verify_subtitle"
	MsgKYCSubtitle         = "kyc_subtitle"
	MsgWalletSubtitle      = "wallet_subtitle"
	MsgWelcomeSubtitle     = "welcome_subtitle"
)

// Alert is a blocking dialog shown by the client.
type Alert struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Localizer resolves messages from the embedded bundles.
type Localizer struct {
	bundle   *goi18n.Bundle
	matcher  language.Matcher
	fallback string
}

// New loads the embedded locale files. fallback is used for unsupported languages.
func New(fallback string) (*Localizer, error) {
	tag, err := language.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("parse default language: %w", err)
	}

	bundle := goi18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(localeFS, "locales/*.toml")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(localeFS, f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	return &Localizer{
		bundle:   bundle,
		matcher:  language.NewMatcher(bundle.LanguageTags()),
		fallback: base(tag),
	}, nil
}

// Resolve maps a language tag or Accept-Language header to a supported base language.
func (l *Localizer) Resolve(accept string) string {
	if accept == "" {
		return l.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return l.fallback
	}
	tag, _, confidence := l.matcher.Match(tags...)
	if confidence == language.No {
		return l.fallback
	}
	return base(tag)
}

// Message localizes id with optional template data. Unknown ids are returned verbatim.
func (l *Localizer) Message(lang, id string, data map[string]any) string {
	loc := goi18n.NewLocalizer(l.bundle, lang, l.fallback)
	msg, err := loc.Localize(&goi18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		return id
	}
	return msg
}

// Alert builds the title and message pair registered under id.
func (l *Localizer) Alert(lang, id string, data map[string]any) *Alert {
	return &Alert{
		ID:      id,
		Title:   l.Message(lang, id+"_title", data),
		Message: l.Message(lang, id+"_message", data),
	}
}

func base(tag language.Tag) string {
	b, _ := tag.Base()
	return b.String()
}
