package identity

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tangent-app/tangent/internal/kyc"
	"github.com/tangent-app/tangent/internal/validate"
)

// Handler exposes identity endpoints.
type Handler struct {
	service *Service
	kycURL  string
}

// NewHandler constructs an identity HTTP handler. kycURL is the identity provider entry point.
func NewHandler(service *Service, kycURL string) *Handler {
	return &Handler{service: service, kycURL: kycURL}
}

// Profile is the public view of a user.
type Profile struct {
	UserID                 string     `json:"user_id"`
	Email                  string     `json:"email,omitempty"`
	FullName               string     `json:"full_name"`
	Username               string     `json:"username"`
	Phone                  string     `json:"phone"`
	PhoneDisplay           string     `json:"phone_display"`
	PhoneVerified          bool       `json:"phone_verified"`
	Address                Address    `json:"address"`
	Tier                   string     `json:"tier"`
	KYCStatus              string     `json:"kyc_status"`
	NotificationsEnabled   bool       `json:"notifications_enabled"`
	MarketingEmailsEnabled bool       `json:"marketing_emails_enabled"`
	PreferredLanguage      string     `json:"preferred_language"`
	DeviceID               string     `json:"device_id,omitempty"`
	TokenVersion           int        `json:"token_version"`
	CreatedAt              time.Time  `json:"created_at"`
	LastLoginAt            *time.Time `json:"last_login_at,omitempty"`
}

// NewProfile renders user for API responses.
func NewProfile(user User) Profile {
	return Profile{
		UserID:                 user.ID,
		Email:                  user.Email,
		FullName:               user.FullName,
		Username:               user.Username,
		Phone:                  user.PhoneNumber,
		PhoneDisplay:           validate.DisplayUSPhone(user.PhoneNumber),
		PhoneVerified:          user.PhoneVerified,
		Address:                user.Address,
		Tier:                   user.Tier,
		KYCStatus:              string(user.KYCStatus),
		NotificationsEnabled:   user.NotificationsEnabled,
		MarketingEmailsEnabled: user.MarketingEmailsEnabled,
		PreferredLanguage:      user.PreferredLanguage,
		DeviceID:               user.DeviceID,
		TokenVersion:           user.TokenVersion,
		CreatedAt:              user.CreatedAt,
		LastLoginAt:            user.LastLoginAt,
	}
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := h.service.Get(c.UserContext(), uid)
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(NewProfile(user))
}

// StartKYC moves a user who skipped verification to pending and returns the provider URL.
func (h *Handler) StartKYC(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := h.service.SetKYCStatus(c.UserContext(), uid, kyc.StatusPending)
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "user not found")
	case errors.Is(err, kyc.ErrInvalidTransition):
		return fiber.NewError(http.StatusConflict, err.Error())
	case err != nil:
		return err
	}
	url, err := kyc.RedirectURL(h.kycURL, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"kyc_status": user.KYCStatus, "url": url})
}
