package settings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tangent-app/tangent/internal/i18n"
	"github.com/tangent-app/tangent/internal/identity"
	"github.com/tangent-app/tangent/internal/validate"
	"github.com/tangent-app/tangent/internal/verification"
)

// Handler exposes settings endpoints. Every response carries a localized alert.
type Handler struct {
	service   *Service
	localizer *i18n.Localizer
}

// NewHandler builds a settings HTTP handler.
func NewHandler(service *Service, localizer *i18n.Localizer) *Handler {
	return &Handler{service: service, localizer: localizer}
}

type changePINRequest struct {
	CurrentPIN string `json:"current_pin"`
	NewPIN     string `json:"new_pin"`
	ConfirmPIN string `json:"confirm_pin"`
}

type phoneRequest struct {
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
}

type notificationsRequest struct {
	Push      bool `json:"push"`
	Marketing bool `json:"marketing"`
}

func origin(c *fiber.Ctx) (Origin, error) {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return Origin{}, fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	return Origin{UserID: uid, ClientIP: c.IP(), DeviceID: c.Get("X-Device-ID")}, nil
}

func (h *Handler) alert(c *fiber.Ctx, id string, data map[string]any) *i18n.Alert {
	lang := h.localizer.Resolve(c.Get(fiber.HeaderAcceptLanguage))
	return h.localizer.Alert(lang, id, data)
}

// fail renders err, attaching an alert for failures the client shows as a dialog.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var (
		status  int
		alertID string
		attempt *verification.AttemptError
	)
	verr, isValidation := validate.AsError(err)
	switch {
	case errors.Is(err, ErrPINMismatch):
		status, alertID = http.StatusUnprocessableEntity, i18n.MsgPINMismatch
	case errors.Is(err, identity.ErrIncorrectPIN):
		status, alertID = http.StatusForbidden, i18n.MsgIncorrectPIN
	case isValidation && verr.Field == "zip_code":
		status, alertID = http.StatusUnprocessableEntity, i18n.MsgInvalidZIP
	case isValidation && verr.Field == "code":
		status, alertID = http.StatusUnprocessableEntity, i18n.MsgIncompleteCode
	case isValidation, errors.As(err, &attempt):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, identity.ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, identity.ErrDuplicate):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, verification.ErrNotFound), errors.Is(err, verification.ErrExpired), errors.Is(err, verification.ErrTooManyAttempts):
		return fiber.NewError(http.StatusGone, err.Error())
	case errors.Is(err, verification.ErrRateLimited):
		return fiber.NewError(http.StatusTooManyRequests, err.Error())
	default:
		return err
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error(), "alert": h.alert(c, alertID, nil)})
}

// ChangePIN handles PUT /settings/pin.
func (h *Handler) ChangePIN(c *fiber.Ctx) error {
	o, err := origin(c)
	if err != nil {
		return err
	}
	var req changePINRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.service.ChangePIN(c.UserContext(), o, req.CurrentPIN, req.NewPIN, req.ConfirmPIN); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"alert": h.alert(c, i18n.MsgPINUpdated, nil)})
}

// RequestPhoneChange handles POST /settings/phone.
func (h *Handler) RequestPhoneChange(c *fiber.Ctx) error {
	o, err := origin(c)
	if err != nil {
		return err
	}
	var req phoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	e164, expires, err := h.service.RequestPhoneChange(c.UserContext(), o, req.PhoneNumber)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"phone_number": e164,
		"expires_at":   expires.Format(time.RFC3339),
		"alert":        h.alert(c, i18n.MsgCodeResent, nil),
	})
}

// ConfirmPhoneChange handles POST /settings/phone/confirm.
func (h *Handler) ConfirmPhoneChange(c *fiber.Ctx) error {
	o, err := origin(c)
	if err != nil {
		return err
	}
	var req phoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	display, err := h.service.ConfirmPhoneChange(c.UserContext(), o, req.PhoneNumber, req.Code)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"phone_display": display, "alert": h.alert(c, i18n.MsgPhoneUpdated, nil)})
}

// ChangeAddress handles PUT /settings/address.
func (h *Handler) ChangeAddress(c *fiber.Ctx) error {
	o, err := origin(c)
	if err != nil {
		return err
	}
	var req identity.Address
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.service.ChangeAddress(c.UserContext(), o, req); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"alert": h.alert(c, i18n.MsgAddressUpdated, nil)})
}

// SetNotifications handles PUT /settings/notifications.
func (h *Handler) SetNotifications(c *fiber.Ctx) error {
	o, err := origin(c)
	if err != nil {
		return err
	}
	var req notificationsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.service.SetNotifications(c.UserContext(), o, req.Push, req.Marketing); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"push": req.Push, "marketing": req.Marketing})
}

// History handles GET /settings/history.
func (h *Handler) History(c *fiber.Ctx) error {
	o, err := origin(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.service.History(c.UserContext(), o.UserID, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"entries": entries})
}
