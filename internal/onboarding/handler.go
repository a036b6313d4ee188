package onboarding

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tangent-app/tangent/internal/identity"
	"github.com/tangent-app/tangent/internal/validate"
	"github.com/tangent-app/tangent/internal/verification"
)

// Handler exposes onboarding sessions over HTTP.
type Handler struct {
	service *Service
}

// NewHandler builds an onboarding HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type stepRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type backRequest struct {
	Step string `json:"step"`
}

// Start creates a session.
func (h *Handler) Start(c *fiber.Ctx) error {
	view, err := h.service.Start(c.UserContext(), c.Get(fiber.HeaderAcceptLanguage))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(view)
}

// Get renders the current step.
func (h *Handler) Get(c *fiber.Ctx) error {
	view, err := h.service.Get(c.UserContext(), c.Params("sessionId"), c.Get(fiber.HeaderAcceptLanguage))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(view)
}

// Submit applies the result of the step named in the path.
func (h *Handler) Submit(c *fiber.Ctx) error {
	step, err := ParseStep(c.Params("step"))
	if err != nil {
		return mapError(err)
	}
	var req stepRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid payload")
		}
	}
	action, err := ParseAction(req.Action)
	if err != nil {
		return mapError(err)
	}
	result, err := DecodeResult(step, action, req.Payload)
	if err != nil {
		return mapError(err)
	}

	view, err := h.service.Submit(c.UserContext(), c.Params("sessionId"), result)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(view)
}

// Back pops the session history. The body names the step the client is showing.
func (h *Handler) Back(c *fiber.Ctx) error {
	var req backRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	step, err := ParseStep(req.Step)
	if err != nil {
		return mapError(err)
	}
	view, err := h.service.Back(c.UserContext(), c.Params("sessionId"), step)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(view)
}

// ResendCode sends a new phone verification code.
func (h *Handler) ResendCode(c *fiber.Ctx) error {
	view, err := h.service.ResendCode(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(view)
}

// Abandon deletes the session.
func (h *Handler) Abandon(c *fiber.Ctx) error {
	if err := h.service.Abandon(c.UserContext(), c.Params("sessionId")); err != nil {
		return mapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func mapError(err error) error {
	if verr, ok := validate.AsError(err); ok {
		return fiber.NewError(http.StatusUnprocessableEntity, verr.Error())
	}
	var attempt *verification.AttemptError
	switch {
	case errors.As(err, &attempt):
		return fiber.NewError(http.StatusUnprocessableEntity, attempt.Error())
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrUnknownStep):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrStepMismatch), errors.Is(err, ErrSessionClosed), errors.Is(err, identity.ErrDuplicate):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, verification.ErrNotFound), errors.Is(err, verification.ErrExpired), errors.Is(err, verification.ErrTooManyAttempts):
		return fiber.NewError(http.StatusGone, err.Error())
	case errors.Is(err, verification.ErrRateLimited):
		return fiber.NewError(http.StatusTooManyRequests, err.Error())
	}
	return err
}
