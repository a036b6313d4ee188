package card

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes card HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a card HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type cardResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	LastFour       string    `json:"last_four"`
	Balance        int64     `json:"balance_cents"`
	BalanceDisplay string    `json:"balance_display"`
	Currency       string    `json:"currency"`
	Type           string    `json:"card_type"`
	Gradient       []string  `json:"gradient"`
	IsDefault      bool      `json:"is_default"`
	CreatedAt      time.Time `json:"created_at"`
}

func toResponse(c Card) cardResponse {
	return cardResponse{
		ID:             c.ID,
		Name:           c.Name,
		LastFour:       c.LastFour,
		Balance:        c.BalanceCents,
		BalanceDisplay: DisplayBalance(c.BalanceCents, c.Currency),
		Currency:       c.Currency,
		Type:           string(c.Type),
		Gradient:       c.Gradient,
		IsDefault:      c.IsDefault,
		CreatedAt:      c.CreatedAt,
	}
}

// List returns the caller's cards.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	cards, err := h.service.List(c.UserContext(), uid)
	if err != nil {
		return err
	}
	out := make([]cardResponse, 0, len(cards))
	for _, card := range cards {
		out = append(out, toResponse(card))
	}
	return c.JSON(fiber.Map{"cards": out})
}

type issueRequest struct {
	Name string `json:"name"`
	Type string `json:"card_type"`
}

// Issue creates a new virtual card for the caller.
func (h *Handler) Issue(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	var req issueRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	kind := Type(req.Type)
	switch kind {
	case "", TypeMastercard, TypeVisa, TypeAmex:
	default:
		return fiber.NewError(http.StatusUnprocessableEntity, "card_type: unsupported card type")
	}
	card, err := h.service.IssueVirtual(c.UserContext(), IssueInput{UserID: uid, Name: req.Name, Type: kind})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(card))
}

// SetDefault marks a card as default.
func (h *Handler) SetDefault(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	err := h.service.SetDefault(c.UserContext(), uid, c.Params("cardId"))
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
