package wallet

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tangent-app/tangent/internal/validate"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type connectRequest struct {
	Provider string `json:"provider"`
	Address  string `json:"address"`
	Name     string `json:"name"`
	ChainID  int64  `json:"chain_id"`
}

type walletResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Address      string    `json:"address"`
	ShortAddress string    `json:"short_address"`
	Display      string    `json:"display"`
	ChainID      int64     `json:"chain_id"`
	IsDefault    bool      `json:"is_default"`
	ConnectedAt  time.Time `json:"connected_at"`
}

func toResponse(w Wallet) walletResponse {
	return walletResponse{
		ID:           w.ID,
		Name:         w.Name,
		Type:         string(w.Type),
		Address:      w.Address,
		ShortAddress: ShortAddress(w.Address),
		Display:      w.Display(),
		ChainID:      w.ChainID,
		IsDefault:    w.IsDefault,
		ConnectedAt:  w.ConnectedAt,
	}
}

func userID(c *fiber.Ctx) (string, error) {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return "", fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	return uid, nil
}

func mapError(err error) error {
	if verr, ok := validate.AsError(err); ok {
		return fiber.NewError(http.StatusUnprocessableEntity, verr.Error())
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicate):
		return fiber.NewError(http.StatusConflict, err.Error())
	}
	return err
}

// Providers lists the supported wallet providers.
func (h *Handler) Providers(c *fiber.Ctx) error {
	names := make([]string, 0, len(Providers))
	for _, p := range Providers {
		names = append(names, string(p))
	}
	return c.JSON(fiber.Map{"providers": names})
}

// List returns the caller's wallets.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	wallets, err := h.service.List(c.UserContext(), uid)
	if err != nil {
		return mapError(err)
	}
	out := make([]walletResponse, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, toResponse(w))
	}
	return c.JSON(fiber.Map{"wallets": out})
}

// Connect adds a wallet for the caller.
func (h *Handler) Connect(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var req connectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	w, err := h.service.Connect(c.UserContext(), ConnectInput{
		UserID:   uid,
		Provider: req.Provider,
		Address:  req.Address,
		Name:     req.Name,
		ChainID:  req.ChainID,
		ClientIP: c.IP(),
	})
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(toResponse(w))
}

// SetDefault marks a wallet as default.
func (h *Handler) SetDefault(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	if err := h.service.SetDefault(c.UserContext(), uid, c.Params("walletId")); err != nil {
		return mapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Remove disconnects a wallet.
func (h *Handler) Remove(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	if err := h.service.Remove(c.UserContext(), uid, c.Params("walletId"), c.IP()); err != nil {
		return mapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}
