package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tangent-app/tangent/internal/card"
	"github.com/tangent-app/tangent/internal/identity"
	"github.com/tangent-app/tangent/internal/settings"
	"github.com/tangent-app/tangent/internal/wallet"
)

// RegisterProfileRoutes wires /me.
func RegisterProfileRoutes(r fiber.Router, h *identity.Handler) {
	r.Get("/", h.Me)
	r.Post("/kyc", h.StartKYC)
}

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/providers", h.Providers)
	r.Get("/", h.List)
	r.Post("/", h.Connect)
	r.Put("/:walletId/default", h.SetDefault)
	r.Delete("/:walletId", h.Remove)
}

// RegisterCardRoutes wires the home screen card endpoints.
func RegisterCardRoutes(r fiber.Router, h *card.Handler) {
	r.Get("/", h.List)
	r.Post("/", h.Issue)
	r.Put("/:cardId/default", h.SetDefault)
}

// RegisterSettingsRoutes wires account settings.
func RegisterSettingsRoutes(r fiber.Router, h *settings.Handler) {
	r.Put("/pin", h.ChangePIN)
	r.Post("/phone", h.RequestPhoneChange)
	r.Post("/phone/confirm", h.ConfirmPhoneChange)
	r.Put("/address", h.ChangeAddress)
	r.Put("/notifications", h.SetNotifications)
	r.Get("/history", h.History)
}
