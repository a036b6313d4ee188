package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tangent-app/tangent/internal/auth"
)

// RegisterAuthRoutes wires authentication endpoints. Logout requires a valid access token.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, jwtmw, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/login", rateLimiter, h.Login)
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", jwtmw, h.Logout)
}
