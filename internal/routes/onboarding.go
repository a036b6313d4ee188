package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tangent-app/tangent/internal/middleware"
	"github.com/tangent-app/tangent/internal/onboarding"
)

// RegisterOnboardingRoutes wires the signup session endpoints.
func RegisterOnboardingRoutes(r fiber.Router, h *onboarding.Handler, idem fiber.Handler, cache *redis.Client) {
	startLimit := middleware.RateLimit(cache, middleware.RateLimitConfig{Prefix: "onboarding:start", Max: 20, Window: time.Minute})
	resendLimit := middleware.RateLimit(cache, middleware.RateLimitConfig{Prefix: "onboarding:resend", Max: 5, Window: 10 * time.Minute})

	group := r.Group("/onboarding/sessions", idem)
	group.Post("/", startLimit, h.Start)
	group.Get("/:sessionId", h.Get)
	group.Delete("/:sessionId", h.Abandon)
	group.Post("/:sessionId/steps/:step", h.Submit)
	group.Post("/:sessionId/back", h.Back)
	group.Post("/:sessionId/resend-code", resendLimit, h.ResendCode)
}
