package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tangent-app/tangent/internal/auth"
)

// Authorizer validates an access token.
type Authorizer interface {
	Authorize(ctx context.Context, accessToken string) (*auth.Claims, error)
}

// JWTAuth requires a valid bearer access token and stores user_id and token_version in Locals.
func JWTAuth(authorizer Authorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		const prefix = "bearer "
		if len(authz) <= len(prefix) || !strings.EqualFold(authz[:len(prefix)], prefix) {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		claims, err := authorizer.Authorize(c.UserContext(), strings.TrimSpace(authz[len(prefix):]))
		if err != nil {
			if errors.Is(err, auth.ErrTokenRevoked) {
				return fiber.NewError(http.StatusUnauthorized, "token invalidated")
			}
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals("user_id", claims.Subject)
		c.Locals("token_version", claims.Version)
		return c.Next()
	}
}
