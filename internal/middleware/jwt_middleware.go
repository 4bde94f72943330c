package middleware

import (
	"context"
	"log"
	"strings"

	"flavorfix/internal/apperrors"
	"flavorfix/internal/models"

	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", apperrors.Unauthorized("Not authorized, no token")
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "") {
		return "", apperrors.Unauthorized("Authorization header format must be 'Bearer <token>'")
	}
	return parts[1], nil
}

// AuthRequired rejects requests without a valid token for an existing user
// and stores that user in the request locals.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return err
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// AuthOptional resolves the user when a valid token is supplied and lets
// anonymous requests through otherwise.
func AuthOptional(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		token, err := bearerToken(c)
		if err != nil {
			return c.Next()
		}
		if user, err := auth.Authenticate(c.UserContext(), token); err == nil {
			c.Locals(userKey, user)
		}
		return c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperrors.Unauthorized("Not authorized, no token")
		}
		if !user.IsAdmin() {
			return apperrors.Forbidden("Not authorized as admin")
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil on anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
