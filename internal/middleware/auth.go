package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/fftopup/internal/utils"
)

const claimsContextKey = "sessionClaims"

// RequireAuth accepts a Bearer session token signed with secret and stores
// its claims on the request.
func RequireAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, token, found := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing or malformed session token")
		}

		claims, err := utils.ParseToken(secret, strings.TrimSpace(token))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "session expired or invalid")
		}

		c.Locals(claimsContextKey, claims)
		return c.Next()
	}
}

// GetCurrentUserID returns the signed-in user, if RequireAuth ran.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	claims, ok := c.Locals(claimsContextKey).(*utils.Claims)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

// GetSessionID returns the id of the session token on the request.
func GetSessionID(c *fiber.Ctx) string {
	if claims, ok := c.Locals(claimsContextKey).(*utils.Claims); ok {
		return claims.SessionID
	}
	return ""
}
