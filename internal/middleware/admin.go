package middleware

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fftopup/internal/models"
)

const profileContextKey = "currentProfile"

// ProfileFinder loads profiles by id.
type ProfileFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// RequireAdmin must run after RequireAuth. The role is read from the
// database on every request so role changes apply immediately.
func RequireAdmin(profiles ProfileFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		profile, err := profiles.FindByID(c.UserContext(), userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		if err != nil {
			return err
		}

		if !profile.IsAdmin() {
			log.Printf("[Auth] user %s denied admin access", userID)
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}

		c.Locals(profileContextKey, profile)
		return c.Next()
	}
}

// GetCurrentProfile returns the profile loaded by RequireAdmin.
func GetCurrentProfile(c *fiber.Ctx) (*models.Profile, bool) {
	profile, ok := c.Locals(profileContextKey).(*models.Profile)
	return profile, ok
}
