package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"

	"github.com/example/fftopup/internal/security"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
	csrfContextKey = "csrf"
)

// CSRF protects state-changing requests with a double-submit token: the
// csrf_token cookie must be echoed in the X-CSRF-Token header. Safe methods
// issue the token. A nil storage keeps tokens in process memory.
func CSRF(storage fiber.Storage) fiber.Handler {
	return csrf.New(csrf.Config{
		Storage:        storage,
		KeyLookup:      "header:" + CSRFHeaderName,
		CookieName:     CSRFCookieName,
		CookieSameSite: "Strict",
		Expiration:     security.SessionTTL,
		KeyGenerator:   security.GenerateCSRFToken,
		ContextKey:     csrfContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fiber.NewError(fiber.StatusForbidden, "invalid csrf token")
		},
	})
}

// CSRFToken returns the token issued for this request, if any.
func CSRFToken(c *fiber.Ctx) string {
	token, _ := c.Locals(csrfContextKey).(string)
	return token
}
