package handlers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/fftopup/internal/config"
	"github.com/example/fftopup/internal/middleware"
	"github.com/example/fftopup/internal/models"
	"github.com/example/fftopup/internal/security"
	"github.com/example/fftopup/internal/utils"
	"github.com/example/fftopup/internal/validation"
)

// ProfileStore is the profile access the auth endpoints need.
type ProfileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
}

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	profiles ProfileStore
	limiter  *security.RateLimiter
	cfg      *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(profiles ProfileStore, limiter *security.RateLimiter, cfg *config.Config) *AuthHandler {
	return &AuthHandler{profiles: profiles, limiter: limiter, cfg: cfg}
}

type signupRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// Signup creates a customer account.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.DisplayName = validation.Sanitize(req.DisplayName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errs := validation.ValidateSignup(req.DisplayName, req.Email, req.Password); len(errs) > 0 {
		return errs
	}

	if _, err := h.profiles.FindByEmail(c.UserContext(), req.Email); err == nil {
		return fiber.NewError(fiber.StatusConflict, "user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := security.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	profile := models.Profile{
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
	}
	if err := h.profiles.Create(c.UserContext(), &profile); err != nil {
		// A concurrent signup can pass the lookup above and still hit the
		// unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusConflict, "user already exists")
		}
		return err
	}

	return h.issueSession(c, fiber.StatusCreated, &profile)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates by email. Every attempt counts against the caller's
// limit until one succeeds.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if errs := validation.ValidateLogin(req.Username, req.Password); len(errs) > 0 {
		return errs
	}

	decision, err := h.limiter.Check(c.UserContext(), req.Username)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		log.Printf("[Auth] login locked for %s until %s", req.Username, decision.LockoutUntil.Format(time.RFC3339))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"success":       false,
			"error":         "Too many login attempts. Please try again later.",
			"lockout_until": decision.LockoutUntil,
		})
	}

	profile, err := h.profiles.FindByEmail(c.UserContext(), req.Username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if profile == nil || !security.VerifyPassword(passwordHash(profile), req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success":            false,
			"error":              "invalid credentials",
			"remaining_attempts": decision.Remaining,
		})
	}

	if err := h.limiter.Clear(c.UserContext(), req.Username); err != nil {
		log.Printf("[Auth] failed to clear attempts for %s: %v", req.Username, err)
	}

	return h.issueSession(c, fiber.StatusOK, profile)
}

// Me returns the signed-in profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	profile, err := h.profiles.FindByID(c.UserContext(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       profile,
		"session_id": middleware.GetSessionID(c),
	})
}

// passwordHash is empty for unknown accounts so the comparison still runs.
func passwordHash(profile *models.Profile) string {
	if profile == nil {
		return ""
	}
	return profile.PasswordHash
}

func (h *AuthHandler) issueSession(c *fiber.Ctx, status int, profile *models.Profile) error {
	session := security.NewSession(time.Now(), h.cfg.TokenExpires)
	token, err := utils.GenerateToken(h.cfg.JWTSecret, profile.ID, session.Token, session.ExpiresAt)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"token":      token,
			"expires_at": session.ExpiresAt,
			"user":       profile,
		},
	})
}
