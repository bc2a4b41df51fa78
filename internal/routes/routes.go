package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/fftopup/internal/config"
	"github.com/example/fftopup/internal/handlers"
	"github.com/example/fftopup/internal/middleware"
	"github.com/example/fftopup/internal/orders"
	"github.com/example/fftopup/internal/repository"
	"github.com/example/fftopup/internal/security"
)

// Dependencies are the long-lived services built in main.
type Dependencies struct {
	Orders  *orders.Service
	Limiter *security.RateLimiter
	// CSRFStorage holds issued CSRF tokens; nil keeps them in memory.
	CSRFStorage fiber.Storage
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, deps Dependencies) {
	profiles := repository.NewProfileRepository(db)

	authHandler := handlers.NewAuthHandler(profiles, deps.Limiter, cfg)
	catalogHandler := handlers.NewCatalogHandler(deps.Orders)
	orderHandler := handlers.NewOrderHandler(deps.Orders)
	adminHandler := handlers.NewAdminHandler(deps.Orders)

	requireAuth := middleware.RequireAuth(cfg.JWTSecret)
	csrf := middleware.CSRF(deps.CSRFStorage)

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "status": "ok"})
	})

	api.Get("/security/csrf", csrf, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"csrf_token": middleware.CSRFToken(c)}})
	})

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", requireAuth, authHandler.Me)

	// Catalog routes
	catalog := api.Group("/catalog")
	catalog.Get("/packages", catalogHandler.ListPackages)
	catalog.Get("/payment-methods", catalogHandler.PaymentMethods)

	offers := api.Group("/offers")
	offers.Get("/", catalogHandler.ListOffers)
	offers.Get("/:offerId", catalogHandler.GetOffer)

	// Customer orders
	api.Post("/topup", requireAuth, csrf, orderHandler.TopUp)
	api.Post("/purchase/:offerId", requireAuth, csrf, orderHandler.Purchase)
	api.Get("/orders", requireAuth, orderHandler.ListOrders)

	// Admin routes
	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin(profiles))
	admin.Get("/dashboard", adminHandler.Dashboard)
	admin.Patch("/orders/:kind/:id/status", csrf, adminHandler.UpdateOrderStatus)
	admin.Patch("/users/:userId/role", csrf, adminHandler.UpdateUserRole)
	admin.Get("/proofs/*", adminHandler.Proof)
}
