package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/fftopup/internal/catalog"
	"github.com/example/fftopup/internal/orders"
)

// CatalogHandler serves diamond packages, payment details and passes.
type CatalogHandler struct {
	orders *orders.Service
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(svc *orders.Service) *CatalogHandler {
	return &CatalogHandler{orders: svc}
}

// ListPackages returns every diamond package.
func (h *CatalogHandler) ListPackages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": catalog.DiamondPackages()})
}

// PaymentMethods returns the wallets customers pay into.
func (h *CatalogHandler) PaymentMethods(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"methods":         catalog.PaymentDestinations(),
			"support_contact": catalog.SupportContact,
			"processing_time": catalog.EstimatedProcessingTime.String(),
		},
	})
}

// ListOffers returns the passes on sale.
func (h *CatalogHandler) ListOffers(c *fiber.Ctx) error {
	offers, err := h.orders.ActiveOffers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": offers})
}

// GetOffer returns one pass on sale.
func (h *CatalogHandler) GetOffer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("offerId"))
	if err != nil {
		return orders.ErrOfferNotFound
	}

	offer, err := h.orders.ActiveOffer(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"offer":   offer,
			"savings": offer.Savings(),
		},
	})
}
