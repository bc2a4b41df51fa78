package handlers

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/fftopup/internal/middleware"
	"github.com/example/fftopup/internal/orders"
	"github.com/example/fftopup/internal/utils"
	"github.com/example/fftopup/internal/validation"
)

// OrderHandler accepts customer purchases.
type OrderHandler struct {
	orders *orders.Service
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(svc *orders.Service) *OrderHandler {
	return &OrderHandler{orders: svc}
}

// TopUp submits a diamond order from a multipart form.
func (h *OrderHandler) TopUp(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	form, err := parseTopUpForm(c)
	if err != nil {
		return err
	}
	// An unparsable price is treated as no package selected.
	price, _ := strconv.ParseInt(c.FormValue("package_price"), 10, 64)

	proof, closeProof, err := openProof(c)
	if err != nil {
		return err
	}
	defer closeProof()

	receipt, err := h.orders.SubmitDiamondOrder(c.UserContext(), userID, form, price, proof)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": receipt})
}

// Purchase submits a pass order for :offerId.
func (h *OrderHandler) Purchase(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	offerID, err := uuid.Parse(c.Params("offerId"))
	if err != nil {
		return orders.ErrOfferNotFound
	}

	form, err := parseTopUpForm(c)
	if err != nil {
		return err
	}

	proof, closeProof, err := openProof(c)
	if err != nil {
		return err
	}
	defer closeProof()

	receipt, err := h.orders.SubmitOfferOrder(c.UserContext(), userID, offerID, form, proof)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": receipt})
}

// ListOrders returns the caller's diamond and pass orders.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pagination := utils.ParsePagination(c)
	result, err := h.orders.ListUserOrders(c.UserContext(), userID, pagination.Limit, pagination.Offset)
	if err != nil {
		return err
	}

	// Both lists share one page request; the longer one sets the page count.
	total := result.TotalOrders
	if result.TotalOfferOrders > total {
		total = result.TotalOfferOrders
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       result,
		"pagination": pagination.Meta(total),
	})
}

func parseTopUpForm(c *fiber.Ctx) (validation.TopUpForm, error) {
	var form validation.TopUpForm
	if err := c.BodyParser(&form); err != nil {
		return form, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return form, nil
}

// openProof returns a nil proof when no file was sent.
func openProof(c *fiber.Ctx) (*orders.Proof, func(), error) {
	fh, err := c.FormFile("payment_proof")
	if err != nil {
		return nil, func() {}, nil
	}

	var f multipart.File
	if f, err = fh.Open(); err != nil {
		return nil, func() {}, fiber.NewError(fiber.StatusBadRequest, "unreadable payment proof")
	}

	proof := &orders.Proof{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}
	return proof, func() { f.Close() }, nil
}
