package handlers

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/fftopup/internal/orders"
)

// AdminHandler serves the reconciliation dashboard.
type AdminHandler struct {
	orders *orders.Service
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(svc *orders.Service) *AdminHandler {
	return &AdminHandler{orders: svc}
}

// Dashboard returns every order, every profile and the summary stats.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.orders.LoadDashboard(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "failed to load dashboard data")
	}
	return c.JSON(fiber.Map{"success": true, "data": dashboard})
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
}

// UpdateOrderStatus handles PATCH /admin/orders/:kind/:id/status.
func (h *AdminHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	kind, err := orders.ParseKind(c.Params("kind"))
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order id")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	status, err := orders.ParseStatus(req.Status)
	if err != nil {
		return err
	}
	mode, err := orders.ParseMode(req.Mode)
	if err != nil {
		return err
	}

	entry, err := h.orders.UpdateOrderStatus(c.UserContext(), kind, id, status, mode)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": entry})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateUserRole handles PATCH /admin/users/:userId/role.
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	var req updateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.orders.UpdateUserRole(c.UserContext(), userID, req.Role)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}

// Proof streams a payment screenshot by its storage path.
func (h *AdminHandler) Proof(c *fiber.Ctx) error {
	path := c.Params("*")
	rc, err := h.orders.OpenProof(c.UserContext(), path)
	if err != nil {
		return err
	}

	c.Type(filepath.Ext(path))
	return c.SendStream(rc)
}
