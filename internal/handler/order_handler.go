package handler

import (
	"go-inventory-bom/internal/middleware"
	"go-inventory-bom/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PrivilegeUnsafeOrder is needed to place an order with is_safe_order=false.
const PrivilegeUnsafeOrder = "order:unsafe"

type OrderHandler struct {
	service service.OrderService
	resp    *Responder
}

func NewOrderHandler(s service.OrderService, resp *Responder) *OrderHandler {
	return &OrderHandler{service: s, resp: resp}
}

// PlaceOrder
// POST /api/v1/orders
// Header Idempotency-Key rejects resubmissions of the same order.
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	var req service.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return h.resp.BadJSON(c)
	}
	if !req.Safe() && !middleware.HasPrivilege(c, PrivilegeUnsafeOrder) {
		return h.resp.Forbidden(c, "UnsafeOrderNotAllowed")
	}

	result, err := h.service.PlaceOrder(c.UserContext(), &req, c.Get("Idempotency-Key"))
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.Status(201).JSON(result)
}

func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	result, err := h.service.ListOrders(c.UserContext(), pageOf(c))
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(result)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	order, err := h.service.GetOrder(c.UserContext(), id)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(order)
}
