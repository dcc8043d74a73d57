package handler

import (
	"go-inventory-bom/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RawMaterialHandler struct {
	service service.RawMaterialService
	resp    *Responder
}

func NewRawMaterialHandler(s service.RawMaterialService, resp *Responder) *RawMaterialHandler {
	return &RawMaterialHandler{service: s, resp: resp}
}

func (h *RawMaterialHandler) GetRawMaterials(c *fiber.Ctx) error {
	result, err := h.service.ListRawMaterials(c.UserContext(), c.Query("search"), pageOf(c))
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(result)
}

func (h *RawMaterialHandler) GetRawMaterial(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	rm, err := h.service.GetRawMaterial(c.UserContext(), id)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(rm)
}

func (h *RawMaterialHandler) CreateRawMaterial(c *fiber.Ctx) error {
	var req service.CreateRawMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return h.resp.BadJSON(c)
	}
	rm, err := h.service.CreateRawMaterial(c.UserContext(), &req)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.Status(201).JSON(rm)
}

// UpdateRawMaterial also moves stock into the new unit when unit_id changes.
func (h *RawMaterialHandler) UpdateRawMaterial(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	var req service.UpdateRawMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return h.resp.BadJSON(c)
	}
	rm, err := h.service.UpdateRawMaterial(c.UserContext(), id, &req)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(rm)
}

func (h *RawMaterialHandler) DeleteRawMaterial(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	if err := h.service.DeleteRawMaterial(c.UserContext(), id); err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(fiber.Map{"message": "Raw material deleted"})
}

// AdjustStock
// POST /api/v1/raw-materials/:id/adjust
func (h *RawMaterialHandler) AdjustStock(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	var req service.AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return h.resp.BadJSON(c)
	}
	rm, err := h.service.AdjustStock(c.UserContext(), id, &req)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(rm)
}
