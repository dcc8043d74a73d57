package handler

import (
	"go-inventory-bom/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UnitHandler struct {
	service service.UnitService
	resp    *Responder
}

func NewUnitHandler(s service.UnitService, resp *Responder) *UnitHandler {
	return &UnitHandler{service: s, resp: resp}
}

// GetUnits lists own and global units.
// Query params: search, skip, take
func (h *UnitHandler) GetUnits(c *fiber.Ctx) error {
	result, err := h.service.ListUnits(c.UserContext(), c.Query("search"), pageOf(c))
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(result)
}

func (h *UnitHandler) GetUnit(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	unit, err := h.service.GetUnit(c.UserContext(), id)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(unit)
}

func (h *UnitHandler) CreateUnit(c *fiber.Ctx) error {
	var req service.CreateUnitRequest
	if err := c.BodyParser(&req); err != nil {
		return h.resp.BadJSON(c)
	}
	unit, err := h.service.CreateUnit(c.UserContext(), &req)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.Status(201).JSON(unit)
}

func (h *UnitHandler) UpdateUnit(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	var req service.UpdateUnitRequest
	if err := c.BodyParser(&req); err != nil {
		return h.resp.BadJSON(c)
	}
	unit, err := h.service.UpdateUnit(c.UserContext(), id, &req)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(unit)
}

func (h *UnitHandler) DeleteUnit(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	if err := h.service.DeleteUnit(c.UserContext(), id); err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unit deleted"})
}

// GetRateToRoot
// GET /api/v1/units/:id/rate-to-root
func (h *UnitHandler) GetRateToRoot(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	rate, err := h.service.RateToRoot(c.UserContext(), id)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(fiber.Map{"unit_id": id, "rate_to_root": rate})
}

// ConvertUnit returns the factor from the raw material's native unit into unit :id.
// GET /api/v1/units/:id/convert?raw_material_id=
func (h *UnitHandler) ConvertUnit(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	rawMaterialID, err := uuid.Parse(c.Query("raw_material_id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "raw_material_id is required"})
	}
	factor, err := h.service.ConvertUnit(c.UserContext(), id, rawMaterialID)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(fiber.Map{
		"target_unit_id":  id,
		"raw_material_id": rawMaterialID,
		"factor":          factor,
	})
}
