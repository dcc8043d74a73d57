package handler

import (
	"go-inventory-bom/internal/service"

	"github.com/gofiber/fiber/v2"
)

type FormulaHandler struct {
	service service.FormulaService
	resp    *Responder
}

func NewFormulaHandler(s service.FormulaService, resp *Responder) *FormulaHandler {
	return &FormulaHandler{service: s, resp: resp}
}

func (h *FormulaHandler) GetFormulas(c *fiber.Ctx) error {
	result, err := h.service.ListFormulas(c.UserContext(), c.Query("search"), pageOf(c))
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(result)
}

func (h *FormulaHandler) GetFormula(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	formula, err := h.service.GetFormula(c.UserContext(), id)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(formula)
}

func (h *FormulaHandler) CreateFormula(c *fiber.Ctx) error {
	var req service.CreateFormulaRequest
	if err := c.BodyParser(&req); err != nil {
		return h.resp.BadJSON(c)
	}
	formula, err := h.service.CreateFormula(c.UserContext(), &req)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.Status(201).JSON(formula)
}

// UpdateFormula replaces the item list; items sent without id are added.
func (h *FormulaHandler) UpdateFormula(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	var req service.UpdateFormulaRequest
	if err := c.BodyParser(&req); err != nil {
		return h.resp.BadJSON(c)
	}
	formula, err := h.service.UpdateFormula(c.UserContext(), id, &req)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(formula)
}

func (h *FormulaHandler) DeleteFormula(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	if err := h.service.DeleteFormula(c.UserContext(), id); err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(fiber.Map{"message": "Formula deleted"})
}
