package handler

import (
	"go-inventory-bom/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
	resp    *Responder
}

func NewProductHandler(s service.ProductService, resp *Responder) *ProductHandler {
	return &ProductHandler{service: s, resp: resp}
}

func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	result, err := h.service.ListProducts(c.UserContext(), c.Query("search"), pageOf(c))
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(result)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return h.resp.BadJSON(c)
	}
	product, err := h.service.CreateProduct(c.UserContext(), &req)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.Status(201).JSON(product)
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return h.resp.BadJSON(c)
	}
	product, err := h.service.UpdateProduct(c.UserContext(), id, &req)
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return h.resp.BadID(c)
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
