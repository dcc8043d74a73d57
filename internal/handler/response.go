package handler

import (
	"go-inventory-bom/internal/repository"
	"go-inventory-bom/internal/service"
	"go-inventory-bom/pkg/i18n"
	"go-inventory-bom/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Responder renders service errors as localized JSON with a status per error kind.
type Responder struct {
	loc i18n.Localizer
}

func NewResponder(loc i18n.Localizer) *Responder {
	return &Responder{loc: loc}
}

func statusOf(kind service.Kind) int {
	switch kind {
	case service.ErrNotFound:
		return fiber.StatusNotFound
	case service.ErrConflict, service.ErrInvariantViolation:
		return fiber.StatusConflict
	case service.ErrUnitTypeMismatch:
		return fiber.StatusUnprocessableEntity
	case service.ErrValidation, service.ErrBadRequest:
		return fiber.StatusBadRequest
	case service.ErrTenantRequired:
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}

func (r *Responder) Error(c *fiber.Ctx, err error) error {
	kind := service.KindOf(err)
	if kind == "" {
		logger.LogError(logger.GetLogger(), "handler", c.Route().Path, c.Method(), c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	body := fiber.Map{"kind": kind}
	if e, ok := service.AsError(err); ok {
		body["code"] = e.Key
		body["error"] = r.loc.Localize(e.Key, e.Args...)
	} else {
		body["error"] = string(kind)
	}
	return c.Status(statusOf(kind)).JSON(body)
}

func (r *Responder) BadJSON(c *fiber.Ctx) error {
	return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
}

func (r *Responder) BadID(c *fiber.Ctx) error {
	return c.Status(400).JSON(fiber.Map{"error": "Invalid ID format"})
}

// Helper untuk parse UUID dari path param
func parseID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func pageOf(c *fiber.Ctx) repository.Page {
	return repository.Page{Skip: c.QueryInt("skip", 0), Take: c.QueryInt("take", repository.DefaultPageSize)}
}

func (r *Responder) Forbidden(c *fiber.Ctx, key string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"code": key, "error": r.loc.Localize(key)})
}
