package handler

import (
	"go-inventory-bom/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
	resp    *Responder
}

func NewDashboardHandler(s service.DashboardService, resp *Responder) *DashboardHandler {
	return &DashboardHandler{service: s, resp: resp}
}

// GetOrderVolume returns orders per day for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetOrderVolume(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days <= 0 {
		days = 7
	}

	data, err := h.service.GetOrderVolume(c.UserContext(), days)
	if err != nil {
		return h.resp.Error(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics of the caller's company
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext())
	if err != nil {
		return h.resp.Error(c, err)
	}
	return c.JSON(stats)
}
