package handler

import (
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetDashboardStats handles GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	dash, err := h.service.GetDashboard(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dash)
}
