package handler

import (
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GetMonthlyReport handles GET /api/v1/reports/monthly?month=&year=
func (h *ReportHandler) GetMonthlyReport(c *fiber.Ctx) error {
	report, err := h.service.MonthlyReport(c.UserContext(), actor(c), c.QueryInt("month", 0), c.QueryInt("year", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}
