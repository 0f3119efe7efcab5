package handler

import (
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AlertHandler struct {
	service service.AlertService
}

func NewAlertHandler(s service.AlertService) *AlertHandler {
	return &AlertHandler{service: s}
}

// GetAlerts handles GET /api/v1/alerts?status=ACTIVE|RESOLVED
func (h *AlertHandler) GetAlerts(c *fiber.Ctx) error {
	status := model.AlertStatus(c.Query("status"))
	result, err := h.service.ListAlerts(c.UserContext(), actor(c), status, pageRequest(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *AlertHandler) CreateAlert(c *fiber.Ctx) error {
	var input model.AlertInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	alert, err := h.service.CreateAlert(c.UserContext(), actor(c), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Alert created", "data": alert})
}

func (h *AlertHandler) ResolveAlert(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid alert ID"})
	}
	alert, err := h.service.ResolveAlert(c.UserContext(), actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Alert resolved", "data": alert})
}

func (h *AlertHandler) DeleteAlert(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid alert ID"})
	}
	if err := h.service.DeleteAlert(c.UserContext(), actor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"detail": "Alert deleted"})
}
