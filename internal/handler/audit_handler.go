package handler

import (
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuditHandler struct {
	recorder *service.AuditRecorder
}

func NewAuditHandler(r *service.AuditRecorder) *AuditHandler {
	return &AuditHandler{recorder: r}
}

// GetAuditLogs handles GET /api/v1/audit-logs?user_id=&entity_type=&entity_id=
func (h *AuditHandler) GetAuditLogs(c *fiber.Ctx) error {
	var filter model.AuditFilter
	if v := c.Query("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid user_id"})
		}
		filter.UserID = &id
	}
	filter.EntityType = model.EntityType(c.Query("entity_type"))
	if v := c.Query("entity_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid entity_id"})
		}
		filter.EntityID = &id
	}
	return h.list(c, filter)
}

func (h *AuditHandler) GetUserAuditLogs(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	return h.list(c, model.AuditFilter{UserID: &id})
}

func (h *AuditHandler) GetItemAuditLogs(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	return h.list(c, model.AuditFilter{EntityType: model.EntityItem, EntityID: &id})
}

func (h *AuditHandler) list(c *fiber.Ctx, filter model.AuditFilter) error {
	result, err := h.recorder.List(c.UserContext(), actor(c), filter, pageRequest(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
