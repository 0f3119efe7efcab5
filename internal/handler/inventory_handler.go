package handler

import (
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service   service.InventoryService
	dashboard service.DashboardService
}

func NewInventoryHandler(s service.InventoryService, d service.DashboardService) *InventoryHandler {
	return &InventoryHandler{service: s, dashboard: d}
}

// GetItems handles GET /api/v1/items?category=&search=&page=&size=
func (h *InventoryHandler) GetItems(c *fiber.Ctx) error {
	filter := model.ItemFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	result, err := h.service.ListItems(c.UserContext(), actor(c), filter, pageRequest(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	item, err := h.service.GetItem(c.UserContext(), actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	var input model.ItemInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	item, err := h.service.CreateItem(c.UserContext(), actor(c), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Item created", "data": item})
}

// CreateItemsBulk handles POST /api/v1/items/bulk with a JSON array of items.
func (h *InventoryHandler) CreateItemsBulk(c *fiber.Ctx) error {
	var inputs []model.ItemInput
	if err := c.BodyParser(&inputs); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	items, err := h.service.CreateItemsBulk(c.UserContext(), actor(c), inputs)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Items created", "data": items})
}

// UpdateItem handles PUT /api/v1/items/:id. Fields missing from the body are left
// as they are; fields sent as null are cleared or reset to their default.
func (h *InventoryHandler) UpdateItem(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var patch model.ItemPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	item, err := h.service.UpdateItem(c.UserContext(), actor(c), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item updated", "data": item})
}

func (h *InventoryHandler) UpdateQuantity(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}

	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.Quantity == nil {
		return c.Status(400).JSON(fiber.Map{"error": "quantity is required"})
	}

	item, err := h.service.UpdateQuantity(c.UserContext(), actor(c), id, *req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Quantity updated", "data": item})
}

func (h *InventoryHandler) DeleteItem(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	if err := h.service.DeleteItem(c.UserContext(), actor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item deleted"})
}

// GetItemHistory returns the reconstructed quantity timeline of one item.
func (h *InventoryHandler) GetItemHistory(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	history, err := h.dashboard.ReconstructQuantityHistory(c.UserContext(), actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"item_id": id, "history": history})
}
