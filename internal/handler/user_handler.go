package handler

import (
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the authenticated actor.
// GET /api/v1/me
func (h *UserHandler) Me(c *fiber.Ctx) error {
	a := actor(c)
	user, err := h.userService.Resolve(c.UserContext(), a.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": user, "privileges": model.RolePrivileges[user.Role]})
}

// GetUsers handles GET /api/v1/users?page=&size=
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	result, err := h.userService.ListUsers(c.UserContext(), actor(c), pageRequest(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	user, err := h.userService.GetUser(c.UserContext(), actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req model.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user, err := h.userService.CreateUser(c.UserContext(), actor(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user,
	})
}

// UpdateUserRole handles PATCH /api/v1/users/:id/role
func (h *UserHandler) UpdateUserRole(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var req model.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	user, err := h.userService.UpdateRole(c.UserContext(), actor(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Role updated", "data": user})
}

// DeleteUser handles DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}
	if err := h.userService.DeleteUser(c.UserContext(), actor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
