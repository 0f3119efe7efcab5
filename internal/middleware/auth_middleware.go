package middleware

import (
	"context"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const actorKey = "actor"

// UserResolver loads the current state of an authenticated user.
type UserResolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// RequireAuth validates the bearer token and stores the resolved actor in the context.
// The role is taken from the user row, so role changes apply without a new token.
func RequireAuth(tokens *jwt.Manager, users UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		user, err := users.Resolve(c.UserContext(), claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found or inactive"})
		}

		c.Locals(actorKey, user.Actor())
		return c.Next()
	}
}

// RequirePrivilege checks the actor set by RequireAuth against the role policy.
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Not authenticated"})
		}
		if !actor.Can(requiredPrivilege) {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
			})
		}
		return c.Next()
	}
}

// ActorFrom returns the actor stored by RequireAuth.
func ActorFrom(c *fiber.Ctx) (model.Actor, bool) {
	actor, ok := c.Locals(actorKey).(model.Actor)
	return actor, ok
}

// WithActor stores actor directly; used by tests and internal callers.
func WithActor(actor model.Actor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(actorKey, actor)
		return c.Next()
	}
}
