package service

import (
	"context"
	"fmt"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
)

// Actors are the users every deployment needs.
type Actors struct {
	System *model.User
	Admin  *model.User
}

// EnsureActors seeds the system actor and the first admin. The system actor owns
// alerts raised automatically; it is kept inactive so it can never sign in.
func EnsureActors(ctx context.Context, users repository.UserRepository, systemEmail, adminEmail string) (*Actors, error) {
	systemEmail = strings.ToLower(strings.TrimSpace(systemEmail))
	adminEmail = strings.ToLower(strings.TrimSpace(adminEmail))

	system, _, err := users.EnsureUser(ctx, systemEmail, "System", model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("seeding system actor: %w", err)
	}
	if system.IsActive {
		system.IsActive = false
		if err := users.Save(ctx, system); err != nil {
			return nil, fmt.Errorf("deactivating system actor: %w", err)
		}
	}

	admin, _, err := users.EnsureUser(ctx, adminEmail, "Administrator", model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("seeding admin: %w", err)
	}
	return &Actors{System: system, Admin: admin}, nil
}
