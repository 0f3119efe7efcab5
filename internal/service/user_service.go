package service

import (
	"context"
	"fmt"
	"strings"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(ctx context.Context, actor model.Actor, req model.CreateUserRequest) (*model.User, error)
	UpdateRole(ctx context.Context, actor model.Actor, id uuid.UUID, req model.UpdateRoleRequest) (*model.User, error)
	DeleteUser(ctx context.Context, actor model.Actor, id uuid.UUID) error
	GetUser(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context, actor model.Actor, page model.PageRequest) (model.PageResult[model.User], error)
	// Resolve returns the active user behind an authenticated identity.
	Resolve(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type userService struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	audit       *AuditRecorder
	systemActor uuid.UUID
}

// NewUserService wires user administration. The system actor can be neither deleted
// nor given another role.
func NewUserService(db *gorm.DB, userRepo repository.UserRepository, audit *AuditRecorder, systemActor uuid.UUID) UserService {
	return &userService{db: db, userRepo: userRepo, audit: audit, systemActor: systemActor}
}

func (s *userService) CreateUser(ctx context.Context, actor model.Actor, req model.CreateUserRequest) (*model.User, error) {
	if err := authorize(actor, model.PrivUserCreate); err != nil {
		return nil, err
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(&req); err != nil {
		return nil, err
	}
	if req.Role == "" {
		req.Role = model.RoleViewer
	}

	user := &model.User{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: true,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		taken, err := users.EmailTaken(ctx, req.Email)
		if err != nil {
			return fmt.Errorf("checking email: %w", err)
		}
		if taken {
			return ErrEmailExists
		}

		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		_, err = s.audit.Append(ctx, tx, model.AuditRecord{
			Action:     model.ActionCreate,
			EntityType: model.EntityUser,
			EntityID:   entityRef(user.ID),
			UserID:     actor.UserID,
			Details:    fmt.Sprintf("Created user %s with role %s", user.Email, user.Role),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateRole(ctx context.Context, actor model.Actor, id uuid.UUID, req model.UpdateRoleRequest) (*model.User, error) {
	if err := authorize(actor, model.PrivUserUpdate); err != nil {
		return nil, err
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	if id == s.systemActor {
		return nil, fmt.Errorf("%w: the system actor's role is fixed", ErrForbidden)
	}

	var user *model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		var err error
		user, err = users.FindByID(ctx, id)
		if err != nil {
			return notFound(err, ErrUserNotFound, "loading user")
		}

		user.Role = req.Role
		if err := users.Save(ctx, user); err != nil {
			return fmt.Errorf("updating role: %w", err)
		}
		_, err = s.audit.Append(ctx, tx, model.AuditRecord{
			Action:     model.ActionUpdateRole,
			EntityType: model.EntityUser,
			EntityID:   entityRef(user.ID),
			UserID:     actor.UserID,
			Details:    fmt.Sprintf("Updated role to %s", req.Role),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if err := authorize(actor, model.PrivUserDelete); err != nil {
		return err
	}
	if id == actor.UserID {
		return fmt.Errorf("%w: cannot delete your own account", ErrForbidden)
	}
	if id == s.systemActor {
		return fmt.Errorf("%w: cannot delete the system actor", ErrForbidden)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		user, err := users.FindByID(ctx, id)
		if err != nil {
			return notFound(err, ErrUserNotFound, "loading user")
		}
		if err := users.Delete(ctx, user.ID); err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}
		_, err = s.audit.Append(ctx, tx, model.AuditRecord{
			Action:     model.ActionDelete,
			EntityType: model.EntityUser,
			EntityID:   entityRef(user.ID),
			UserID:     actor.UserID,
			Details:    "Deleted user",
		})
		return err
	})
}

func (s *userService) GetUser(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.User, error) {
	if err := authorize(actor, model.PrivUserView); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, "loading user")
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, actor model.Actor, page model.PageRequest) (model.PageResult[model.User], error) {
	if err := authorize(actor, model.PrivUserView); err != nil {
		return model.PageResult[model.User]{}, err
	}
	page = page.Normalize()
	users, total, err := s.userRepo.List(ctx, page)
	if err != nil {
		return model.PageResult[model.User]{}, fmt.Errorf("listing users: %w", err)
	}
	return model.NewPageResult(users, total, page), nil
}

func (s *userService) Resolve(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, "loading user")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user is inactive", ErrForbidden)
	}
	return user, nil
}
