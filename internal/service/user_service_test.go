package service

import (
	"context"
	"errors"
	"testing"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
)

func TestCreateUser(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	user, err := e.users.CreateUser(ctx, e.admin, model.CreateUserRequest{Email: " Clerk@Example.COM ", FullName: "Clerk"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Email != "clerk@example.com" || user.Role != model.RoleViewer || !user.IsActive {
		t.Errorf("user = %+v", user)
	}

	entries := e.auditEntries(t, model.EntityUser, user.ID)
	if len(entries) != 1 || entries[0].Action != model.ActionCreate || entries[0].UserID != e.admin.UserID {
		t.Errorf("audit = %+v", entries)
	}

	if _, err := e.users.CreateUser(ctx, e.admin, model.CreateUserRequest{Email: "CLERK@example.com"}); !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate err = %v, want ErrEmailExists", err)
	}
	if _, err := e.users.CreateUser(ctx, e.admin, model.CreateUserRequest{Email: "not-an-email"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad email err = %v, want ErrValidation", err)
	}
	if _, err := e.users.CreateUser(ctx, e.admin, model.CreateUserRequest{Email: "x@example.com", Role: "owner"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad role err = %v, want ErrValidation", err)
	}
	if _, err := e.users.CreateUser(ctx, e.manager, model.CreateUserRequest{Email: "y@example.com"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("manager err = %v, want ErrForbidden", err)
	}
}

func TestUpdateRole(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	user, err := e.users.UpdateRole(ctx, e.admin, e.viewer.UserID, model.UpdateRoleRequest{Role: model.RoleManager})
	if err != nil {
		t.Fatalf("update role: %v", err)
	}
	if user.Role != model.RoleManager {
		t.Errorf("role = %s, want manager", user.Role)
	}

	entries := e.auditEntries(t, model.EntityUser, user.ID)
	if len(entries) != 1 || entries[0].Action != model.ActionUpdateRole || entries[0].Details != "Updated role to manager" {
		t.Errorf("audit = %+v", entries)
	}

	if _, err := e.users.UpdateRole(ctx, e.admin, uuid.New(), model.UpdateRoleRequest{Role: model.RoleViewer}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user err = %v, want ErrUserNotFound", err)
	}
	if _, err := e.users.UpdateRole(ctx, e.admin, e.viewer.UserID, model.UpdateRoleRequest{Role: "root"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad role err = %v, want ErrValidation", err)
	}
}

func TestDeleteUser(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	if err := e.users.DeleteUser(ctx, e.admin, e.admin.UserID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("self delete err = %v, want ErrForbidden", err)
	}
	if err := e.users.DeleteUser(ctx, e.admin, e.viewer.UserID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.users.GetUser(ctx, e.admin, e.viewer.UserID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("get deleted err = %v, want ErrUserNotFound", err)
	}
	if _, err := e.users.Resolve(ctx, e.viewer.UserID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("resolve deleted err = %v, want ErrUserNotFound", err)
	}

	list, err := e.users.ListUsers(ctx, e.admin, model.PageRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// system, admin and manager remain.
	if list.Total != 3 {
		t.Errorf("users = %d, want 3", list.Total)
	}
}

func TestResolve_SystemActorCannotSignIn(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	if _, err := e.users.Resolve(ctx, e.system); !errors.Is(err, ErrForbidden) {
		t.Fatalf("system resolve err = %v, want ErrForbidden", err)
	}
	user, err := e.users.Resolve(ctx, e.admin.UserID)
	if err != nil || user.Role != model.RoleAdmin {
		t.Errorf("admin resolve = %+v, %v", user, err)
	}
}

func TestEnsureActors_Idempotent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	actors, err := EnsureActors(ctx, e.userRepo, "SYSTEM@test.local", "admin@test.local")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if actors.System.ID != e.system || actors.Admin.ID != e.admin.UserID {
		t.Error("second seed created new users")
	}
	if actors.System.IsActive {
		t.Error("system actor must stay inactive")
	}
}

func TestSystemActor_Protected(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	if err := e.users.DeleteUser(ctx, e.admin, e.system); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete system err = %v, want ErrForbidden", err)
	}
	if _, err := e.users.UpdateRole(ctx, e.admin, e.system, model.UpdateRoleRequest{Role: model.RoleViewer}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("demote system err = %v, want ErrForbidden", err)
	}
	user, err := e.userRepo.FindByID(ctx, e.system)
	if err != nil || user.Role != model.RoleAdmin {
		t.Errorf("system actor = %+v, %v; want untouched admin", user, err)
	}
	if n := e.count(t, &model.AuditLog{}, ""); n != 0 {
		t.Errorf("audit entries = %d, want 0", n)
	}
}

func TestEnsureActors_RestoresDeletedSystemActor(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	// A row removed behind the service's back must not block the next start.
	if err := e.userRepo.Delete(ctx, e.system); err != nil {
		t.Fatalf("delete: %v", err)
	}
	actors, err := EnsureActors(ctx, e.userRepo, "system@test.local", "admin@test.local")
	if err != nil {
		t.Fatalf("ensure after delete: %v", err)
	}
	if actors.System.ID != e.system {
		t.Errorf("system id = %s, want %s", actors.System.ID, e.system)
	}
	if _, err := e.userRepo.FindByID(ctx, e.system); err != nil {
		t.Errorf("system actor not restored: %v", err)
	}
}

func TestCreateUser_DeletedEmailStaysReserved(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	user, err := e.users.CreateUser(ctx, e.admin, model.CreateUserRequest{Email: "ops@test.local"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := e.users.DeleteUser(ctx, e.admin, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := e.users.CreateUser(ctx, e.admin, model.CreateUserRequest{Email: "OPS@test.local"}); !errors.Is(err, ErrEmailExists) {
		t.Errorf("recreate err = %v, want ErrEmailExists", err)
	}
}
