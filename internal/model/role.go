package model

import "github.com/google/uuid"

// Role is the coarse permission level of a user
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
)

// Privilege codes checked by the middleware and again by the services.
const (
	PrivItemView           = "item:view"
	PrivItemCreate         = "item:create"
	PrivItemUpdate         = "item:update"
	PrivItemUpdateQuantity = "item:update_quantity"
	PrivItemDelete         = "item:delete"
	PrivAlertView          = "alert:view"
	PrivAlertCreate        = "alert:create"
	PrivAlertResolve       = "alert:resolve"
	PrivAlertDelete        = "alert:delete"
	PrivAuditView          = "audit:view"
	PrivDashboardView      = "dashboard:view"
	PrivReportView         = "report:view"
	PrivUserView           = "user:view"
	PrivUserCreate         = "user:create"
	PrivUserUpdate         = "user:update"
	PrivUserDelete         = "user:delete"
)

// AllPrivileges lists every privilege; admins hold all of them.
var AllPrivileges = []string{
	PrivItemView, PrivItemCreate, PrivItemUpdate, PrivItemUpdateQuantity, PrivItemDelete,
	PrivAlertView, PrivAlertCreate, PrivAlertResolve, PrivAlertDelete,
	PrivAuditView, PrivDashboardView, PrivReportView,
	PrivUserView, PrivUserCreate, PrivUserUpdate, PrivUserDelete,
}

// RolePrivileges is the static policy table
var RolePrivileges = map[Role][]string{
	RoleAdmin: AllPrivileges,
	RoleManager: {
		PrivItemView, PrivItemUpdateQuantity,
		PrivAlertView, PrivAlertCreate, PrivAlertResolve,
		PrivDashboardView,
	},
	RoleViewer: {
		PrivItemView, PrivAlertView, PrivDashboardView,
	},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := RolePrivileges[r]
	return ok
}

// HasPrivilege checks the policy table for the role.
func (r Role) HasPrivilege(code string) bool {
	for _, p := range RolePrivileges[r] {
		if p == code {
			return true
		}
	}
	return false
}

// Actor is the already-authenticated identity performing an operation.
type Actor struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}

// Can reports whether the actor holds the privilege.
func (a Actor) Can(code string) bool {
	return a.UserID != uuid.Nil && a.Role.HasPrivilege(code)
}
