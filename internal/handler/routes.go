package handler

import (
	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/model"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Inventory *InventoryHandler
	Alerts    *AlertHandler
	Audit     *AuditHandler
	Dashboard *DashboardHandler
	Reports   *ReportHandler
	Users     *UserHandler
}

// RegisterRoutes mounts the /api/v1 surface. auth must store the actor for
// middleware.RequirePrivilege; the services check privileges again.
func RegisterRoutes(app *fiber.App, h Handlers, auth fiber.Handler) {
	api := app.Group("/api/v1")
	protected := api.Group("", auth)
	priv := middleware.RequirePrivilege

	protected.Get("/me", h.Users.Me)

	// Items
	protected.Get("/items", priv(model.PrivItemView), h.Inventory.GetItems)
	protected.Post("/items", priv(model.PrivItemCreate), h.Inventory.CreateItem)
	protected.Post("/items/bulk", priv(model.PrivItemCreate), h.Inventory.CreateItemsBulk)
	protected.Get("/items/:id", priv(model.PrivItemView), h.Inventory.GetItem)
	protected.Put("/items/:id", priv(model.PrivItemUpdate), h.Inventory.UpdateItem)
	protected.Patch("/items/:id/quantity", priv(model.PrivItemUpdateQuantity), h.Inventory.UpdateQuantity)
	protected.Delete("/items/:id", priv(model.PrivItemDelete), h.Inventory.DeleteItem)
	protected.Get("/items/:id/history", priv(model.PrivItemView), h.Inventory.GetItemHistory)

	// Alerts
	protected.Get("/alerts", priv(model.PrivAlertView), h.Alerts.GetAlerts)
	protected.Post("/alerts", priv(model.PrivAlertCreate), h.Alerts.CreateAlert)
	protected.Patch("/alerts/:id/resolve", priv(model.PrivAlertResolve), h.Alerts.ResolveAlert)
	protected.Delete("/alerts/:id", priv(model.PrivAlertDelete), h.Alerts.DeleteAlert)

	// Audit trail
	protected.Get("/audit-logs", priv(model.PrivAuditView), h.Audit.GetAuditLogs)
	protected.Get("/audit-logs/user/:id", priv(model.PrivAuditView), h.Audit.GetUserAuditLogs)
	protected.Get("/audit-logs/item/:id", priv(model.PrivAuditView), h.Audit.GetItemAuditLogs)

	protected.Get("/dashboard/stats", priv(model.PrivDashboardView), h.Dashboard.GetDashboardStats)
	protected.Get("/reports/monthly", priv(model.PrivReportView), h.Reports.GetMonthlyReport)

	// Users
	protected.Get("/users", priv(model.PrivUserView), h.Users.GetUsers)
	protected.Get("/users/:id", priv(model.PrivUserView), h.Users.GetUser)
	protected.Post("/users", priv(model.PrivUserCreate), h.Users.CreateUser)
	protected.Patch("/users/:id/role", priv(model.PrivUserUpdate), h.Users.UpdateUserRole)
	protected.Delete("/users/:id", priv(model.PrivUserDelete), h.Users.DeleteUser)
}
