package database

import (
	"fmt"

	"go-inventory-ledger/internal/model"

	"gorm.io/gorm"
)

// activeAlertIndex makes "one ACTIVE alert per (item, type)" a store-level constraint.
// Both postgres and sqlite support partial indexes.
const activeAlertIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_one_active
	ON alerts (item_id, alert_type) WHERE status = 'ACTIVE'`

// Migrate creates or updates all ledger tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.Alert{},
		&model.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(activeAlertIndex).Error; err != nil {
		return fmt.Errorf("creating active alert index: %w", err)
	}
	return nil
}
