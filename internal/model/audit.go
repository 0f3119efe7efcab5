package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditAction string

const (
	ActionCreate         AuditAction = "CREATE"
	ActionUpdate         AuditAction = "UPDATE"
	ActionUpdateQuantity AuditAction = "UPDATE_QUANTITY"
	ActionBulkCreate     AuditAction = "BULK_CREATE"
	ActionDelete         AuditAction = "DELETE"
	ActionUpdateRole     AuditAction = "UPDATE_ROLE"
)

type EntityType string

const (
	EntityItem  EntityType = "ITEM"
	EntityUser  EntityType = "USER"
	EntityAlert EntityType = "ALERT"
)

// StockChange is the structured part of an audit entry. Quantity history is
// rebuilt from NewQuantity, never from the Details text.
type StockChange struct {
	PreviousQuantity *int `json:"previous_quantity,omitempty"`
	NewQuantity      *int `json:"new_quantity,omitempty"`
	ItemCount        int  `json:"item_count,omitempty"` // bulk operations only
}

// AuditLog is an immutable record of one mutation. Rows are only ever inserted.
// EntityID is nil for entries that cover more than one entity (BULK_CREATE).
type AuditLog struct {
	ID         uint64                          `gorm:"primaryKey;autoIncrement" json:"id"`
	Action     AuditAction                     `gorm:"type:varchar(30);not null;index" json:"action"`
	EntityType EntityType                      `gorm:"type:varchar(20);not null;index:idx_audit_entity,priority:1" json:"entity_type"`
	EntityID   *uuid.UUID                      `gorm:"type:uuid;index:idx_audit_entity,priority:2" json:"entity_id"`
	UserID     uuid.UUID                       `gorm:"type:uuid;not null;index" json:"user_id"`
	Timestamp  time.Time                       `gorm:"not null;index" json:"timestamp"`
	Details    string                          `gorm:"type:text" json:"details"`
	Change     datatypes.JSONType[StockChange] `json:"change"`
}

// AuditRecord is what callers hand to the recorder; ID and Timestamp are assigned on append.
type AuditRecord struct {
	Action     AuditAction
	EntityType EntityType
	EntityID   *uuid.UUID
	UserID     uuid.UUID
	Details    string
	Change     StockChange
}

// AuditFilter selects audit entries. EntityID is only meaningful together with EntityType.
type AuditFilter struct {
	UserID     *uuid.UUID
	EntityType EntityType
	EntityID   *uuid.UUID
}

// QuantityDetails is the human-readable text written for every quantity change.
func QuantityDetails(quantity int) string {
	return fmt.Sprintf("Updated quantity to %d", quantity)
}

// QuantityChange builds the structured payload for a quantity transition.
func QuantityChange(previous, next int) StockChange {
	return StockChange{PreviousQuantity: &previous, NewQuantity: &next}
}

// InitialQuantity builds the payload for an item's first recorded quantity.
func InitialQuantity(quantity int) StockChange {
	return StockChange{NewQuantity: &quantity}
}
