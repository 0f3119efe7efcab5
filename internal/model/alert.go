package model

import (
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	AlertLowStock   AlertType = "LOW_STOCK"
	AlertOutOfStock AlertType = "OUT_OF_STOCK"
	AlertManual     AlertType = "MANUAL"
)

type AlertStatus string

const (
	AlertActive   AlertStatus = "ACTIVE"
	AlertResolved AlertStatus = "RESOLVED" // terminal
)

// Alert is a stock alert. At most one ACTIVE alert may exist per (ItemID, AlertType);
// the partial unique index created in database.Migrate backs that up at the store level.
type Alert struct {
	BaseModel
	ItemID     *uuid.UUID  `gorm:"type:uuid;index" json:"item_id"`
	Item       *Item       `gorm:"foreignKey:ItemID" json:"-"`
	AlertType  AlertType   `gorm:"type:varchar(20);not null" json:"alert_type"`
	Status     AlertStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	Message    string      `gorm:"type:text;not null" json:"message"`
	CreatedBy  *uuid.UUID  `gorm:"type:uuid" json:"created_by"`
	ResolvedAt *time.Time  `json:"resolved_at"`
	ResolvedBy *uuid.UUID  `gorm:"type:uuid" json:"resolved_by"`

	CreatedByUser  *User `gorm:"foreignKey:CreatedBy" json:"-"`
	ResolvedByUser *User `gorm:"foreignKey:ResolvedBy" json:"-"`
}

// IsActive reports whether the alert can still be resolved.
func (a *Alert) IsActive() bool {
	return a.Status == AlertActive
}

// AlertInput is the payload for a manually raised alert.
type AlertInput struct {
	ItemID    *uuid.UUID `json:"item_id"`
	AlertType AlertType  `json:"alert_type" validate:"required,oneof=LOW_STOCK OUT_OF_STOCK MANUAL"`
	Message   string     `json:"message" validate:"required,max=1000"`
}

// AlertDetails is an alert enriched with the names the alert list shows.
type AlertDetails struct {
	Alert
	ItemTitle       *string `json:"item_title,omitempty"`
	CreatedByEmail  *string `json:"created_by_email,omitempty"`
	ResolvedByEmail *string `json:"resolved_by_email,omitempty"`
}

// ToDetails flattens the preloaded relations.
func (a *Alert) ToDetails() AlertDetails {
	d := AlertDetails{Alert: *a}
	if a.ItemID != nil {
		title := "Unknown Item"
		if a.Item != nil {
			title = a.Item.Title
		}
		d.ItemTitle = &title
	}
	if a.CreatedByUser != nil {
		d.CreatedByEmail = &a.CreatedByUser.Email
	}
	if a.ResolvedByUser != nil {
		d.ResolvedByEmail = &a.ResolvedByUser.Email
	}
	return d
}
