package model

import (
	"time"

	"gorm.io/gorm"
)

// DefaultCategory is applied when an item is created without a category.
const DefaultCategory = "Uncategorized"

type Item struct {
	BaseModel
	Title       string         `gorm:"type:varchar(255);not null;index" json:"title"`
	Description *string        `gorm:"type:text" json:"description"`
	Quantity    int            `gorm:"not null;default:0" json:"quantity"`
	Price       int64          `gorm:"not null;default:0" json:"price"` // minor currency units
	Category    string         `gorm:"type:varchar(100);not null;default:'Uncategorized';index" json:"category"`
	LastUpdated time.Time      `gorm:"not null;index" json:"last_updated"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Touch bumps LastUpdated. Every mutation path calls it.
func (i *Item) Touch(now time.Time) {
	i.LastUpdated = now
}

// ItemInput is the payload for creating a single item.
type ItemInput struct {
	Title       string  `json:"title" validate:"required,max=255,single_line"`
	Description *string `json:"description"`
	Quantity    int     `json:"quantity" validate:"min=0"`
	Price       int64   `json:"price" validate:"min=0"`
	Category    string  `json:"category" validate:"max=100,single_line"`
}

// ToItem builds a new Item row, applying the category default.
func (in ItemInput) ToItem(now time.Time) *Item {
	category := in.Category
	if category == "" {
		category = DefaultCategory
	}
	return &Item{
		Title:       in.Title,
		Description: in.Description,
		Quantity:    in.Quantity,
		Price:       in.Price,
		Category:    category,
		LastUpdated: now,
	}
}

// ItemFilter narrows item listings.
type ItemFilter struct {
	Category string
	Search   string
}
