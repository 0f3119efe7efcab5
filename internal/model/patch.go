package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go-inventory-ledger/pkg/validator"
)

// Optional distinguishes an absent JSON field from an explicit null or a value.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// UnmarshalJSON is only invoked when the key is present, which is what marks Set.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

var ErrInvalidPatch = errors.New("invalid patch")

// ItemPatch is a partial item update. Absent fields are left untouched;
// present fields, including explicit nulls and zero values, are applied.
type ItemPatch struct {
	Title       Optional[string] `json:"title"`
	Description Optional[string] `json:"description"`
	Quantity    Optional[int]    `json:"quantity"`
	Price       Optional[int64]  `json:"price"`
	Category    Optional[string] `json:"category"`
}

// Empty reports whether no field is present.
func (p ItemPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Quantity.Set && !p.Price.Set && !p.Category.Set
}

// Validate rejects values that can never be stored.
func (p ItemPatch) Validate() error {
	if p.Title.Set && (p.Title.Null || strings.TrimSpace(p.Title.Value) == "") {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidPatch)
	}
	if p.Title.Set && validator.HasControl(p.Title.Value) {
		return fmt.Errorf("%w: title cannot contain control characters", ErrInvalidPatch)
	}
	if p.Title.Set && len(p.Title.Value) > 255 {
		return fmt.Errorf("%w: title is longer than 255 characters", ErrInvalidPatch)
	}
	if p.Quantity.Set && (p.Quantity.Null || p.Quantity.Value < 0) {
		return fmt.Errorf("%w: quantity must be a non-negative integer", ErrInvalidPatch)
	}
	if p.Price.Set && !p.Price.Null && p.Price.Value < 0 {
		return fmt.Errorf("%w: price must be non-negative", ErrInvalidPatch)
	}
	if p.Category.Set && len(p.Category.Value) > 100 {
		return fmt.Errorf("%w: category is longer than 100 characters", ErrInvalidPatch)
	}
	if p.Category.Set && validator.HasControl(p.Category.Value) {
		return fmt.Errorf("%w: category cannot contain control characters", ErrInvalidPatch)
	}
	return nil
}

// Apply merges the patch into item and returns the names of the fields it set.
// A null description clears it, a null price becomes 0 and a null category
// falls back to DefaultCategory.
func (p ItemPatch) Apply(item *Item) ([]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var fields []string
	if p.Title.Set {
		item.Title = strings.TrimSpace(p.Title.Value)
		fields = append(fields, "title")
	}
	if p.Description.Set {
		if p.Description.Null {
			item.Description = nil
		} else {
			desc := p.Description.Value
			item.Description = &desc
		}
		fields = append(fields, "description")
	}
	if p.Quantity.Set {
		item.Quantity = p.Quantity.Value
		fields = append(fields, "quantity")
	}
	if p.Price.Set {
		item.Price = p.Price.Value // zero when null
		fields = append(fields, "price")
	}
	if p.Category.Set {
		item.Category = p.Category.Value
		if p.Category.Null || item.Category == "" {
			item.Category = DefaultCategory
		}
		fields = append(fields, "category")
	}
	return fields, nil
}
