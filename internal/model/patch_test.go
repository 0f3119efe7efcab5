package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestItemPatch_Decode(t *testing.T) {
	var p ItemPatch
	if err := json.Unmarshal([]byte(`{"title": "Lamp", "description": null, "quantity": 0}`), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !p.Title.Set || p.Title.Null || p.Title.Value != "Lamp" {
		t.Errorf("title = %+v", p.Title)
	}
	if !p.Description.Set || !p.Description.Null {
		t.Errorf("description = %+v, want explicit null", p.Description)
	}
	if !p.Quantity.Set || p.Quantity.Value != 0 {
		t.Errorf("quantity = %+v, want explicit zero", p.Quantity)
	}
	if p.Price.Set || p.Category.Set {
		t.Error("absent fields must stay unset")
	}
	if p.Empty() {
		t.Error("patch with fields reported empty")
	}

	var empty ItemPatch
	if err := json.Unmarshal([]byte(`{}`), &empty); err != nil || !empty.Empty() {
		t.Errorf("empty patch = %+v, %v", empty, err)
	}

	var bad ItemPatch
	if err := json.Unmarshal([]byte(`{"quantity": "ten"}`), &bad); err == nil {
		t.Error("expected a type error for a string quantity")
	}
}

func TestItemPatch_Apply(t *testing.T) {
	desc := "old"
	tests := []struct {
		name   string
		patch  ItemPatch
		want   Item
		fields []string
	}{
		{
			name:   "title only",
			patch:  ItemPatch{Title: Some("New")},
			want:   Item{Title: "New", Description: &desc, Quantity: 5, Price: 100, Category: "Tools"},
			fields: []string{"title"},
		},
		{
			name: "nulls fall back",
			patch: ItemPatch{
				Description: Optional[string]{Set: true, Null: true},
				Price:       Optional[int64]{Set: true, Null: true},
				Category:    Optional[string]{Set: true, Null: true},
			},
			want:   Item{Title: "Old", Quantity: 5, Category: DefaultCategory},
			fields: []string{"description", "price", "category"},
		},
		{
			name:   "empty category falls back",
			patch:  ItemPatch{Category: Some("")},
			want:   Item{Title: "Old", Description: &desc, Quantity: 5, Price: 100, Category: DefaultCategory},
			fields: []string{"category"},
		},
		{
			name:   "title trimmed",
			patch:  ItemPatch{Title: Some("  Spaced  ")},
			want:   Item{Title: "Spaced", Description: &desc, Quantity: 5, Price: 100, Category: "Tools"},
			fields: []string{"title"},
		},
		{
			name:   "zero quantity applied",
			patch:  ItemPatch{Quantity: Some(0)},
			want:   Item{Title: "Old", Description: &desc, Quantity: 0, Price: 100, Category: "Tools"},
			fields: []string{"quantity"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := desc
			item := &Item{Title: "Old", Description: &d, Quantity: 5, Price: 100, Category: "Tools"}
			fields, err := tt.patch.Apply(item)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if !reflect.DeepEqual(fields, tt.fields) {
				t.Errorf("fields = %v, want %v", fields, tt.fields)
			}
			if !reflect.DeepEqual(*item, tt.want) {
				t.Errorf("item = %+v, want %+v", *item, tt.want)
			}
		})
	}
}

func TestItemPatch_Validate(t *testing.T) {
	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name  string
		patch ItemPatch
	}{
		{"null title", ItemPatch{Title: Optional[string]{Set: true, Null: true}}},
		{"blank title", ItemPatch{Title: Some("  ")}},
		{"long title", ItemPatch{Title: Some(string(long))}},
		{"null quantity", ItemPatch{Quantity: Optional[int]{Set: true, Null: true}}},
		{"negative quantity", ItemPatch{Quantity: Some(-1)}},
		{"negative price", ItemPatch{Price: Some[int64](-5)}},
		{"long category", ItemPatch{Category: Some(string(long[:101]))}},
		{"title with line break", ItemPatch{Title: Some("Widget\r\nBcc: attacker@evil.test")}},
		{"category with line break", ItemPatch{Category: Some("Tools\nX-Header: 1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.patch.Validate(); !errors.Is(err, ErrInvalidPatch) {
				t.Fatalf("err = %v, want ErrInvalidPatch", err)
			}
			item := &Item{Title: "unchanged"}
			if _, err := tt.patch.Apply(item); err == nil || item.Title != "unchanged" {
				t.Error("invalid patch must not be applied")
			}
		})
	}
}
