package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
)

func TestReconstructQuantityHistory(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	item := e.mustItem(t, "Screw", 10)

	for _, q := range []int{7, 3} {
		if _, err := e.inventory.UpdateQuantity(ctx, e.manager, item.ID, q); err != nil {
			t.Fatalf("update to %d: %v", q, err)
		}
	}
	if _, err := e.inventory.UpdateItem(ctx, e.admin, item.ID, model.ItemPatch{Title: model.Some("Wood screw")}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := e.inventory.UpdateItem(ctx, e.admin, item.ID, model.ItemPatch{Quantity: model.Some(12)}); err != nil {
		t.Fatalf("patch quantity: %v", err)
	}

	points, err := e.dashboard.ReconstructQuantityHistory(ctx, e.viewer, item.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	want := []int{10, 7, 3, 12, 12}
	if len(points) != len(want) {
		t.Fatalf("points = %+v, want quantities %v", points, want)
	}
	for i, p := range points {
		if p.Quantity != want[i] {
			t.Errorf("point %d quantity = %d, want %d", i, p.Quantity, want[i])
		}
		if i > 0 && p.Timestamp.Before(points[i-1].Timestamp) {
			t.Errorf("point %d at %v is before point %d at %v", i, p.Timestamp, i-1, points[i-1].Timestamp)
		}
	}
}

func TestReconstructQuantityHistory_BulkCreatedItemHasOnlyCurrentPoint(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	items, err := e.inventory.CreateItemsBulk(ctx, e.admin, []model.ItemInput{{Title: "Imported", Quantity: 6}})
	if err != nil {
		t.Fatal(err)
	}

	points, err := e.dashboard.ReconstructQuantityHistory(ctx, e.viewer, items[0].ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(points) != 1 || points[0].Quantity != 6 {
		t.Errorf("points = %+v, want the current quantity only", points)
	}

	if _, err := e.dashboard.ReconstructQuantityHistory(ctx, e.viewer, uuid.New()); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("missing item err = %v, want ErrItemNotFound", err)
	}
}

func TestGetDashboard_RanksByActivityWithIDTieBreak(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	busy := e.mustItem(t, "Busy", 50)
	for _, q := range []int{40, 30} {
		if _, err := e.inventory.UpdateQuantity(ctx, e.manager, busy.ID, q); err != nil {
			t.Fatal(err)
		}
	}
	quiet := []uuid.UUID{
		e.mustItem(t, "Low", 5).ID,
		e.mustItem(t, "Empty", 0).ID,
		e.mustItem(t, "Plenty", 20).ID,
	}
	sort.Slice(quiet, func(i, j int) bool { return quiet[i].String() < quiet[j].String() })

	dash, err := e.dashboard.GetDashboard(ctx, e.viewer)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	wantOrder := []uuid.UUID{busy.ID, quiet[0], quiet[1]}
	if len(dash.ItemStats) != len(wantOrder) {
		t.Fatalf("item stats = %d, want %d", len(dash.ItemStats), len(wantOrder))
	}
	for i, id := range wantOrder {
		if dash.ItemStats[i].ItemID != id {
			t.Errorf("rank %d = %s, want %s", i, dash.ItemStats[i].ItemID, id)
		}
	}
	if dash.ItemStats[0].Activity != 3 || dash.ItemStats[0].CurrentQuantity != 30 {
		t.Errorf("busy stats = %+v", dash.ItemStats[0])
	}
	if h := dash.ItemStats[0].History; len(h) != 4 || h[len(h)-1].Quantity != 30 {
		t.Errorf("busy history = %+v", h)
	}

	s := dash.Summary
	if s.TotalItems != 4 || s.LowStock != 1 || s.OutOfStock != 1 || s.ActiveAlerts != 1 {
		t.Errorf("summary = %+v", s)
	}
}

func TestGetDashboard_SkipsDeletedItems(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	gone := e.mustItem(t, "Gone", 1)
	for _, q := range []int{2, 3, 4} {
		if _, err := e.inventory.UpdateQuantity(ctx, e.admin, gone.ID, q); err != nil {
			t.Fatal(err)
		}
	}
	kept := e.mustItem(t, "Kept", 1)
	if err := e.inventory.DeleteItem(ctx, e.admin, gone.ID); err != nil {
		t.Fatal(err)
	}

	dash, err := e.dashboard.GetDashboard(ctx, e.admin)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(dash.ItemStats) != 1 || dash.ItemStats[0].ItemID != kept.ID {
		t.Errorf("item stats = %+v, want only Kept", dash.ItemStats)
	}
}

func TestGetDashboard_CacheHitAndInvalidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	item := e.mustItem(t, "Cached", 8)

	first, err := e.dashboard.GetDashboard(ctx, e.viewer)
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.dashboard.GetDashboard(ctx, e.viewer)
	if err != nil {
		t.Fatal(err)
	}
	if e.cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", e.cache.hits)
	}
	if !second.GeneratedAt.Equal(first.GeneratedAt) {
		t.Error("cached dashboard should be served unchanged")
	}

	if _, err := e.inventory.UpdateQuantity(ctx, e.manager, item.ID, 0); err != nil {
		t.Fatal(err)
	}
	third, err := e.dashboard.GetDashboard(ctx, e.viewer)
	if err != nil {
		t.Fatal(err)
	}
	if e.cache.hits != 1 {
		t.Errorf("cache hits after mutation = %d, want 1", e.cache.hits)
	}
	if third.Summary.OutOfStock != 1 {
		t.Errorf("rebuilt summary = %+v", third.Summary)
	}
}

func TestGetDashboard_RequiresPrivilege(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.dashboard.GetDashboard(context.Background(), model.Actor{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}
