package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/notify"
)

func TestMonthlyReport(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.mustItem(t, "Drill", 2)
	e.mustItem(t, "Saw", 0)
	if _, err := e.inventory.CreateItem(ctx, e.admin, model.ItemInput{Title: "Paint", Quantity: 30, Price: 100, Category: "Decor"}); err != nil {
		t.Fatal(err)
	}

	report, err := e.reports.MonthlyReport(ctx, e.admin, 0, 0)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Month != 3 || report.Year != 2026 {
		t.Errorf("period = %d/%d, want the clock's month", report.Month, report.Year)
	}

	stats := report.Stats
	if stats.TotalUnits != 32 || stats.TotalInventoryValue != 2*250+30*100 || stats.LowStockCount != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(report.CategoryBreakdown) != 2 || report.CategoryBreakdown[0].Category != "Decor" || report.CategoryBreakdown[1].ItemCount != 2 {
		t.Errorf("categories = %+v", report.CategoryBreakdown)
	}
	// Three item creations and one system-raised alert.
	if len(report.Activities) != 4 {
		t.Errorf("activities = %d, want 4", len(report.Activities))
	}

	empty, err := e.reports.MonthlyReport(ctx, e.admin, 2, 2026)
	if err != nil {
		t.Fatalf("february: %v", err)
	}
	if len(empty.Activities) != 0 {
		t.Errorf("february activities = %d, want 0", len(empty.Activities))
	}

	if _, err := e.reports.MonthlyReport(ctx, e.admin, 13, 2026); !errors.Is(err, ErrValidation) {
		t.Errorf("month 13 err = %v, want ErrValidation", err)
	}
	if _, err := e.reports.MonthlyReport(ctx, e.manager, 3, 2026); !errors.Is(err, ErrForbidden) {
		t.Errorf("manager err = %v, want ErrForbidden", err)
	}
}

func TestDigest(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.mustItem(t, "Tape", 3)
	e.mustItem(t, "Glue", 0)
	e.mustItem(t, "Nails", 400)

	digest, err := e.digest.Run(ctx, e.admin)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if digest.ActiveAlerts != 1 || len(digest.OutOfStock) != 1 || len(digest.LowStock) != 1 {
		t.Errorf("digest = %+v", digest)
	}
	if digest.OutOfStock[0].Title != "Glue" || digest.LowStock[0].Title != "Tape" {
		t.Errorf("digest lines = %+v / %+v", digest.OutOfStock, digest.LowStock)
	}
	if got := e.notifier.count(notify.TopicDigest); got != 1 {
		t.Errorf("digest notifications = %d, want 1", got)
	}

	msg := digest.Message()
	if msg.Subject != "[Inventory] Stock digest: 1 out of stock, 1 low" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "Tape [Hardware]: 3") {
		t.Errorf("body = %q", msg.Body)
	}

	if _, err := e.digest.Run(ctx, e.viewer); !errors.Is(err, ErrForbidden) {
		t.Errorf("viewer err = %v, want ErrForbidden", err)
	}
}
