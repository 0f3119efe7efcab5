package repository

import (
	"context"

	"go-inventory-ledger/internal/model"

	"gorm.io/gorm"
)

type ReportRepository interface {
	Summary(ctx context.Context, lowStockThreshold int) (*StockSummary, error)
	Categories(ctx context.Context) ([]CategoryBreakdown, error)
	Totals(ctx context.Context, lowStockThreshold int) (*InventoryTotals, error)
	// LowStockItems lists items below the threshold, emptiest first.
	LowStockItems(ctx context.Context, lowStockThreshold int) ([]model.Item, error)
}

// StockSummary holds the dashboard counters.
type StockSummary struct {
	TotalItems   int64 `json:"total_items"`
	LowStock     int64 `json:"low_stock"`
	OutOfStock   int64 `json:"out_of_stock"`
	ActiveAlerts int64 `json:"active_alerts"`
}

// InventoryTotals is the monthly report snapshot. TotalUnits sums quantities.
type InventoryTotals struct {
	TotalUnits          int64 `json:"total_items"`
	TotalInventoryValue int64 `json:"total_inventory_value"`
	LowStockCount       int64 `json:"low_stock_count"`
}

type CategoryBreakdown struct {
	Category  string `json:"category"`
	ItemCount int64  `json:"item_count"`
	Value     int64  `json:"value"`
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

// Summary counts low stock as 0 < quantity < threshold.
func (r *reportRepo) Summary(ctx context.Context, lowStockThreshold int) (*StockSummary, error) {
	var stats StockSummary
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Item{}).Count(&stats.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Item{}).
		Where("quantity > 0 AND quantity < ?", lowStockThreshold).
		Count(&stats.LowStock).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Item{}).Where("quantity = 0").Count(&stats.OutOfStock).Error; err != nil {
		return nil, err
	}
	active, err := NewAlertRepo(r.db).CountActive(ctx)
	if err != nil {
		return nil, err
	}
	stats.ActiveAlerts = active
	return &stats, nil
}

// Totals counts low stock as quantity < threshold, out-of-stock items included.
func (r *reportRepo) Totals(ctx context.Context, lowStockThreshold int) (*InventoryTotals, error) {
	var totals InventoryTotals
	db := r.db.WithContext(ctx)

	err := db.Model(&model.Item{}).
		Select("COALESCE(SUM(quantity), 0) AS total_units, COALESCE(SUM(quantity * price), 0) AS total_inventory_value").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	if err := db.Model(&model.Item{}).Where("quantity < ?", lowStockThreshold).Count(&totals.LowStockCount).Error; err != nil {
		return nil, err
	}
	return &totals, nil
}

// Categories sums units and value per category.
func (r *reportRepo) Categories(ctx context.Context) ([]CategoryBreakdown, error) {
	var rows []CategoryBreakdown
	err := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Select("category, COALESCE(SUM(quantity), 0) AS item_count, COALESCE(SUM(quantity * price), 0) AS value").
		Group("category").
		Order("category ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) LowStockItems(ctx context.Context, lowStockThreshold int) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("quantity < ?", lowStockThreshold).
		Order("quantity ASC, title ASC").
		Find(&items).Error
	return items, err
}
