package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"

	"github.com/google/uuid"
)

// QuantityPoint is the quantity an item had from Timestamp on.
type QuantityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Quantity  int       `json:"quantity"`
}

type ItemTimeline struct {
	ItemID          uuid.UUID       `json:"item_id"`
	Title           string          `json:"title"`
	CurrentQuantity int             `json:"current_quantity"`
	Activity        int64           `json:"activity"`
	History         []QuantityPoint `json:"history"`
}

type Dashboard struct {
	ItemStats   []ItemTimeline          `json:"item_stats"`
	Summary     repository.StockSummary `json:"summary"`
	GeneratedAt time.Time               `json:"generated_at"`
}

type DashboardService interface {
	ReconstructQuantityHistory(ctx context.Context, actor model.Actor, itemID uuid.UUID) ([]QuantityPoint, error)
	GetDashboard(ctx context.Context, actor model.Actor) (*Dashboard, error)
}

type DashboardConfig struct {
	TopItems          int
	LowStockThreshold int
}

type dashboardService struct {
	itemRepo   repository.ItemRepository
	auditRepo  repository.AuditRepository
	reportRepo repository.ReportRepository
	audit      *AuditRecorder
	cfg        DashboardConfig
	effects    Effects
}

func NewDashboardService(itemRepo repository.ItemRepository, auditRepo repository.AuditRepository, reportRepo repository.ReportRepository, audit *AuditRecorder, cfg DashboardConfig, effects Effects) DashboardService {
	if cfg.TopItems <= 0 {
		cfg.TopItems = 3
	}
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 10
	}
	return &dashboardService{
		itemRepo:   itemRepo,
		auditRepo:  auditRepo,
		reportRepo: reportRepo,
		audit:      audit,
		cfg:        cfg,
		effects:    effects,
	}
}

func (s *dashboardService) ReconstructQuantityHistory(ctx context.Context, actor model.Actor, itemID uuid.UUID) ([]QuantityPoint, error) {
	if err := authorize(actor, model.PrivItemView); err != nil {
		return nil, err
	}
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, notFound(err, ErrItemNotFound, "loading item")
	}
	return s.timeline(ctx, item)
}

// timeline reads the structured change of each entry, oldest first, and closes
// with the current quantity at the current time.
func (s *dashboardService) timeline(ctx context.Context, item *model.Item) ([]QuantityPoint, error) {
	entries, err := s.auditRepo.ListItemHistory(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("loading item history: %w", err)
	}

	points := make([]QuantityPoint, 0, len(entries)+1)
	for i := len(entries) - 1; i >= 0; i-- {
		change := entries[i].Change.Data()
		if change.NewQuantity == nil {
			continue
		}
		points = append(points, QuantityPoint{Timestamp: entries[i].Timestamp, Quantity: *change.NewQuantity})
	}

	now := s.audit.Now()
	if n := len(points); n > 0 && points[n-1].Timestamp.After(now) {
		now = points[n-1].Timestamp
	}
	return append(points, QuantityPoint{Timestamp: now, Quantity: item.Quantity}), nil
}

func (s *dashboardService) GetDashboard(ctx context.Context, actor model.Actor) (*Dashboard, error) {
	if err := authorize(actor, model.PrivDashboardView); err != nil {
		return nil, err
	}

	if s.effects.Cache != nil {
		var cached Dashboard
		found, err := s.effects.Cache.Get(ctx, &cached)
		switch {
		case err != nil:
			s.effects.Metrics.DashboardCacheLookup("error")
			s.effects.logger().WarnContext(ctx, "dashboard cache read failed", slog.String("error", err.Error()))
		case found:
			s.effects.Metrics.DashboardCacheLookup("hit")
			return &cached, nil
		default:
			s.effects.Metrics.DashboardCacheLookup("miss")
		}
	}

	dash, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if s.effects.Cache != nil {
		if err := s.effects.Cache.Set(ctx, dash); err != nil {
			s.effects.logger().WarnContext(ctx, "dashboard cache write failed", slog.String("error", err.Error()))
		}
	}
	return dash, nil
}

func (s *dashboardService) build(ctx context.Context) (*Dashboard, error) {
	top, err := s.auditRepo.TopEntities(ctx, model.EntityItem, s.cfg.TopItems)
	if err != nil {
		return nil, fmt.Errorf("ranking items: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(top))
	for _, t := range top {
		ids = append(ids, t.EntityID)
	}
	items, err := s.itemRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	stats := make([]ItemTimeline, 0, len(top))
	for _, t := range top {
		item, ok := byID[t.EntityID]
		if !ok {
			// Deleted since; its audit volume still counts toward the ranking.
			continue
		}

		history, err := s.timeline(ctx, item)
		if err != nil {
			return nil, err
		}
		stats = append(stats, ItemTimeline{
			ItemID:          item.ID,
			Title:           item.Title,
			CurrentQuantity: item.Quantity,
			Activity:        t.Activity,
			History:         history,
		})
	}

	summary, err := s.reportRepo.Summary(ctx, s.cfg.LowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("summarising stock: %w", err)
	}

	return &Dashboard{
		ItemStats:   stats,
		Summary:     *summary,
		GeneratedAt: s.audit.Now(),
	}, nil
}
