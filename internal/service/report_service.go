package service

import (
	"context"
	"fmt"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
)

type MonthlyReport struct {
	ReportDate        time.Time                      `json:"report_date"`
	Month             int                            `json:"month"`
	Year              int                            `json:"year"`
	Stats             repository.InventoryTotals     `json:"stats"`
	CategoryBreakdown []repository.CategoryBreakdown `json:"category_breakdown"`
	Activities        []model.AuditLog               `json:"activities"`
}

type ReportService interface {
	// MonthlyReport snapshots current stock and lists the audit activity of the
	// given month. Zero month or year means the current one.
	MonthlyReport(ctx context.Context, actor model.Actor, month, year int) (*MonthlyReport, error)
}

type reportService struct {
	reportRepo        repository.ReportRepository
	auditRepo         repository.AuditRepository
	audit             *AuditRecorder
	lowStockThreshold int
}

func NewReportService(reportRepo repository.ReportRepository, auditRepo repository.AuditRepository, audit *AuditRecorder, lowStockThreshold int) ReportService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &reportService{
		reportRepo:        reportRepo,
		auditRepo:         auditRepo,
		audit:             audit,
		lowStockThreshold: lowStockThreshold,
	}
}

func (s *reportService) MonthlyReport(ctx context.Context, actor model.Actor, month, year int) (*MonthlyReport, error) {
	if err := authorize(actor, model.PrivReportView); err != nil {
		return nil, err
	}

	now := s.audit.Now()
	if month == 0 {
		month = int(now.Month())
	}
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		return nil, invalid("month must be between 1 and 12")
	}
	if year < 1 {
		return nil, invalid("year must be positive")
	}

	totals, err := s.reportRepo.Totals(ctx, s.lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("computing totals: %w", err)
	}
	categories, err := s.reportRepo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing categories: %w", err)
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	activities, err := s.auditRepo.ListBetween(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	if categories == nil {
		categories = []repository.CategoryBreakdown{}
	}
	if activities == nil {
		activities = []model.AuditLog{}
	}
	return &MonthlyReport{
		ReportDate:        now,
		Month:             month,
		Year:              year,
		Stats:             *totals,
		CategoryBreakdown: categories,
		Activities:        activities,
	}, nil
}
