package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/notify"
	"go-inventory-ledger/internal/repository"
)

// DigestItem is one line of the stock digest.
type DigestItem struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

type Digest struct {
	GeneratedAt  time.Time    `json:"generated_at"`
	ActiveAlerts int64        `json:"active_alerts"`
	OutOfStock   []DigestItem `json:"out_of_stock"`
	LowStock     []DigestItem `json:"low_stock"`
}

// DigestService builds the periodic stock digest and hands it to the notifier.
type DigestService struct {
	reportRepo        repository.ReportRepository
	audit             *AuditRecorder
	lowStockThreshold int
	effects           Effects
}

func NewDigestService(reportRepo repository.ReportRepository, audit *AuditRecorder, lowStockThreshold int, effects Effects) *DigestService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &DigestService{
		reportRepo:        reportRepo,
		audit:             audit,
		lowStockThreshold: lowStockThreshold,
		effects:           effects,
	}
}

func (d *DigestService) Build(ctx context.Context) (*Digest, error) {
	items, err := d.reportRepo.LowStockItems(ctx, d.lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("loading low stock items: %w", err)
	}
	summary, err := d.reportRepo.Summary(ctx, d.lowStockThreshold)
	if err != nil {
		return nil, fmt.Errorf("summarising stock: %w", err)
	}

	digest := &Digest{
		GeneratedAt:  d.audit.Now(),
		ActiveAlerts: summary.ActiveAlerts,
		OutOfStock:   []DigestItem{},
		LowStock:     []DigestItem{},
	}
	for _, item := range items {
		line := DigestItem{Title: item.Title, Category: item.Category, Quantity: item.Quantity}
		if item.Quantity == 0 {
			digest.OutOfStock = append(digest.OutOfStock, line)
		} else {
			digest.LowStock = append(digest.LowStock, line)
		}
	}
	return digest, nil
}

// Message renders the digest as plain text.
func (d *Digest) Message() *notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock digest for %s\n\n", d.GeneratedAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Active alerts: %d\n", d.ActiveAlerts)
	writeDigestSection(&b, "Out of stock", d.OutOfStock)
	writeDigestSection(&b, "Low stock", d.LowStock)

	return &notify.Message{
		Topic:   notify.TopicDigest,
		Subject: fmt.Sprintf("[Inventory] Stock digest: %d out of stock, %d low", len(d.OutOfStock), len(d.LowStock)),
		Body:    b.String(),
		Data:    d,
	}
}

func writeDigestSection(b *strings.Builder, title string, items []DigestItem) {
	fmt.Fprintf(b, "\n%s (%d)\n", title, len(items))
	if len(items) == 0 {
		b.WriteString("  none\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "  - %s [%s]: %d\n", item.Title, item.Category, item.Quantity)
	}
}

// Run builds the digest and dispatches it. The digest is read-only, so the actor
// only needs the report privilege.
func (d *DigestService) Run(ctx context.Context, actor model.Actor) (*Digest, error) {
	if err := authorize(actor, model.PrivReportView); err != nil {
		return nil, err
	}

	start := time.Now()
	digest, err := d.Build(ctx)
	if err != nil {
		d.effects.Metrics.DigestRun("error", time.Since(start).Seconds())
		return nil, err
	}
	if d.effects.Notifier != nil {
		d.effects.Notifier.Dispatch(digest.Message())
	}
	d.effects.Metrics.DigestRun("ok", time.Since(start).Seconds())
	return digest, nil
}
