package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/notify"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var testStart = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// stepClock advances one second per reading so audit order is deterministic.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []*notify.Message
}

func (n *recordingNotifier) Dispatch(msgs ...*notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msgs...)
}

func (n *recordingNotifier) topics() []notify.Topic {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Topic, 0, len(n.msgs))
	for _, m := range n.msgs {
		out = append(out, m.Topic)
	}
	return out
}

func (n *recordingNotifier) count(topic notify.Topic) int {
	c := 0
	for _, t := range n.topics() {
		if t == topic {
			c++
		}
	}
	return c
}

type memoryCache struct {
	mu          sync.Mutex
	stored      *Dashboard
	invalidated int
	hits        int
}

func (c *memoryCache) Get(_ context.Context, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stored == nil {
		return false, nil
	}
	*(dst.(*Dashboard)) = *c.stored
	c.hits++
	return true, nil
}

func (c *memoryCache) Set(_ context.Context, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := *(v.(*Dashboard))
	c.stored = &d
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored = nil
	c.invalidated++
	return nil
}

// failingAuditRepo rejects every append, to prove a failed audit write rolls the mutation back.
type failingAuditRepo struct {
	repository.AuditRepository
}

func (r failingAuditRepo) WithTx(*gorm.DB) repository.AuditRepository { return r }

func (failingAuditRepo) Append(context.Context, *model.AuditLog) error {
	return errors.New("disk full")
}

type testEnv struct {
	db        *gorm.DB
	clock     *stepClock
	notifier  *recordingNotifier
	cache     *memoryCache
	audit     *AuditRecorder
	alerts    AlertService
	inventory InventoryService
	dashboard DashboardService
	reports   ReportService
	users     UserService
	digest    *DigestService

	itemRepo  repository.ItemRepository
	alertRepo repository.AlertRepository
	auditRepo repository.AuditRepository
	userRepo  repository.UserRepository

	system  uuid.UUID
	admin   model.Actor
	manager model.Actor
	viewer  model.Actor
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenMemory(discardLogger())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	ctx := context.Background()
	e := &testEnv{
		db:        db,
		clock:     &stepClock{t: testStart},
		notifier:  &recordingNotifier{},
		cache:     &memoryCache{},
		itemRepo:  repository.NewItemRepo(db),
		alertRepo: repository.NewAlertRepo(db),
		auditRepo: repository.NewAuditRepo(db),
		userRepo:  repository.NewUserRepo(db),
	}

	actors, err := EnsureActors(ctx, e.userRepo, "system@test.local", "admin@test.local")
	if err != nil {
		t.Fatalf("seed actors: %v", err)
	}
	e.system = actors.System.ID
	e.admin = actors.Admin.Actor()
	e.manager = e.mustUser(t, "manager@test.local", model.RoleManager)
	e.viewer = e.mustUser(t, "viewer@test.local", model.RoleViewer)

	effects := Effects{Notifier: e.notifier, Cache: e.cache, Logger: discardLogger()}
	reportRepo := repository.NewReportRepo(db)

	e.audit = NewAuditRecorder(e.auditRepo, e.clock.Now)
	e.alerts = NewAlertService(db, e.alertRepo, e.itemRepo, e.audit, e.system, effects)
	e.inventory = NewInventoryService(db, e.itemRepo, e.alerts, e.audit, effects)
	e.dashboard = NewDashboardService(e.itemRepo, e.auditRepo, reportRepo, e.audit, DashboardConfig{TopItems: 3, LowStockThreshold: 10}, effects)
	e.reports = NewReportService(reportRepo, e.auditRepo, e.audit, 10)
	e.users = NewUserService(db, e.userRepo, e.audit, e.system)
	e.digest = NewDigestService(reportRepo, e.audit, 10, effects)
	return e
}

func (e *testEnv) mustUser(t *testing.T, email string, role model.Role) model.Actor {
	t.Helper()
	u, _, err := e.userRepo.EnsureUser(context.Background(), email, "", role)
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u.Actor()
}

func (e *testEnv) mustItem(t *testing.T, title string, quantity int) *model.Item {
	t.Helper()
	item, err := e.inventory.CreateItem(context.Background(), e.admin, model.ItemInput{
		Title:    title,
		Quantity: quantity,
		Price:    250,
		Category: "Hardware",
	})
	if err != nil {
		t.Fatalf("create item %s: %v", title, err)
	}
	return item
}

func (e *testEnv) count(t *testing.T, m any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := e.db.Model(m)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func (e *testEnv) activeAlerts(t *testing.T, itemID uuid.UUID, alertType model.AlertType) int64 {
	t.Helper()
	return e.count(t, &model.Alert{}, "item_id = ? AND alert_type = ? AND status = ?", itemID, alertType, model.AlertActive)
}

func (e *testEnv) auditEntries(t *testing.T, entityType model.EntityType, entityID uuid.UUID) []model.AuditLog {
	t.Helper()
	var entries []model.AuditLog
	err := e.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("timestamp ASC, id ASC").Find(&entries).Error
	if err != nil {
		t.Fatalf("load audit entries: %v", err)
	}
	return entries
}
