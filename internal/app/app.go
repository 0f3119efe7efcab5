// Package app wires the ledger's stores, services and delivery channels.
// cmd/api and cmd/invctl share it.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"go-inventory-ledger/internal/cache"
	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/handler"
	"go-inventory-ledger/internal/metrics"
	"go-inventory-ledger/internal/notify"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/database"
	"go-inventory-ledger/pkg/jwt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *gorm.DB
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics
	Dispatcher *notify.Dispatcher
	Hub        *ws.Hub
	Cache      *cache.DashboardCache
	Tokens     *jwt.Manager
	Actors     *service.Actors

	UserRepo repository.UserRepository

	Audit     *service.AuditRecorder
	Alerts    service.AlertService
	Inventory service.InventoryService
	Dashboard service.DashboardService
	Reports   service.ReportService
	Users     service.UserService
	Digest    *service.DigestService
}

// New connects to the store, migrates it, seeds the built-in actors and wires
// every service.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := database.Connect(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return NewWithDB(ctx, cfg, logger, db)
}

// NewWithDB wires the application around an already opened database.
func NewWithDB(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *gorm.DB) (*App, error) {
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	userRepo := repository.NewUserRepo(db)
	actors, err := service.EnsureActors(ctx, userRepo, cfg.SystemActorEmail, cfg.AdminEmail)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	dispatcher := notify.NewDispatcher(logger, m, cfg.NotifyTimeout)
	hub := ws.NewHub(logger)
	dispatcher.Register(hub, notify.TopicStockUpdate, notify.TopicAlert, notify.TopicAlertResolved)

	smtpCfg := cfg.SMTP.Notify()
	if smtpCfg.Complete() {
		dispatcher.Register(notify.NewEmailSender(smtpCfg), notify.TopicAlert, notify.TopicDigest)
		logger.Info("email notifications enabled", slog.Int("recipients", len(smtpCfg.To)))
	} else {
		logger.Warn("SMTP configuration is incomplete, email notifications disabled")
	}

	dashCache := cache.NewDashboardCache(cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.DashboardCacheTTL)
	effects := service.Effects{Notifier: dispatcher, Metrics: m, Logger: logger}
	if dashCache.Enabled() {
		effects.Cache = dashCache
		logger.Info("dashboard cache enabled", slog.String("addr", cfg.RedisAddr))
	}

	itemRepo := repository.NewItemRepo(db)
	alertRepo := repository.NewAlertRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	reportRepo := repository.NewReportRepo(db)

	audit := service.NewAuditRecorder(auditRepo, nil)
	alerts := service.NewAlertService(db, alertRepo, itemRepo, audit, actors.System.ID, effects)

	return &App{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Registry:   reg,
		Metrics:    m,
		Dispatcher: dispatcher,
		Hub:        hub,
		Cache:      dashCache,
		Tokens:     jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL),
		Actors:     actors,
		UserRepo:   userRepo,
		Audit:      audit,
		Alerts:     alerts,
		Inventory:  service.NewInventoryService(db, itemRepo, alerts, audit, effects),
		Dashboard: service.NewDashboardService(itemRepo, auditRepo, reportRepo, audit, service.DashboardConfig{
			TopItems:          cfg.DashboardTopItems,
			LowStockThreshold: cfg.LowStockThreshold,
		}, effects),
		Reports: service.NewReportService(reportRepo, auditRepo, audit, cfg.LowStockThreshold),
		Users:   service.NewUserService(db, userRepo, audit, actors.System.ID),
		Digest:  service.NewDigestService(reportRepo, audit, cfg.LowStockThreshold, effects),
	}, nil
}

func (a *App) Handlers() handler.Handlers {
	return handler.Handlers{
		Inventory: handler.NewInventoryHandler(a.Inventory, a.Dashboard),
		Alerts:    handler.NewAlertHandler(a.Alerts),
		Audit:     handler.NewAuditHandler(a.Audit),
		Dashboard: handler.NewDashboardHandler(a.Dashboard),
		Reports:   handler.NewReportHandler(a.Reports),
		Users:     handler.NewUserHandler(a.Users),
	}
}

// RunDigest sends the stock digest as the system actor.
func (a *App) RunDigest(ctx context.Context) error {
	_, err := a.Digest.Run(ctx, a.Actors.System.Actor())
	return err
}

// Close waits for pending notifications and releases connections.
func (a *App) Close() {
	a.Dispatcher.Wait()
	if err := a.Cache.Close(); err != nil {
		a.Logger.Warn("closing redis", slog.String("error", err.Error()))
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
