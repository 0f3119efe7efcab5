package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-inventory-ledger/internal/app"
	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/cron"
	"go-inventory-ledger/internal/handler"
	"go-inventory-ledger/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	// 2. Database, seed and services
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("starting application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("actors ready",
		slog.String("system", a.Actors.System.Email),
		slog.String("admin", a.Actors.Admin.Email),
	)

	// 3. WebSocket hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	go a.Hub.Run(hubCtx)

	// 4. Scheduled digest
	scheduler := cron.NewScheduler(log)
	if err := scheduler.Add(cron.Job{
		Name:     "stock-digest",
		Schedule: cfg.DigestSchedule,
		Run:      a.RunDigest,
	}); err != nil {
		log.Error("scheduling digest", slog.String("error", err.Error()))
		os.Exit(1)
	}
	scheduler.Start()

	// 5. Fiber
	server := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})
	server.Use(logger.New())
	server.Use(recover.New())
	server.Use(cors.New())

	server.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	server.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})))

	handler.RegisterRoutes(server, a.Handlers(), middleware.RequireAuth(a.Tokens, a.Users))

	// WebSocket Route
	server.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	server.Get("/ws", websocket.New(func(c *websocket.Conn) {
		a.Hub.Register <- c
		defer func() { a.Hub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 6. Graceful shutdown
	go func() {
		if err := server.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", slog.String("error", err.Error()))
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)
	a.Close()
	stopHub()

	log.Info("server exited")
}
