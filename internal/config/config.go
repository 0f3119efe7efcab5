// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go-inventory-ledger/internal/notify"
	"go-inventory-ledger/pkg/database"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName string `env:"APP_NAME" envDefault:"Inventory Ledger v1.0"`
	Port    string `env:"PORT" envDefault:"3000"`

	Database database.Config `envPrefix:"DB_"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	SystemActorEmail string `env:"SYSTEM_ACTOR_EMAIL" envDefault:"system@stockledger.local"`
	AdminEmail       string `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`

	SMTP SMTPConfig

	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisPassword     string        `env:"REDIS_PASS"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	DashboardCacheTTL time.Duration `env:"DASHBOARD_CACHE_TTL" envDefault:"30s"`

	LowStockThreshold int    `env:"LOW_STOCK_THRESHOLD" envDefault:"10"`
	DashboardTopItems int    `env:"DASHBOARD_TOP_ITEMS" envDefault:"3"`
	DigestSchedule    string `env:"DIGEST_SCHEDULE" envDefault:"0 8 * * *"`

	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

type SMTPConfig struct {
	Server   string   `env:"SMTP_SERVER"`
	Port     int      `env:"SMTP_PORT" envDefault:"587"`
	Username string   `env:"SMTP_USERNAME"`
	Password string   `env:"SMTP_PASSWORD"`
	Sender   string   `env:"SENDER_EMAIL"`
	Receiver []string `env:"ALERT_RECEIVER_EMAIL" envSeparator:","`
}

// Notify converts the settings for the email sender.
func (c SMTPConfig) Notify() notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     c.Server,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		From:     c.Sender,
		To:       c.Receiver,
	}
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return Parse()
}

// Parse reads the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.LowStockThreshold <= 0 {
		return nil, fmt.Errorf("LOW_STOCK_THRESHOLD must be positive, got %d", cfg.LowStockThreshold)
	}
	if cfg.DashboardTopItems <= 0 {
		return nil, fmt.Errorf("DASHBOARD_TOP_ITEMS must be positive, got %d", cfg.DashboardTopItems)
	}
	if cfg.SystemActorEmail == "" {
		return nil, fmt.Errorf("SYSTEM_ACTOR_EMAIL is required")
	}
	return &cfg, nil
}

// NewLogger builds the process logger. format is "json" or "text".
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
