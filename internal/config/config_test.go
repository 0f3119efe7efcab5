package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"go-inventory-ledger/pkg/database"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.Database.Driver != database.DriverPostgres {
		t.Errorf("Database.Driver = %q, want postgres", cfg.Database.Driver)
	}
	if cfg.LowStockThreshold != 10 || cfg.DashboardTopItems != 3 {
		t.Errorf("thresholds = (%d, %d), want (10, 3)", cfg.LowStockThreshold, cfg.DashboardTopItems)
	}
	if cfg.JWTTTL != 24*time.Hour {
		t.Errorf("JWTTTL = %v, want 24h", cfg.JWTTTL)
	}
	if cfg.SMTP.Notify().Complete() {
		t.Error("SMTP should be incomplete without env")
	}
}

func TestParse_FromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/ledger.db")
	t.Setenv("LOW_STOCK_THRESHOLD", "5")
	t.Setenv("SMTP_SERVER", "smtp.example.com")
	t.Setenv("SMTP_USERNAME", "bot")
	t.Setenv("SMTP_PASSWORD", "secret")
	t.Setenv("ALERT_RECEIVER_EMAIL", "ops@example.com,lead@example.com")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Database.Driver != database.DriverSQLite || cfg.Database.SQLitePath != "/tmp/ledger.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.LowStockThreshold != 5 {
		t.Errorf("LowStockThreshold = %d, want 5", cfg.LowStockThreshold)
	}
	smtp := cfg.SMTP.Notify()
	if !smtp.Complete() || len(smtp.To) != 2 {
		t.Errorf("smtp = %+v", smtp)
	}
}

func TestParse_RejectsBadThreshold(t *testing.T) {
	t.Setenv("LOW_STOCK_THRESHOLD", "0")
	if _, err := Parse(); err == nil {
		t.Fatal("expected error for zero threshold")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "warn", "text")
	log.Info("hidden")
	log.Warn("shown", slog.String("k", "v"))

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("unexpected log output: %q", out)
	}
}
