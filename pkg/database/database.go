package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config selects and locates the ledger store.
type Config struct {
	Driver     string `env:"DRIVER" envDefault:"postgres"`
	URL        string `env:"URL"`
	Host       string `env:"HOST" envDefault:"localhost"`
	User       string `env:"USER"`
	Password   string `env:"PASSWORD"`
	Name       string `env:"NAME"`
	Port       string `env:"PORT" envDefault:"5432"`
	TimeZone   string `env:"TIMEZONE" envDefault:"UTC"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/inventory.db"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"warn"`
}

// Connect opens the configured database with pooling set up.
func Connect(cfg Config, log *slog.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:  newGormLogger(log, cfg.LogLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	switch cfg.Driver {
	case DriverSQLite:
		return openSQLite(cfg, gormConfig)
	case DriverPostgres, "":
		return openPostgres(cfg, gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func openPostgres(cfg Config, gormConfig *gorm.Config) (*gorm.DB, error) {
	dsn := cfg.URL
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.TimeZone,
		)
	}

	// Disables implicit prepared statements for pgbouncer/Supabase transaction mode
	gormConfig.PrepareStmt = false
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func openSQLite(cfg Config, gormConfig *gorm.Config) (*gorm.DB, error) {
	path := cfg.SQLitePath
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	inMemory := strings.HasPrefix(path, ":memory:")
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		path += "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// SQLite has a single writer; one connection also keeps an in-memory database alive.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// OpenMemory opens a private in-memory SQLite database.
func OpenMemory(log *slog.Logger) (*gorm.DB, error) {
	return Connect(Config{Driver: DriverSQLite, SQLitePath: ":memory:", LogLevel: "silent"}, log)
}

func newGormLogger(log *slog.Logger, level string) logger.Interface {
	logLevel := logger.Warn
	switch strings.ToLower(level) {
	case "silent":
		logLevel = logger.Silent
	case "error":
		logLevel = logger.Error
	case "info":
		logLevel = logger.Info
	}

	return logger.New(
		slogAdapter{log},
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// slogAdapter wraps *slog.Logger for GORM's logger.Writer interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (s slogAdapter) Printf(format string, args ...any) {
	s.logger.Info(fmt.Sprintf(format, args...), slog.String("component", "gorm"))
}
