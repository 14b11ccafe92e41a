package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/sangkips/invoicely/internal/config"
	"github.com/sangkips/invoicely/internal/domain/entity"
	applogger "github.com/sangkips/invoicely/internal/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the database selected by the storage driver
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := gormLoggerConfig(cfg.App.Debug)
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return NewSQLiteDB(cfg.Storage.SQLitePath, log, gormCfg)
	case config.DriverPostgres:
		return NewPostgresDB(&cfg.Database, log, gormCfg)
	default:
		return nil, fmt.Errorf("storage driver %q has no database", cfg.Storage.Driver)
	}
}

// NewSQLiteDB opens (creating if needed) an on-device SQLite database
func NewSQLiteDB(path string, log *zap.Logger, lc applogger.GormLoggerConfig) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: applogger.NewGormLogger(log, lc),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite allows a single writer.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Info("connected to sqlite database", zap.String("path", path))
	return db, nil
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, log *zap.Logger, lc applogger.GormLoggerConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: applogger.NewGormLogger(log, lc),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to postgres database", zap.String("host", cfg.Host), zap.String("name", cfg.Name))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.KVEntry{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func gormLoggerConfig(debug bool) applogger.GormLoggerConfig {
	lc := applogger.DefaultGormLoggerConfig()
	if debug {
		lc.Level = gormlogger.Info
	}
	return lc
}
