package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/invoicely/internal/application/service"
	"github.com/sangkips/invoicely/internal/clock"
	"github.com/sangkips/invoicely/internal/config"
	domainRepo "github.com/sangkips/invoicely/internal/domain/repository"
	"github.com/sangkips/invoicely/internal/infrastructure/database"
	"github.com/sangkips/invoicely/internal/infrastructure/repository"
	"github.com/sangkips/invoicely/internal/logger"
	"github.com/sangkips/invoicely/internal/presentation/http/handler"
	"github.com/sangkips/invoicely/internal/presentation/http/middleware"
	"github.com/sangkips/invoicely/internal/presentation/http/routes"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Hour
)

// backend is the storage wiring selected by STORAGE_DRIVER
type backend struct {
	kv          domainRepo.KeyValueStore
	idempotency domainRepo.IdempotencyRepository
	close       func() error
}

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := be.close(); err != nil {
			zl.Warn("storage close failed", zap.Error(err))
		}
	}()

	clk := clock.New()
	store := service.NewStore(be.kv, clk, zl)
	if err := store.Load(ctx); err != nil {
		zl.Fatal("failed to load ledger", zap.Error(err))
	}

	handlers := &routes.Handlers{
		Settings:  handler.NewSettingsHandler(store),
		Customer:  handler.NewCustomerHandler(store),
		Product:   handler.NewProductHandler(store),
		Invoice:   handler.NewInvoiceHandler(store, clk, cfg.Invoice.Currency),
		Dashboard: handler.NewDashboardHandler(store),
	}

	rateLimiter := routes.NewRateLimiter(&cfg.RateLimit)
	if rateLimiter != nil {
		defer rateLimiter.Stop()
	}

	deps := &routes.Deps{
		Cfg:             cfg,
		Log:             zl,
		Clock:           clk,
		IdempotencyRepo: be.idempotency,
		RateLimiter:     rateLimiter,
	}
	router := routes.Setup(handlers, deps)

	go middleware.SweepIdempotencyKeys(ctx, deps.IdempotencyConfig(), sweepInterval)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("env", cfg.App.Env),
			zap.String("port", port),
			zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openBackend(ctx context.Context, cfg *config.Config, zl *zap.Logger) (*backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return &backend{
			kv:          repository.NewMemoryKVStore(),
			idempotency: repository.NewMemoryIdempotencyRepository(),
			close:       func() error { return nil },
		}, nil

	case config.DriverSQLite, config.DriverPostgres:
		db, err := database.Open(cfg, zl)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &backend{
			kv:          repository.NewGormKVStore(db),
			idempotency: repository.NewIdempotencyRepository(db),
			close:       sqlDB.Close,
		}, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return &backend{
			kv:          repository.NewRedisKVStore(client, cfg.Redis.KeyPrefix),
			idempotency: repository.NewMemoryIdempotencyRepository(),
			close:       client.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
