// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/auth"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/infrastructure/catalog"
	"github.com/your-org/storefront/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront/internal/infrastructure/database/redis"
	"github.com/your-org/storefront/internal/interfaces/http"
	"github.com/your-org/storefront/internal/pkg/logger"
	"github.com/your-org/storefront/internal/pkg/metrics"
	"github.com/your-org/storefront/internal/pkg/pdf"
)

// storage is a cart key-value backend that can report its health
type storage interface {
	cart.KeyValueStore
	http.HealthChecker
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	appLogger.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"storage":     cfg.Storage.Driver,
	}).Infof("Starting %s", cfg.App.Name)

	// Redis backs the rate limiter and catalog cache whenever it is reachable,
	// and the cart itself when selected as storage
	var redisClient *redis.Client
	if client, err := redis.NewConnection(cfg, appLogger); err != nil {
		if cfg.Storage.Driver == "redis" {
			appLogger.WithError(err).Fatal("Failed to connect to Redis")
		}
		appLogger.WithError(err).Warn("Redis unavailable, rate limiting and catalog cache disabled")
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	var store storage
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := postgres.NewConnection(cfg, appLogger)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		migration := postgres.NewMigration(db.GetDB(), appLogger)
		if err := migration.RunAutoMigrations(); err != nil {
			appLogger.WithError(err).Fatal("Database migration failed")
		}
		if err := migration.CreateIndexes(); err != nil {
			appLogger.WithError(err).Warn("Index creation failed")
		}

		store = postgresStorage{KVStore: postgres.NewKVStore(db.GetDB()), Database: db}
	default:
		store = redisClient
	}

	m := metrics.New()

	cartStore := cart.NewStore(store, cfg, appLogger).WithRecorder(m)
	hydrateCtx, cancelHydrate := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := cartStore.Hydrate(hydrateCtx); err != nil {
		appLogger.WithError(err).Warn("Cart hydrated empty after storage failure")
	}
	cancelHydrate()

	catalogClient := catalog.NewClient(cfg, appLogger).WithRecorder(m)
	var rdb *goredis.Client
	if redisClient != nil {
		rdb = redisClient.GetClient()
		catalogClient.WithCache(catalog.NewRedisCache(rdb, cfg.Catalog.CacheTTL))
	}

	authService, err := auth.NewService(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialise authentication")
	}

	server := http.NewServer(cfg, http.Dependencies{
		Store:    cartStore,
		Products: product.NewService(catalogClient),
		Auth:     authService,
		Receipts: pdf.NewService(cfg),
		Metrics:  m,
		Storage:  store,
		Redis:    rdb,
		Logger:   appLogger,
	})

	go func() {
		if err := server.Start(); err != nil {
			appLogger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLogger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	appLogger.Info("Server shutdown completed")
}

// postgresStorage pairs the gorm key-value table with its connection health
type postgresStorage struct {
	*postgres.KVStore
	*postgres.Database
}
