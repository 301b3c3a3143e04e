// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casemandu/storefront/internal/config"
	"github.com/casemandu/storefront/internal/domain/cart"
	"github.com/casemandu/storefront/internal/domain/catalog"
	"github.com/casemandu/storefront/internal/domain/checkout"
	"github.com/casemandu/storefront/internal/domain/listing"
	"github.com/casemandu/storefront/internal/domain/order"
	"github.com/casemandu/storefront/internal/infrastructure/backend"
	"github.com/casemandu/storefront/internal/infrastructure/database/redis"
	"github.com/casemandu/storefront/internal/interfaces/http"
	"github.com/casemandu/storefront/internal/pkg/logger"
	"github.com/casemandu/storefront/internal/pkg/pdf"
	"github.com/casemandu/storefront/internal/pkg/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	appLogger.WithField("environment", cfg.App.Environment).
		Infof("Starting %s v%s", cfg.App.Name, cfg.App.Version)

	deps := http.Dependencies{
		Sessions: session.NewManager(cfg),
	}

	// Shared stores. Interfaces stay nil when Redis is off so consumers
	// skip caching instead of calling through a nil client.
	var (
		cache     catalog.Cache
		snapshots listing.SnapshotStore
	)
	var cartRepo cart.Repository = cart.NewMemoryRepository()
	var drafts checkout.DraftRepository = checkout.NewMemoryDraftRepository()

	if cfg.Redis.Enabled {
		redisClient, err := redis.NewConnection(cfg, logger.Component(appLogger, "redis"))
		if err != nil {
			appLogger.WithError(err).Warn("Redis unavailable, carts are kept in memory")
		} else {
			defer redisClient.Close()

			cache = redisClient
			snapshots = redisClient
			cartRepo = cart.NewRedisRepository(redisClient, cfg.Cart.Namespace, cfg.Cart.TTL)
			drafts = checkout.NewRedisDraftRepository(redisClient, cfg.Cart.Namespace, cfg.Cart.TTL)

			deps.Limiter = redisClient
			deps.Redis = redisClient
		}
	}

	backendClient := backend.NewClient(cfg, logger.Component(appLogger, "backend"))

	catalogService := catalog.NewService(backendClient, cache, cfg, logger.Component(appLogger, "catalog"))
	cartService := cart.NewService(cartRepo, logger.Component(appLogger, "cart"))

	deps.Catalog = catalogService
	deps.Cart = cartService
	deps.Listing = listing.NewService(catalogService, snapshots, cfg, logger.Component(appLogger, "listing"))
	deps.Checkout = checkout.NewService(cartService, catalogService, backendClient, drafts, cfg, logger.Component(appLogger, "checkout"))
	deps.Orders = order.NewService(backendClient, pdf.NewService(cfg), logger.Component(appLogger, "order"))

	// Create and start HTTP server
	server := http.NewServer(cfg, appLogger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			appLogger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down gracefully...")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLogger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	appLogger.Info("Server shutdown completed")
}
