// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/casemandu/storefront/internal/config"
	"github.com/casemandu/storefront/internal/domain/cart"
	"github.com/casemandu/storefront/internal/domain/catalog"
	"github.com/casemandu/storefront/internal/domain/checkout"
	"github.com/casemandu/storefront/internal/domain/listing"
	"github.com/casemandu/storefront/internal/domain/order"
	"github.com/casemandu/storefront/internal/interfaces/http/handlers"
	"github.com/casemandu/storefront/internal/interfaces/http/middleware"
	"github.com/casemandu/storefront/internal/interfaces/http/routes"
	"github.com/casemandu/storefront/internal/pkg/logger"
	"github.com/casemandu/storefront/internal/pkg/session"
)

// maxRequestSize leaves room for two image uploads plus form fields
const maxRequestSize = 12 << 20

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Dependencies are the services the server exposes
type Dependencies struct {
	Cart     *cart.Service
	Catalog  *catalog.Service
	Listing  *listing.Service
	Checkout *checkout.Service
	Orders   *order.Service
	Sessions *session.Manager
	Limiter  middleware.Limiter // nil disables rate limiting
	Redis    HealthChecker      // nil when Redis is disabled
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	logger     *logrus.Logger
	deps       Dependencies
	gin        *gin.Engine
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer creates a new HTTP server instance with its routes mounted
func NewServer(cfg *config.Config, logger *logrus.Logger, deps Dependencies) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		logger:    logger,
		deps:      deps,
		gin:       gin.New(),
		startedAt: time.Now(),
	}

	if len(cfg.Security.TrustedProxies) > 0 {
		if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
			logger.WithError(err).Warn("Ignoring invalid trusted proxies")
		}
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// Handler exposes the router, for tests
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithFields(logrus.Fields{
		"port":    s.config.Server.Port,
		"backend": s.config.Backend.BaseURL,
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	entry := logger.Component(s.logger, "http")

	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders(s.config.App.Name))
	s.gin.Use(middleware.RateLimit(s.deps.Limiter, s.config.Cart.Namespace, s.config.Security.RateLimitPerMinute, entry))
	s.gin.Use(middleware.RequestSizeLimit(maxRequestSize))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	routes.SetupSEORoutes(s.gin, handlers.NewSEOHandler(s.deps.Catalog, s.config.App.PublicURL))

	api := s.gin.Group("/api")
	api.Use(middleware.Session(s.deps.Sessions, s.config, logger.Component(s.logger, "session")))

	routes.SetupRoutes(api, &routes.Handlers{
		Catalog:  handlers.NewCatalogHandler(s.deps.Catalog),
		Listing:  handlers.NewListingHandler(s.deps.Listing),
		Cart:     handlers.NewCartHandler(s.deps.Cart),
		Checkout: handlers.NewCheckoutHandler(s.deps.Checkout),
		Order:    handlers.NewOrderHandler(s.deps.Orders),
	})
}

// healthCheck handles liveness requests
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck reports whether the server's dependencies are reachable
func (s *Server) readinessCheck(c *gin.Context) {
	if s.deps.Redis != nil {
		if err := s.deps.Redis.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  "redis ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
		"redis":     s.deps.Redis != nil,
	})
}
