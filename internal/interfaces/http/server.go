// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/mesa-pedidos/internal/config"
	"github.com/your-org/mesa-pedidos/internal/interfaces/http/middleware"
	"github.com/your-org/mesa-pedidos/internal/interfaces/http/routes"
	"github.com/your-org/mesa-pedidos/internal/pkg/auth"
)

// HealthChecker is a backing service the health check pings
type HealthChecker interface {
	Health() error
}

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	log         *logrus.Logger
	gin         *gin.Engine
	httpServer  *http.Server
	redisClient *redis.Client
	sessions    *auth.SessionManager
	deps        routes.Dependencies
	checks      map[string]HealthChecker
	startedAt   time.Time
}

// NewServer creates a new HTTP server instance. checks are pinged by
// /health, keyed by the name reported on failure.
func NewServer(cfg *config.Config, log *logrus.Logger, redisClient *redis.Client, deps routes.Dependencies, checks map[string]HealthChecker) *Server {
	return &Server{
		config:      cfg,
		log:         log,
		redisClient: redisClient,
		sessions:    auth.NewSessionManager(cfg),
		deps:        deps,
		checks:      checks,
		startedAt:   time.Now(),
	}
}

// Handler builds the gin engine with every middleware and route
func (s *Server) Handler() http.Handler {
	if s.gin == nil {
		if s.config.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}
		s.gin = gin.New()
		if err := s.gin.SetTrustedProxies(s.config.Security.TrustedProxies); err != nil {
			s.log.WithError(err).Warn("Ignoring invalid trusted proxies")
		}
		s.setupMiddleware()
		s.setupRoutes()
	}
	return s.gin
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.log.WithFields(logrus.Fields{
		"port":     s.config.Server.Port,
		"api_base": "/api/v1",
		"health":   "/health",
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.log))
	s.gin.Use(middleware.CORS(s.config.Security))
	s.gin.Use(middleware.SecurityHeaders(s.config.App.Name))
	if s.redisClient != nil {
		s.gin.Use(middleware.RateLimit(s.redisClient, s.config.Redis.KeyPrefix, s.config.Security.RateLimitPerMinute, s.log))
	}
	s.gin.Use(middleware.RequestSizeLimit(1 << 20))
	s.gin.Use(middleware.Timeout(15 * time.Second))
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	session := middleware.Session(s.sessions, s.config.Session, s.log)

	links := s.gin.Group("")
	links.Use(session)
	routes.SetupTableLinkRoutes(links, s.deps)

	apiV1 := s.gin.Group("/api/v1")
	apiV1.Use(session)
	routes.SetupRoutes(apiV1, s.deps)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     s.config.App.Name,
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"table":   "/api/v1/table",
					"catalog": "/api/v1/catalog",
					"popular": "/api/v1/popular",
					"cart":    "/api/v1/cart",
					"orders":  "/api/v1/orders",
				},
			})
		})
	}
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	for name, check := range s.checks {
		if err := check.Health(); err != nil {
			s.log.WithError(err).WithField("service", name).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  name + " ping failed",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
