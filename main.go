package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/askar0007amirkhanov/ai-precheck/config"
	"github.com/askar0007amirkhanov/ai-precheck/handler"
	"github.com/askar0007amirkhanov/ai-precheck/middleware"
	"github.com/askar0007amirkhanov/ai-precheck/pkg/logger"
	"github.com/askar0007amirkhanov/ai-precheck/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Initialize services
	store, err := newReportStore(cfg)
	if err != nil {
		slog.Error("failed to initialize report store", "error", err)
		os.Exit(1)
	}

	extractor, err := service.NewExtractor(&cfg.LLM)
	if err != nil {
		slog.Error("failed to initialize extractor", "error", err)
		os.Exit(1)
	}

	var archive *service.ArchiveService
	if cfg.Archive.Endpoint != "" {
		archive, err = service.NewArchiveService(&cfg.Archive)
		if err != nil {
			slog.Error("failed to initialize archive service", "error", err)
			os.Exit(1)
		}
		if err := archive.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure archive bucket", "error", err)
			os.Exit(1)
		}
	}

	crawler := service.NewCrawler(&cfg.Crawler)
	checklists := service.NewChecklistStore()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	complianceHandler := handler.NewComplianceHandler(cfg.Limits, crawler, extractor, store, checklists, archive)
	checklistHandler := handler.NewChecklistHandler(extractor, checklists)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())     // Request ID for tracing
	router.Use(middleware.Recovery())      // Panic recovery
	router.Use(middleware.RequestLogger()) // Access logging
	router.Use(corsMiddleware())           // CORS

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	// Throttle per authenticated client, after auth resolves the identity
	protected.Use(middleware.RateLimit(cfg.Limits.RequestsPerMinute, time.Minute))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/compliance/check", complianceHandler.Check)
		protected.GET("/compliance/reports", complianceHandler.ListReports)
		protected.GET("/compliance/reports/:id", complianceHandler.GetReport)
		protected.GET("/compliance/reports/:id/download", complianceHandler.DownloadReport)
		protected.DELETE("/compliance/reports/:id", complianceHandler.DeleteReport)

		protected.POST("/compliance/checklists", checklistHandler.Upload)
		protected.GET("/compliance/checklists", checklistHandler.List)
		protected.GET("/compliance/checklists/:id", checklistHandler.Get)
		protected.DELETE("/compliance/checklists/:id", checklistHandler.Delete)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

func newReportStore(cfg *config.Config) (service.ReportStore, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return service.NewPostgresReportStore(cfg.Store.DSN)
	case "memory", "":
		return service.NewMemoryReportStore(&cfg.Store), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
