package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/notewall/moderation-backend/internal/analytics"
	"github.com/notewall/moderation-backend/internal/cache"
	"github.com/notewall/moderation-backend/internal/config"
	"github.com/notewall/moderation-backend/internal/database"
	"github.com/notewall/moderation-backend/internal/handlers"
	"github.com/notewall/moderation-backend/internal/logging"
	"github.com/notewall/moderation-backend/internal/middleware"
	"github.com/notewall/moderation-backend/internal/moderation"
	"github.com/notewall/moderation-backend/internal/routes"
	"github.com/notewall/moderation-backend/internal/security"
	"github.com/notewall/moderation-backend/internal/store"
	"github.com/notewall/moderation-backend/internal/triage"
	"github.com/notewall/moderation-backend/internal/worker"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if err := database.SeedKeywordFilters(); err != nil {
		slog.Error("keyword filter seed failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Stores
	reportStore := store.NewGormReportStore(database.DB)
	contentStore := store.NewGormContentStore(database.DB)
	securityLogStore := store.NewGormSecurityLogStore(database.DB)
	filterStore := store.NewGormKeywordFilterStore(database.DB)
	userStore := store.NewGormUserStore(database.DB)
	noteStore := store.NewGormNoteStore(database.DB)
	commentStore := store.NewGormCommentStore(database.DB)

	// Engines
	intake := moderation.NewIntake(reportStore, contentStore, userStore)
	engine := moderation.NewEngine(filterStore, reportStore, securityLogStore)
	processor := triage.NewProcessor(reportStore, contentStore, securityLogStore)
	detector := security.NewDetector(securityLogStore)
	aggregator := analytics.NewAggregator(reportStore, userStore, noteStore, commentStore)

	// Snapshot cache (optional)
	snapshots := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SnapshotTTL)
	if snapshots == nil {
		slog.Info("snapshot cache disabled, read endpoints always scan live")
	}

	// Periodic scan worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	if cfg.WorkerEnabled {
		w := worker.New(detector, aggregator, snapshots, worker.Config{
			Interval:       cfg.WorkerInterval,
			ScanWindow:     time.Duration(cfg.ScanWindowHours) * time.Hour,
			AnalyticsDays:  cfg.AnalyticsWindowDays,
			OverviewRanges: []string{"1d", "7d", "30d", "90d"},
		})
		go w.Run(workerCtx)
	}

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	reportHandler := handlers.NewReportHandler(intake, processor, reportStore)
	moderationHandler := handlers.NewModerationHandler(engine)
	securityHandler := handlers.NewSecurityHandler(detector, snapshots)
	analyticsHandler := handlers.NewAnalyticsHandler(aggregator, snapshots)
	filterHandler := handlers.NewFilterHandler(filterStore)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, database.DB, healthHandler, reportHandler, moderationHandler, securityHandler, analyticsHandler, filterHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	stopWorker()
	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := snapshots.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
