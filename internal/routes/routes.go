package routes

import (
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/notewall/moderation-backend/internal/config"
	"github.com/notewall/moderation-backend/internal/handlers"
	"github.com/notewall/moderation-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	moderationHandler *handlers.ModerationHandler,
	securityHandler *handlers.SecurityHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	filterHandler *handlers.FilterHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health and metrics (no auth)
	api.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// User endpoints (JWT required)
	api.Post("/reports", middleware.JWTProtected(cfg), reportHandler.CreateReport)
	api.Post("/moderation/scan", middleware.JWTProtected(cfg), moderationHandler.ScanContent)

	// Admin moderation panel (JWT or admin token, plus admin role)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/reports", reportHandler.ListReports)
	admin.Put("/reports/:id", reportHandler.ProcessReport)
	admin.Post("/reports/:id/auto", reportHandler.AutoProcessReport)

	admin.Get("/security/suspicious", securityHandler.SuspiciousActivity)
	admin.Get("/analytics/reports", analyticsHandler.ReportAnalytics)
	admin.Get("/analytics/overview", analyticsHandler.Overview)

	admin.Get("/filters", filterHandler.ListFilters)
	admin.Post("/filters", filterHandler.CreateFilter)
	admin.Delete("/filters/:id", filterHandler.DeactivateFilter)
}
