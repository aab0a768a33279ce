package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/notewall/moderation-backend/internal/analytics"
	"github.com/notewall/moderation-backend/internal/cache"
	"github.com/notewall/moderation-backend/internal/dto"
)

type AnalyticsHandler struct {
	aggregator *analytics.Aggregator
	snapshots  *cache.SnapshotCache
}

func NewAnalyticsHandler(aggregator *analytics.Aggregator, snapshots *cache.SnapshotCache) *AnalyticsHandler {
	return &AnalyticsHandler{aggregator: aggregator, snapshots: snapshots}
}

// ReportAnalytics serves the report histograms, preferring the worker's
// snapshot when the requested window matches it.
func (h *AnalyticsHandler) ReportAnalytics(c *fiber.Ctx) error {
	windowDays, _ := strconv.Atoi(c.Query("window_days", "30"))
	if windowDays <= 0 || windowDays > 365 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "window_days must be between 1 and 365",
		})
	}

	if c.Query("live") != "true" {
		var snapshot analytics.ReportStats
		if err := h.snapshots.Get(c.Context(), cache.KeyReportAnalytics, &snapshot); err == nil && snapshot.WindowDays == windowDays {
			return c.JSON(fiber.Map{"source": "snapshot", "stats": snapshot})
		}
	}

	stats, err := h.aggregator.ReportAnalytics(c.Context(), windowDays)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute report analytics",
		})
	}
	return c.JSON(fiber.Map{"source": "live", "stats": stats})
}

// Overview serves the platform activity snapshot for a fixed range.
func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	rng := c.Query("range", "7d")

	if c.Query("live") != "true" {
		var snapshot analytics.OverviewStats
		if err := h.snapshots.Get(c.Context(), cache.OverviewKey(rng), &snapshot); err == nil {
			return c.JSON(fiber.Map{"source": "snapshot", "stats": snapshot})
		}
	}

	stats, err := h.aggregator.Overview(c.Context(), rng)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidRange) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute overview",
		})
	}
	return c.JSON(fiber.Map{"source": "live", "stats": stats})
}
