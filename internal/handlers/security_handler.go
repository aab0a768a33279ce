package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/notewall/moderation-backend/internal/cache"
	"github.com/notewall/moderation-backend/internal/dto"
	"github.com/notewall/moderation-backend/internal/security"
)

type SecurityHandler struct {
	detector  *security.Detector
	snapshots *cache.SnapshotCache
}

func NewSecurityHandler(detector *security.Detector, snapshots *cache.SnapshotCache) *SecurityHandler {
	return &SecurityHandler{detector: detector, snapshots: snapshots}
}

// SuspiciousActivity serves the worker's latest snapshot when one exists,
// falling back to a live scan. `live=true` forces the scan.
func (h *SecurityHandler) SuspiciousActivity(c *fiber.Ctx) error {
	windowHours, _ := strconv.Atoi(c.Query("window_hours", "24"))
	if windowHours <= 0 || windowHours > 24*30 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "window_hours must be between 1 and 720",
		})
	}

	if c.Query("live") != "true" {
		var snapshot security.ScanResult
		if err := h.snapshots.Get(c.Context(), cache.KeySuspiciousActivity, &snapshot); err == nil {
			return c.JSON(fiber.Map{"source": "snapshot", "result": snapshot})
		} else if !errors.Is(err, cache.ErrMiss) {
			// Redis being down should not take the endpoint down.
			return h.live(c, windowHours)
		}
	}
	return h.live(c, windowHours)
}

func (h *SecurityHandler) live(c *fiber.Ctx, windowHours int) error {
	result, err := h.detector.Detect(c.Context(), time.Duration(windowHours)*time.Hour)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to scan security log",
		})
	}
	return c.JSON(fiber.Map{"source": "live", "result": result})
}
