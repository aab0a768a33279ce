package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/notewall/moderation-backend/internal/dto"
	"github.com/notewall/moderation-backend/internal/moderation"
)

type ModerationHandler struct {
	engine *moderation.Engine
}

func NewModerationHandler(engine *moderation.Engine) *ModerationHandler {
	return &ModerationHandler{engine: engine}
}

// ScanContent runs the auto-moderation scan over a piece of content. The
// scan verdict is returned even when recording a block's side effects
// failed; that failure is logged and flagged, not folded into the verdict.
func (h *ModerationHandler) ScanContent(c *fiber.Ctx) error {
	var req dto.ScanContentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "text is required",
		})
	}

	result, err := h.engine.ScanContent(c.Context(), req.ContentType, req.ContentID, req.Text)
	if err != nil {
		slog.Error("auto-moderation side effects failed", "content_id", req.ContentID, "error", err)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"result":        result,
			"write_failed":  true,
			"write_message": "scan completed but the block could not be recorded",
		})
	}
	return c.JSON(result)
}
