package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/notewall/moderation-backend/internal/dto"
	"github.com/notewall/moderation-backend/internal/models"
	"github.com/notewall/moderation-backend/internal/store"
)

type FilterHandler struct {
	filters store.KeywordFilterStore
}

func NewFilterHandler(filters store.KeywordFilterStore) *FilterHandler {
	return &FilterHandler{filters: filters}
}

func (h *FilterHandler) ListFilters(c *fiber.Ctx) error {
	filters, err := h.filters.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch keyword filters",
		})
	}
	return c.JSON(fiber.Map{"filters": filters, "total": len(filters)})
}

func (h *FilterHandler) CreateFilter(c *fiber.Ctx) error {
	var req dto.CreateFilterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	keyword := strings.ToLower(strings.TrimSpace(req.Keyword))
	if keyword == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "keyword is required",
		})
	}
	severity := req.Severity
	if severity == "" {
		severity = models.FilterSeverityMedium
	}
	if !models.ValidFilterSeverity(severity) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "severity must be low, medium, or high",
		})
	}

	filter := &models.KeywordFilter{Keyword: keyword, Severity: severity, IsActive: true}
	if err := h.filters.Create(c.Context(), filter); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create keyword filter",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(filter)
}

// DeactivateFilter soft-disables a filter; the keyword stays for audit.
func (h *FilterHandler) DeactivateFilter(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid filter ID",
		})
	}

	if err := h.filters.SetActive(c.Context(), id, false); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Filter not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to deactivate filter",
		})
	}
	return c.JSON(fiber.Map{"message": "Filter deactivated"})
}
