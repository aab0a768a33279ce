package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/notewall/moderation-backend/internal/dto"
	"github.com/notewall/moderation-backend/internal/middleware"
	"github.com/notewall/moderation-backend/internal/moderation"
	"github.com/notewall/moderation-backend/internal/store"
	"github.com/notewall/moderation-backend/internal/triage"
)

type ReportHandler struct {
	intake    *moderation.Intake
	processor *triage.Processor
	reports   store.ReportStore
}

func NewReportHandler(intake *moderation.Intake, processor *triage.Processor, reports store.ReportStore) *ReportHandler {
	return &ReportHandler{intake: intake, processor: processor, reports: reports}
}

func (h *ReportHandler) CreateReport(c *fiber.Ctx) error {
	reporterID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, created, err := h.intake.Submit(c.Context(), reporterID, req.ContentType, req.ContentID, req.Reason, req.Description)
	if err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create report",
		})
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(report)
}

func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	status := c.Query("status", "")
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	if limit > 100 {
		limit = 100
	}

	reports, total, err := h.reports.QueryByStatus(c.Context(), status, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// ProcessReport is the manual triage path. Approval deletes the reported
// content before the report is marked processed.
func (h *ReportHandler) ProcessReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	var req dto.ProcessReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	adminID, _ := middleware.UserID(c)
	actor := triage.System()
	if adminID != "" {
		actor = triage.Admin(adminID)
	}

	err = h.processor.Process(c.Context(), reportID, req.Action, req.AdminNote, actor)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": "Report processed"})
	case errors.Is(err, triage.ErrInvalidAction):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Report not found",
		})
	case errors.Is(err, store.ErrPreconditionFailed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "Report was already processed",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process report",
		})
	}
}

// AutoProcessReport runs the auto-decision table against one report.
func (h *ReportHandler) AutoProcessReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	result, err := h.processor.AutoProcess(c.Context(), reportID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Report not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to auto-process report",
		})
	}
	return c.JSON(result)
}
