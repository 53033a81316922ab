package handlers

import (
	"encoding/json"
	"errors"

	"ruleflow/internal/dto"
	"ruleflow/internal/models"
	"ruleflow/internal/service"
	"ruleflow/internal/service/ruleops"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProcessHandler struct {
	pipeline  *service.PipelineService
	reconcile *service.ReconciliationService
	ledger    *service.LedgerService
	logger    *zap.Logger
}

func NewProcessHandler(
	pipeline *service.PipelineService,
	reconcile *service.ReconciliationService,
	ledger *service.LedgerService,
	logger *zap.Logger,
) *ProcessHandler {
	return &ProcessHandler{
		pipeline:  pipeline,
		reconcile: reconcile,
		ledger:    ledger,
		logger:    logger,
	}
}

// Process runs one notification through the full pipeline. A missing
// correlation id gets generated here; retries must send the original one
// back so ledger writes stay idempotent.
func (h *ProcessHandler) Process(c *fiber.Ctx) error {
	var req dto.ProcessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Subject == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Subject and content are required",
		})
	}

	correlationID, err := resolveCorrelationID(req.CorrelationID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid correlation_id",
		})
	}

	response, err := h.pipeline.ProcessNotification(c.Context(), req.Subject, req.Content, correlationID)
	if err != nil {
		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrProcessTypeNotIdentified):
			status = fiber.StatusUnprocessableEntity
		case errors.Is(err, service.ErrClientNotFound):
			status = fiber.StatusNotFound
		}

		h.logger.Error("Pipeline failed",
			zap.String("correlation_id", correlationID.String()),
			zap.Error(err),
		)
		return c.Status(status).JSON(fiber.Map{
			"error":          err.Error(),
			"correlation_id": correlationID.String(),
		})
	}

	return c.JSON(fiber.Map{
		"correlation_id": correlationID.String(),
		"result":         response,
	})
}

func (h *ProcessHandler) ValidateSubject(c *fiber.Ctx) error {
	var req dto.ValidateSubjectRequest
	if err := c.BodyParser(&req); err != nil || req.Subject == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Subject is required",
		})
	}

	processType, err := h.pipeline.ValidateSubject(req.Subject)
	if err != nil {
		return c.JSON(dto.ValidateSubjectResponse{
			Valid:   false,
			Message: err.Error(),
		})
	}

	return c.JSON(dto.ValidateSubjectResponse{
		Valid:       true,
		ProcessType: int(processType),
		Message:     processType.String(),
	})
}

// Reconcile exposes the ledger cross-check as a standalone tool for
// callers that stage responses outside the pipeline.
func (h *ProcessHandler) Reconcile(c *fiber.Ctx) error {
	var response models.FinalResponse
	if err := c.BodyParser(&response); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !response.ProcessType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "process_type must be 1 or 2",
		})
	}

	reconciled, err := h.reconcile.Reconcile(c.Context(), response)
	if err != nil {
		h.logger.Error("Reconciliation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Reconciliation failed",
		})
	}

	return c.JSON(reconciled)
}

func (h *ProcessHandler) Commit(c *fiber.Ctx) error {
	var req dto.CommitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	correlationID, err := uuid.Parse(req.CorrelationID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid correlation_id",
		})
	}

	var response models.FinalResponse
	if err := json.Unmarshal(req.Response, &response); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid response payload",
		})
	}

	committed, err := h.ledger.Commit(c.Context(), response, correlationID)
	if err != nil {
		h.logger.Error("Ledger commit failed",
			zap.String("correlation_id", correlationID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Ledger commit failed",
		})
	}

	return c.JSON(fiber.Map{
		"correlation_id": correlationID.String(),
		"result":         committed,
	})
}

// RunFieldTool invokes one catalog operation by name. This is the
// endpoint tool-invoked rules are routed through when executed remotely.
func (h *ProcessHandler) RunFieldTool(c *fiber.Ctx) error {
	tool, ok := ruleops.Lookup(c.Params("name"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown operation",
			"known": ruleops.Names(),
		})
	}

	var req dto.FieldToolRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	value := ruleops.Value{
		Text:    req.Value,
		Amount:  req.Amount,
		Numeric: req.Numeric,
	}

	result, err := tool.Run(value, req.Arg, req.ClientName)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(dto.FieldToolResponse{
		Value:   result.Value.Text,
		Amount:  result.Value.Amount,
		Valid:   result.Valid,
		Message: result.Message,
	})
}

func resolveCorrelationID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.New(), nil
	}
	return uuid.Parse(raw)
}
