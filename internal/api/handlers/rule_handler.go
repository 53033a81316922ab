package handlers

import (
	"errors"
	"strconv"

	"ruleflow/internal/dto"
	"ruleflow/internal/models"
	"ruleflow/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type RuleHandler struct {
	ruleService *service.RuleService
	logger      *zap.Logger
}

func NewRuleHandler(ruleService *service.RuleService, logger *zap.Logger) *RuleHandler {
	return &RuleHandler{
		ruleService: ruleService,
		logger:      logger,
	}
}

// Store embeds and persists a batch of rule texts for the client. With
// replace=true the existing rule set is dropped first, so a failed batch
// after the delete leaves the client with no rules; callers opting into
// replace accept that.
func (h *RuleHandler) Store(c *fiber.Ctx) error {
	clientID, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.StoreRulesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	processType := models.ProcessType(req.ProcessType)
	if !processType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "process_type must be 1 (Placement) or 2 (Transaction)",
		})
	}

	resp := dto.StoreRulesResponse{ClientID: clientID}

	if req.Replace {
		deleted, err := h.ruleService.DeleteRules(c.Context(), clientID)
		if err != nil {
			h.logger.Error("Failed to replace rules", zap.Int64("client_id", clientID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to replace rules",
			})
		}
		resp.Deleted = deleted
	}

	stored, err := h.ruleService.StoreRules(c.Context(), clientID, processType, req.Rules)
	if err != nil {
		if errors.Is(err, service.ErrNoRulesProvided) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "At least one rule is required",
			})
		}

		var embedErr *service.EmbeddingError
		if errors.As(err, &embedErr) {
			h.logger.Error("Embedding provider failed", zap.Int64("client_id", clientID), zap.Error(err))
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Embedding provider unavailable",
			})
		}

		h.logger.Error("Failed to store rules", zap.Int64("client_id", clientID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store rules",
		})
	}

	resp.StoredCount = stored
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List returns every rule for (client, process_type) ordered by id.
// Embeddings are omitted unless include_embeddings=true.
func (h *RuleHandler) List(c *fiber.Ctx) error {
	clientID, err := parseID(c)
	if err != nil {
		return err
	}

	processType, err := parseProcessType(c)
	if err != nil {
		return err
	}

	includeEmbeddings := c.QueryBool("include_embeddings", false)

	rules, err := h.ruleService.ListAllRules(c.Context(), clientID, processType, includeEmbeddings)
	if err != nil {
		h.logger.Error("Failed to list rules", zap.Int64("client_id", clientID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list rules",
		})
	}

	return c.JSON(buildRulesResponse(clientID, rules))
}

// Search embeds the query text and returns the k nearest rules by
// embedding distance.
func (h *RuleHandler) Search(c *fiber.Ctx) error {
	clientID, err := parseID(c)
	if err != nil {
		return err
	}

	processType, err := parseProcessType(c)
	if err != nil {
		return err
	}

	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter 'q' is required",
		})
	}

	k, _ := strconv.Atoi(c.Query("k", "0"))
	includeEmbeddings := c.QueryBool("include_embeddings", false)

	rules, err := h.ruleService.SearchRules(c.Context(), clientID, processType, query, k, includeEmbeddings)
	if err != nil {
		var embedErr *service.EmbeddingError
		if errors.As(err, &embedErr) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Embedding provider unavailable",
			})
		}
		h.logger.Error("Failed to search rules", zap.Int64("client_id", clientID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search rules",
		})
	}

	return c.JSON(buildRulesResponse(clientID, rules))
}

func (h *RuleHandler) Delete(c *fiber.Ctx) error {
	clientID, err := parseID(c)
	if err != nil {
		return err
	}

	deleted, err := h.ruleService.DeleteRules(c.Context(), clientID)
	if err != nil {
		h.logger.Error("Failed to delete rules", zap.Int64("client_id", clientID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete rules",
		})
	}

	return c.JSON(dto.DeleteRulesResponse{ClientID: clientID, RulesDeleted: deleted})
}

func parseProcessType(c *fiber.Ctx) (models.ProcessType, error) {
	raw, err := strconv.Atoi(c.Query("process_type"))
	if err != nil {
		return 0, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter 'process_type' is required",
		})
	}

	processType := models.ProcessType(raw)
	if !processType.Valid() {
		return 0, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "process_type must be 1 (Placement) or 2 (Transaction)",
		})
	}

	return processType, nil
}

func buildRulesResponse(clientID int64, rules []*models.Rule) dto.RulesResponse {
	results := make([]dto.RuleResult, len(rules))
	for i, rule := range rules {
		results[i] = dto.RuleResult{
			RuleID:          rule.ID,
			ClientID:        rule.ClientID,
			ProcessType:     rule.ProcessType.String(),
			RuleContent:     rule.RuleContent,
			IsAutoApply:     rule.ExecutionMode.AutoApply(),
			Embedding:       rule.Embedding,
			SimilarityScore: rule.SimilarityScore,
		}
	}

	return dto.RulesResponse{
		ClientID:     clientID,
		ResultsCount: len(results),
		Results:      results,
	}
}
