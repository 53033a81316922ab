package service

import (
	"context"

	"ruleflow/internal/models"
	"ruleflow/internal/service/ruleops"
	"ruleflow/pkg/config"

	"go.uber.org/zap"
)

// Embedder turns texts into fixed-length vectors. Batch calls must
// preserve input-order correspondence.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

type ruleStore interface {
	CreateBatch(ctx context.Context, rules []*models.Rule) error
	ListByClientAndType(ctx context.Context, clientID int64, processType models.ProcessType, includeEmbeddings bool) ([]*models.Rule, error)
	SearchSimilar(ctx context.Context, clientID int64, processType models.ProcessType, embedding []float32, k int, includeEmbeddings bool) ([]*models.Rule, error)
	DeleteByClient(ctx context.Context, clientID int64) (int64, error)
}

// RuleService stores and retrieves per-client business rules as vector
// embeddings.
type RuleService struct {
	ruleRepo ruleStore
	embedder Embedder
	config   *config.PipelineConfig
	logger   *zap.Logger
}

func NewRuleService(ruleRepo ruleStore, embedder Embedder, cfg *config.PipelineConfig, logger *zap.Logger) *RuleService {
	return &RuleService{
		ruleRepo: ruleRepo,
		embedder: embedder,
		config:   cfg,
		logger:   logger,
	}
}

// StoreRules embeds every rule text in one batch call and inserts all
// rows in one transaction. Either the whole batch is stored or nothing
// is: an embedding failure happens before any insert, and the batch
// insert itself is atomic.
func (s *RuleService) StoreRules(ctx context.Context, clientID int64, processType models.ProcessType, ruleTexts []string) (int, error) {
	if len(ruleTexts) == 0 {
		return 0, ErrNoRulesProvided
	}

	s.logger.Info("Generating embeddings for rules",
		zap.Int64("client_id", clientID),
		zap.Int("count", len(ruleTexts)),
	)

	embeddings, err := s.embedder.EmbedDocuments(ctx, ruleTexts)
	if err != nil {
		return 0, &EmbeddingError{Err: err}
	}

	rules := make([]*models.Rule, len(ruleTexts))
	for i, text := range ruleTexts {
		rules[i] = &models.Rule{
			ClientID:      clientID,
			ProcessType:   processType,
			RuleContent:   text,
			ExecutionMode: executionModeFor(text),
			Embedding:     embeddings[i],
		}
	}

	if err := s.ruleRepo.CreateBatch(ctx, rules); err != nil {
		return 0, &PersistError{Err: err}
	}

	s.logger.Info("Rules stored",
		zap.Int64("client_id", clientID),
		zap.String("process_type", processType.String()),
		zap.Int("stored", len(rules)),
	)

	return len(rules), nil
}

// ListAllRules returns the full rule set for (client, mode), ordered
// ascending by rule id.
func (s *RuleService) ListAllRules(ctx context.Context, clientID int64, processType models.ProcessType, includeEmbeddings bool) ([]*models.Rule, error) {
	rules, err := s.ruleRepo.ListByClientAndType(ctx, clientID, processType, includeEmbeddings)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}
	return rules, nil
}

// SearchRules embeds the query and returns the top-k closest rules. An
// empty rule set yields an empty result, not an error.
func (s *RuleService) SearchRules(ctx context.Context, clientID int64, processType models.ProcessType, query string, k int, includeEmbeddings bool) ([]*models.Rule, error) {
	if k <= 0 {
		k = s.config.SearchTopK
	}

	queryEmbedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}

	rules, err := s.ruleRepo.SearchSimilar(ctx, clientID, processType, queryEmbedding, k, includeEmbeddings)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}

	s.logger.Info("Rule search completed",
		zap.Int64("client_id", clientID),
		zap.String("query", query),
		zap.Int("results", len(rules)),
	)

	return rules, nil
}

// DeleteRules irreversibly removes every rule for the client.
func (s *RuleService) DeleteRules(ctx context.Context, clientID int64) (int64, error) {
	deleted, err := s.ruleRepo.DeleteByClient(ctx, clientID)
	if err != nil {
		return 0, &PersistError{Err: err}
	}

	s.logger.Info("Rules deleted",
		zap.Int64("client_id", clientID),
		zap.Int64("deleted", deleted),
	)

	return deleted, nil
}

// executionModeFor marks rules that map onto externally invokable tools
// (account formatting, minimum-amount checks) as tool-invoked; everything
// else is computed inline.
func executionModeFor(content string) models.ExecutionMode {
	parsed, ok := ruleops.Parse(content)
	if !ok || parsed.Tool == nil {
		return models.ModeAutoApplied
	}
	switch parsed.Tool.Name {
	case ruleops.ToolFormatAccountNumber, ruleops.ToolMinAmount:
		return models.ModeToolInvoked
	default:
		return models.ModeAutoApplied
	}
}
