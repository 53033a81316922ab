package repository

import (
	"context"
	"strconv"
	"strings"

	"ruleflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RuleRepository persists client rules together with their embeddings in
// a pgvector-backed table.
type RuleRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRuleRepository(db *pgxpool.Pool, logger *zap.Logger) *RuleRepository {
	return &RuleRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts all rules in one transaction. Either every row is
// visible afterwards or none is.
func (r *RuleRepository) CreateBatch(ctx context.Context, rules []*models.Rule) error {
	if len(rules) == 0 {
		return nil
	}

	builder := squirrel.Insert("client_rules").
		Columns("client_id", "process_type", "rule_content", "is_auto_apply", "embedding").
		PlaceholderFormat(squirrel.Dollar)

	for _, rule := range rules {
		builder = builder.Values(
			rule.ClientID,
			int(rule.ProcessType),
			rule.RuleContent,
			rule.ExecutionMode.AutoApply(),
			squirrel.Expr("?::vector", vectorLiteral(rule.Embedding)),
		)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListByClientAndType returns every rule for (client, process type),
// ordered ascending by id for reproducible audits.
func (r *RuleRepository) ListByClientAndType(ctx context.Context, clientID int64, processType models.ProcessType, includeEmbeddings bool) ([]*models.Rule, error) {
	query := squirrel.Select("id", "client_id", "process_type", "rule_content", "is_auto_apply", "embedding::text", "created_at").
		From("client_rules").
		Where(squirrel.Eq{"client_id": clientID, "process_type": int(processType)}).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.Rule
	for rows.Next() {
		var rule models.Rule
		var autoApply bool
		var processType int
		var embeddingText *string

		if err := rows.Scan(
			&rule.ID, &rule.ClientID, &processType, &rule.RuleContent, &autoApply, &embeddingText, &rule.CreatedAt,
		); err != nil {
			return nil, err
		}

		rule.ProcessType = models.ProcessType(processType)
		rule.ExecutionMode = models.ExecutionModeFromBool(autoApply)
		if includeEmbeddings && embeddingText != nil {
			rule.Embedding = parseVector(*embeddingText)
		}
		rules = append(rules, &rule)
	}

	return rules, rows.Err()
}

// SearchSimilar ranks rules by ascending cosine distance to the query
// embedding, with rule id as the tiebreak, and returns at most k rows.
func (r *RuleRepository) SearchSimilar(ctx context.Context, clientID int64, processType models.ProcessType, embedding []float32, k int, includeEmbeddings bool) ([]*models.Rule, error) {
	vec := vectorLiteral(embedding)

	query := squirrel.Select("id", "client_id", "process_type", "rule_content", "is_auto_apply", "embedding::text").
		Column(squirrel.Expr("1 - (embedding <=> ?::vector) AS similarity_score", vec)).
		From("client_rules").
		Where(squirrel.Eq{"client_id": clientID, "process_type": int(processType)}).
		OrderByClause("embedding <=> ?::vector ASC, id ASC", vec).
		Limit(uint64(k)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.Rule
	for rows.Next() {
		var rule models.Rule
		var autoApply bool
		var pt int
		var embeddingText *string

		if err := rows.Scan(
			&rule.ID, &rule.ClientID, &pt, &rule.RuleContent, &autoApply, &embeddingText, &rule.SimilarityScore,
		); err != nil {
			return nil, err
		}

		rule.ProcessType = models.ProcessType(pt)
		rule.ExecutionMode = models.ExecutionModeFromBool(autoApply)
		if includeEmbeddings && embeddingText != nil {
			rule.Embedding = parseVector(*embeddingText)
		}
		rules = append(rules, &rule)
	}

	return rules, rows.Err()
}

// DeleteByClient removes every rule for the client and returns the count.
func (r *RuleRepository) DeleteByClient(ctx context.Context, clientID int64) (int64, error) {
	query := squirrel.Delete("client_rules").
		Where(squirrel.Eq{"client_id": clientID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// vectorLiteral renders an embedding in pgvector's input format: [x,y,z]
func vectorLiteral(embedding []float32) string {
	var builder strings.Builder
	builder.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	builder.WriteByte(']')
	return builder.String()
}

// parseVector parses pgvector's text output back into a float slice
func parseVector(text string) []float32 {
	text = strings.Trim(strings.TrimSpace(text), "[]")
	if text == "" {
		return nil
	}

	parts := strings.Split(text, ",")
	embedding := make([]float32, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil
		}
		embedding = append(embedding, float32(v))
	}
	return embedding
}
