package repository

import (
	"context"

	"ruleflow/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ProcessLogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProcessLogRepository(db *pgxpool.Pool, logger *zap.Logger) *ProcessLogRepository {
	return &ProcessLogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProcessLogRepository) Save(ctx context.Context, log *models.ProcessLog) error {
	query := squirrel.Insert("process_logs").
		Columns("correlation_id", "subject", "client_id", "process_type", "status", "message", "created_at").
		Values(log.CorrelationID, log.Subject, log.ClientID, log.ProcessType, log.Status, log.Message, log.CreatedAt).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, sql, args...).Scan(&log.ID)
}
