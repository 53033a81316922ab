package service

import (
	"context"

	"ruleflow/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ledgerWriter interface {
	CommitFinalResponse(ctx context.Context, response *models.FinalResponse, correlationID uuid.UUID) error
}

// LedgerService commits a fully validated batch as one atomic unit. The
// underlying call writes all accounts and transactions for the batch or
// none of them, and is retry-safe under the same correlation id.
type LedgerService struct {
	ledgerRepo ledgerWriter
	logger     *zap.Logger
}

func NewLedgerService(ledgerRepo ledgerWriter, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

func (s *LedgerService) Commit(ctx context.Context, response models.FinalResponse, correlationID uuid.UUID) (models.FinalResponse, error) {
	if err := s.ledgerRepo.CommitFinalResponse(ctx, &response, correlationID); err != nil {
		s.logger.Error("Ledger commit failed",
			zap.String("correlation_id", correlationID.String()),
			zap.Error(err),
		)
		return response, &PersistError{Err: err}
	}

	return response, nil
}
