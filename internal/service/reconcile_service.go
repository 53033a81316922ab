package service

import (
	"context"
	"sort"

	"ruleflow/internal/models"

	"go.uber.org/zap"
)

type ledgerReader interface {
	GetByAccountNumbers(ctx context.Context, accountNumbers []string) ([]*models.Account, error)
}

// ReconciliationService cross-checks extracted account numbers against
// the persisted ledger. Mismatches are annotations, never errors; only a
// failed ledger read is an error.
type ReconciliationService struct {
	accounts ledgerReader
	logger   *zap.Logger
}

func NewReconciliationService(accounts ledgerReader, logger *zap.Logger) *ReconciliationService {
	return &ReconciliationService{
		accounts: accounts,
		logger:   logger,
	}
}

func (s *ReconciliationService) Reconcile(ctx context.Context, response models.FinalResponse) (models.FinalResponse, error) {
	requested := make(map[string]struct{}, len(response.ExtractedFields))
	var accountNumbers []string
	for _, field := range response.ExtractedFields {
		if _, seen := requested[field.CustomerAccount]; !seen {
			requested[field.CustomerAccount] = struct{}{}
			accountNumbers = append(accountNumbers, field.CustomerAccount)
		}
	}

	rows, err := s.accounts.GetByAccountNumbers(ctx, accountNumbers)
	if err != nil {
		return response, &RetrievalError{Err: err}
	}

	existing := make(map[string]struct{}, len(rows))
	for _, account := range rows {
		existing[account.AccountNumber] = struct{}{}
	}

	switch response.ProcessType {
	case models.ProcessTypeTransaction:
		// missing = requested - existing
		for i := range response.ExtractedFields {
			field := &response.ExtractedFields[i]
			if _, ok := existing[field.CustomerAccount]; !ok {
				field.FieldValidations = append(field.FieldValidations, models.FieldValidation{
					Message: "Account does not exist",
				})
			}
		}

	case models.ProcessTypePlacement:
		// flagged = existing - requested. A flagged account is by
		// definition absent from the current batch, so matching fields
		// are annotated when present and the remainder surfaces on the
		// response-level errors.
		// TODO: confirm with the rule authors whether placement should
		// instead flag requested accounts that duplicate the ledger.
		var flagged []string
		for number := range existing {
			if _, ok := requested[number]; !ok {
				flagged = append(flagged, number)
			}
		}
		sort.Strings(flagged)

		for _, number := range flagged {
			annotated := false
			for i := range response.ExtractedFields {
				field := &response.ExtractedFields[i]
				if field.CustomerAccount == number {
					field.FieldValidations = append(field.FieldValidations, models.FieldValidation{
						Message: "Account already exists",
					})
					annotated = true
				}
			}
			if !annotated {
				response.Errors = append(response.Errors, "Account already exists: "+number)
			}
		}
	}

	s.logger.Info("Reconciliation completed",
		zap.String("process_type", response.ProcessType.String()),
		zap.Int("requested", len(requested)),
		zap.Int("existing", len(existing)),
	)

	return response, nil
}
