package service

import (
	"context"
	"errors"
	"testing"

	"ruleflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLedgerReader struct {
	accounts []*models.Account
	err      error
	gotQuery []string
}

func (f *fakeLedgerReader) GetByAccountNumbers(_ context.Context, accountNumbers []string) ([]*models.Account, error) {
	f.gotQuery = accountNumbers
	return f.accounts, f.err
}

func ledgerAccounts(numbers ...string) []*models.Account {
	accounts := make([]*models.Account, len(numbers))
	for i, number := range numbers {
		accounts[i] = &models.Account{ID: int64(i + 1), AccountNumber: number}
	}
	return accounts
}

func fieldsFor(accounts ...string) []models.ExtractedField {
	fields := make([]models.ExtractedField, len(accounts))
	for i, account := range accounts {
		fields[i] = models.ExtractedField{CustomerAccount: account}
	}
	return fields
}

func TestReconcileTransactionFlagsMissingAccounts(t *testing.T) {
	reader := &fakeLedgerReader{accounts: ledgerAccounts("A", "B")}
	svc := NewReconciliationService(reader, zap.NewNop())

	response := models.FinalResponse{
		ProcessType:     models.ProcessTypeTransaction,
		ExtractedFields: fieldsFor("A", "B", "C"),
	}

	result, err := svc.Reconcile(context.Background(), response)
	require.NoError(t, err)

	assert.Empty(t, result.ExtractedFields[0].FieldValidations)
	assert.Empty(t, result.ExtractedFields[1].FieldValidations)
	require.Len(t, result.ExtractedFields[2].FieldValidations, 1)
	assert.Equal(t, "Account does not exist", result.ExtractedFields[2].FieldValidations[0].Message)
	assert.Empty(t, result.Errors)
}

func TestReconcilePlacementFlagsLedgerOnlyAccounts(t *testing.T) {
	// Ledger knows A and B; the batch carries only A. The difference is
	// taken ledger-minus-batch, so B is flagged even though it is not in
	// the request, and surfaces on the response because no field matches.
	reader := &fakeLedgerReader{accounts: ledgerAccounts("A", "B")}
	svc := NewReconciliationService(reader, zap.NewNop())

	response := models.FinalResponse{
		ProcessType:     models.ProcessTypePlacement,
		ExtractedFields: fieldsFor("A"),
	}

	result, err := svc.Reconcile(context.Background(), response)
	require.NoError(t, err)

	assert.Empty(t, result.ExtractedFields[0].FieldValidations)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Account already exists: B", result.Errors[0])
}

func TestReconcilePlacementNoOverlapIsClean(t *testing.T) {
	reader := &fakeLedgerReader{accounts: ledgerAccounts("A")}
	svc := NewReconciliationService(reader, zap.NewNop())

	response := models.FinalResponse{
		ProcessType:     models.ProcessTypePlacement,
		ExtractedFields: fieldsFor("A", "B"),
	}

	result, err := svc.Reconcile(context.Background(), response)
	require.NoError(t, err)

	for _, field := range result.ExtractedFields {
		assert.Empty(t, field.FieldValidations)
	}
	assert.Empty(t, result.Errors)
}

func TestReconcileDeduplicatesQuery(t *testing.T) {
	reader := &fakeLedgerReader{}
	svc := NewReconciliationService(reader, zap.NewNop())

	response := models.FinalResponse{
		ProcessType:     models.ProcessTypeTransaction,
		ExtractedFields: fieldsFor("A", "A", "B"),
	}

	_, err := svc.Reconcile(context.Background(), response)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, reader.gotQuery)
}

func TestReconcileLedgerReadFailure(t *testing.T) {
	reader := &fakeLedgerReader{err: errors.New("connection reset")}
	svc := NewReconciliationService(reader, zap.NewNop())

	response := models.FinalResponse{
		ProcessType:     models.ProcessTypeTransaction,
		ExtractedFields: fieldsFor("A"),
	}

	_, err := svc.Reconcile(context.Background(), response)
	require.Error(t, err)

	var retrievalErr *RetrievalError
	assert.ErrorAs(t, err, &retrievalErr)
}
