package service

import (
	"context"
	"errors"
	"testing"

	"ruleflow/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLedgerWriter struct {
	err              error
	gotResponse      *models.FinalResponse
	gotCorrelationID uuid.UUID
}

func (f *fakeLedgerWriter) CommitFinalResponse(_ context.Context, response *models.FinalResponse, correlationID uuid.UUID) error {
	f.gotResponse = response
	f.gotCorrelationID = correlationID
	return f.err
}

func TestLedgerCommit(t *testing.T) {
	writer := &fakeLedgerWriter{}
	svc := NewLedgerService(writer, zap.NewNop())

	correlationID := uuid.New()
	response := models.FinalResponse{ClientID: 1, ProcessType: models.ProcessTypePlacement}

	result, err := svc.Commit(context.Background(), response, correlationID)
	require.NoError(t, err)
	assert.Equal(t, response, result)
	assert.Equal(t, correlationID, writer.gotCorrelationID)
}

func TestLedgerCommitFailure(t *testing.T) {
	writer := &fakeLedgerWriter{err: errors.New("serialization conflict")}
	svc := NewLedgerService(writer, zap.NewNop())

	_, err := svc.Commit(context.Background(), models.FinalResponse{}, uuid.New())
	require.Error(t, err)

	var persistErr *PersistError
	assert.ErrorAs(t, err, &persistErr)
}
