package service

import (
	"context"
	"errors"
	"testing"

	"ruleflow/internal/models"
	"ruleflow/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEmbedder struct {
	err      error
	gotTexts []string
	gotQuery string
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotTexts = texts
	// Deterministic per-position vectors so ordering is observable.
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i), 1}
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, query string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotQuery = query
	return []float32{0.5, 0.5}, nil
}

type fakeRuleStore struct {
	createErr  error
	listErr    error
	searchErr  error
	deleteErr  error
	created    []*models.Rule
	listed     []*models.Rule
	deleted    int64
	gotK       int
	gotEmbed   []float32
	gotInclude bool
}

func (f *fakeRuleStore) CreateBatch(_ context.Context, rules []*models.Rule) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = rules
	return nil
}

func (f *fakeRuleStore) ListByClientAndType(_ context.Context, _ int64, _ models.ProcessType, includeEmbeddings bool) ([]*models.Rule, error) {
	f.gotInclude = includeEmbeddings
	return f.listed, f.listErr
}

func (f *fakeRuleStore) SearchSimilar(_ context.Context, _ int64, _ models.ProcessType, embedding []float32, k int, _ bool) ([]*models.Rule, error) {
	f.gotEmbed = embedding
	f.gotK = k
	return f.listed, f.searchErr
}

func (f *fakeRuleStore) DeleteByClient(_ context.Context, _ int64) (int64, error) {
	return f.deleted, f.deleteErr
}

func newRuleService(store *fakeRuleStore, embedder *fakeEmbedder) *RuleService {
	return NewRuleService(store, embedder, &config.PipelineConfig{SearchTopK: 3}, zap.NewNop())
}

func TestStoreRulesPreservesOrderCorrespondence(t *testing.T) {
	store := &fakeRuleStore{}
	embedder := &fakeEmbedder{}
	svc := newRuleService(store, embedder)

	texts := []string{
		"Trim whitespace from the customer name",
		"Amount paid must be at least 10",
	}

	stored, err := svc.StoreRules(context.Background(), 1, models.ProcessTypeTransaction, texts)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	require.Len(t, store.created, 2)
	for i, rule := range store.created {
		assert.Equal(t, texts[i], rule.RuleContent)
		assert.Equal(t, []float32{float32(i), 1}, rule.Embedding, "embedding must stay with its text")
		assert.Equal(t, models.ProcessTypeTransaction, rule.ProcessType)
	}
}

func TestStoreRulesDerivesExecutionMode(t *testing.T) {
	store := &fakeRuleStore{}
	svc := newRuleService(store, &fakeEmbedder{})

	texts := []string{
		"Trim whitespace from the customer name",
		"Format the account number with a dash after the third character",
		"Amount paid must be at least 10",
	}

	_, err := svc.StoreRules(context.Background(), 1, models.ProcessTypePlacement, texts)
	require.NoError(t, err)

	require.Len(t, store.created, 3)
	assert.Equal(t, models.ModeAutoApplied, store.created[0].ExecutionMode)
	assert.Equal(t, models.ModeToolInvoked, store.created[1].ExecutionMode)
	assert.Equal(t, models.ModeToolInvoked, store.created[2].ExecutionMode)
}

func TestStoreRulesEmptyBatchRejected(t *testing.T) {
	svc := newRuleService(&fakeRuleStore{}, &fakeEmbedder{})

	_, err := svc.StoreRules(context.Background(), 1, models.ProcessTypePlacement, nil)
	assert.ErrorIs(t, err, ErrNoRulesProvided)
}

func TestStoreRulesEmbeddingFailureWritesNothing(t *testing.T) {
	store := &fakeRuleStore{}
	embedder := &fakeEmbedder{err: errors.New("oauth expired")}
	svc := newRuleService(store, embedder)

	_, err := svc.StoreRules(context.Background(), 1, models.ProcessTypePlacement, []string{"rule"})
	require.Error(t, err)

	var embedErr *EmbeddingError
	assert.ErrorAs(t, err, &embedErr)
	assert.Empty(t, store.created)
}

func TestStoreRulesPersistFailure(t *testing.T) {
	store := &fakeRuleStore{createErr: errors.New("insert failed")}
	svc := newRuleService(store, &fakeEmbedder{})

	_, err := svc.StoreRules(context.Background(), 1, models.ProcessTypePlacement, []string{"rule"})
	require.Error(t, err)

	var persistErr *PersistError
	assert.ErrorAs(t, err, &persistErr)
}

func TestSearchRulesDefaultsTopK(t *testing.T) {
	store := &fakeRuleStore{}
	svc := newRuleService(store, &fakeEmbedder{})

	_, err := svc.SearchRules(context.Background(), 1, models.ProcessTypePlacement, "formatting", 0, false)
	require.NoError(t, err)
	assert.Equal(t, 3, store.gotK)
	assert.Equal(t, []float32{0.5, 0.5}, store.gotEmbed)
}

func TestListAllRulesWrapsError(t *testing.T) {
	store := &fakeRuleStore{listErr: errors.New("query failed")}
	svc := newRuleService(store, &fakeEmbedder{})

	_, err := svc.ListAllRules(context.Background(), 1, models.ProcessTypePlacement, false)
	require.Error(t, err)

	var retrievalErr *RetrievalError
	assert.ErrorAs(t, err, &retrievalErr)
}

func TestDeleteRules(t *testing.T) {
	store := &fakeRuleStore{deleted: 4}
	svc := newRuleService(store, &fakeEmbedder{})

	deleted, err := svc.DeleteRules(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}
