package service

import (
	"errors"
	"fmt"
)

// Gate errors surfaced verbatim to callers as {"error": message}.
var (
	ErrProcessTypeNotIdentified = errors.New("ProcessType not identified")
	ErrClientNotFound           = errors.New("Client not found")
	ErrNoRulesProvided          = errors.New("no rules provided")
)

// Stage names the pipeline gate an error escaped from.
type Stage string

const (
	StageSubjectValidation  Stage = "subject_validation"
	StageClientVerification Stage = "client_verification"
	StageRuleRetrieval      Stage = "rule_retrieval"
	StageFieldExtraction    Stage = "field_extraction"
	StageRuleApplication    Stage = "rule_application"
	StageReconciliation     Stage = "reconciliation"
	StagePersistence        Stage = "persistence"
)

// PipelineError is a terminal gate failure. The pipeline is forward-only:
// once a stage reports one, no later stage runs.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// EmbeddingError: the embedding provider failed before anything was
// written; no partial state exists.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding provider failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// RetrievalError: a rule-store or ledger read failed.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// PersistError: an atomic write failed and left no partial state; the
// request is safe to retry with the same correlation id.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist failed: %v", e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
