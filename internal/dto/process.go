package dto

import "encoding/json"

type ProcessRequest struct {
	Subject string `json:"subject" validate:"required"`
	Content string `json:"content" validate:"required"`

	// CorrelationID is optional; the pipeline generates one when absent.
	// Retries must reuse the original value.
	CorrelationID string `json:"correlation_id"`
}

type ValidateSubjectRequest struct {
	Subject string `json:"subject" validate:"required"`
}

type ValidateSubjectResponse struct {
	Valid       bool   `json:"valid"`
	ProcessType int    `json:"process_type,omitempty"`
	Message     string `json:"message"`
}

// CommitRequest persists a finalized response under its correlation id.
type CommitRequest struct {
	CorrelationID string          `json:"correlation_id" validate:"required,uuid"`
	Response      json.RawMessage `json:"response" validate:"required"`
}

// FieldToolRequest invokes one named field operation with the current
// value plus the matched rule's metadata.
type FieldToolRequest struct {
	Value       string  `json:"value"`
	Amount      float64 `json:"amount"`
	Numeric     bool    `json:"numeric"`
	Arg         float64 `json:"arg"`
	ClientName  string  `json:"client_name"`
	RuleID      int64   `json:"rule_id"`
	RuleContent string  `json:"rule_content"`
}

type FieldToolResponse struct {
	Value   string  `json:"value"`
	Amount  float64 `json:"amount"`
	Valid   bool    `json:"valid"`
	Message string  `json:"message,omitempty"`
}
