package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ruleflow/internal/models"
	"ruleflow/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

// ExtractService is the boundary to the external extractor: it turns a
// free-text notification body into candidate field records via the LLM.
// The pipeline consumes its output as-is and performs no language
// understanding of its own.
type ExtractService struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func buildExtractorInstruction() string {
	return `You are an extraction assistant for financial notifications. Your only task is to read a notification message and extract placement or transaction records from it.

Each record has exactly four fields:
- customer_name: the customer's full name
- customer_account: the customer's account number, as written in the message
- amount_paid: the paid amount as a number (no currency symbols)
- balance_amount: the balance amount as a number (no currency symbols)

Rules:
- Always return a JSON array of record objects, nothing else.
- Do not invent records that are not in the message.
- If the message contains no records, return an empty array: []
- Keep account numbers exactly as written, including punctuation.
- Use 0 for a numeric field that is not present in the message.`
}

func NewExtractService(cfg *config.GigaChatConfig, logger *zap.Logger) (*ExtractService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = buildExtractorInstruction()
	model.Temperature = 0.1

	return &ExtractService{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (s *ExtractService) Close() {
	s.client.Close()
}

type fieldCandidate struct {
	CustomerName    string  `json:"customer_name"`
	CustomerAccount string  `json:"customer_account"`
	AmountPaid      float64 `json:"amount_paid"`
	BalanceAmount   float64 `json:"balance_amount"`
}

// ExtractFields asks the LLM for the record list. The returned fields
// are ordered as they appear in the message and carry empty audit trails.
func (s *ExtractService) ExtractFields(ctx context.Context, subject, content string) ([]models.ExtractedField, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		s.logger.Warn("Notification body is empty, skipping extraction")
		return []models.ExtractedField{}, nil
	}

	prompt := fmt.Sprintf(`Extract all placement or transaction records from this notification.

IMPORTANT: Return ONLY a valid JSON array, with no comments or explanations.

subject=%s
content=%s

Return a JSON array in this format:
[
  {
    "customer_name": "full name",
    "customer_account": "account number as written",
    "amount_paid": number,
    "balance_amount": number
  }
]

If there are no records, return an empty array: []`, subject, content)

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from LLM")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)

	// The model may wrap the array in markdown or prose; take the
	// outermost brackets.
	jsonStart := strings.Index(text, "[")
	jsonEnd := strings.LastIndex(text, "]")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		lowered := strings.ToLower(text)
		if strings.Contains(lowered, "no records") || strings.Contains(lowered, "empty") {
			s.logger.Info("LLM indicated no records found, returning empty list")
			return []models.ExtractedField{}, nil
		}
		return nil, fmt.Errorf("invalid extractor response format: %s", text)
	}

	jsonStr := text[jsonStart : jsonEnd+1]

	var candidates []fieldCandidate
	if err := json.Unmarshal([]byte(jsonStr), &candidates); err != nil {
		jsonStr = strings.TrimSpace(jsonStr)
		jsonStr = strings.TrimPrefix(jsonStr, "```json")
		jsonStr = strings.TrimPrefix(jsonStr, "```")
		jsonStr = strings.TrimSuffix(jsonStr, "```")
		jsonStr = strings.TrimSpace(jsonStr)

		if err := json.Unmarshal([]byte(jsonStr), &candidates); err != nil {
			return nil, fmt.Errorf("failed to parse extractor JSON: %w, content: %s", err, text)
		}
	}

	fields := make([]models.ExtractedField, len(candidates))
	for i, candidate := range candidates {
		fields[i] = models.ExtractedField{
			CustomerName:        sanitizeUTF8(candidate.CustomerName),
			CustomerAccount:     sanitizeUTF8(candidate.CustomerAccount),
			AmountPaid:          candidate.AmountPaid,
			BalanceAmount:       candidate.BalanceAmount,
			TransformationRules: []models.RuleAudit{},
			ValidationRules:     []models.RuleAudit{},
			FieldValidations:    []models.FieldValidation{},
		}
	}

	s.logger.Info("Extraction completed", zap.Int("records", len(fields)))

	return fields, nil
}
