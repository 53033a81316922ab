package service

import (
	"sort"

	"ruleflow/internal/models"
	"ruleflow/internal/service/ruleops"

	"go.uber.org/zap"
)

// RuleEngine applies a client's rule set to one extracted record. Every
// applicable rule leaves an audit entry, including rules that failed;
// one bad rule never aborts the rest of the record.
type RuleEngine struct {
	logger *zap.Logger
}

func NewRuleEngine(logger *zap.Logger) *RuleEngine {
	return &RuleEngine{logger: logger}
}

type boundRule struct {
	rule   *models.Rule
	parsed ruleops.ParsedRule
}

// ApplyRules processes the four record fields in their fixed order. Per
// field: transformation rules fold left in ascending rule-id order, then
// validation rules run against the transformed value in the same order.
func (e *RuleEngine) ApplyRules(field models.ExtractedField, rules []*models.Rule, clientName string) models.ExtractedField {
	if field.TransformationRules == nil {
		field.TransformationRules = []models.RuleAudit{}
	}
	if field.ValidationRules == nil {
		field.ValidationRules = []models.RuleAudit{}
	}
	if field.FieldValidations == nil {
		field.FieldValidations = []models.FieldValidation{}
	}

	bound := make(map[ruleops.FieldName][]boundRule)
	for _, rule := range rules {
		parsed, ok := ruleops.Parse(rule.RuleContent)
		if !ok {
			if parsed.Field == "" {
				e.logger.Warn("Rule matched no field, skipping",
					zap.Int64("rule_id", rule.ID),
					zap.String("rule_content", rule.RuleContent),
				)
				continue
			}
			// Field recognized but the operation is not executable:
			// recorded as an error, processing continues.
			field.ValidationRules = append(field.ValidationRules, models.RuleAudit{
				RuleID:      rule.ID,
				Description: rule.RuleContent,
				Status:      models.StatusError + ": rule operation not recognized",
			})
			continue
		}
		bound[parsed.Field] = append(bound[parsed.Field], boundRule{rule: rule, parsed: parsed})
	}

	for _, fieldName := range ruleops.AllFields() {
		applicable := bound[fieldName]
		if len(applicable) == 0 {
			continue
		}

		sort.Slice(applicable, func(i, j int) bool {
			return applicable[i].rule.ID < applicable[j].rule.ID
		})

		var transformations, validations []boundRule
		for _, b := range applicable {
			if b.parsed.Tool.Kind == ruleops.KindTransformation {
				transformations = append(transformations, b)
			} else {
				validations = append(validations, b)
			}
		}

		value := readField(&field, fieldName)

		// Each transformation consumes the previous one's output.
		for _, b := range transformations {
			result, err := e.run(b, value, clientName)
			if err != nil {
				field.TransformationRules = append(field.TransformationRules, models.RuleAudit{
					RuleID:      b.rule.ID,
					Description: b.rule.RuleContent,
					Status:      models.StatusError + ": " + err.Error(),
				})
				continue
			}
			value = result.Value
			field.TransformationRules = append(field.TransformationRules, models.RuleAudit{
				RuleID:      b.rule.ID,
				Description: b.rule.RuleContent,
				Status:      models.StatusApplied,
			})
		}

		writeField(&field, fieldName, value)

		// A failing validation is recorded and the field is still
		// carried forward.
		for _, b := range validations {
			result, err := e.run(b, value, clientName)
			if err != nil {
				field.ValidationRules = append(field.ValidationRules, models.RuleAudit{
					RuleID:      b.rule.ID,
					Description: b.rule.RuleContent,
					Status:      models.StatusError + ": " + err.Error(),
				})
				continue
			}

			status := models.StatusPass
			if !result.Valid {
				status = models.StatusFail
			}
			field.ValidationRules = append(field.ValidationRules, models.RuleAudit{
				RuleID:      b.rule.ID,
				Description: b.rule.RuleContent,
				Status:      status,
			})
		}
	}

	return field
}

// run dispatches one rule. Tool-invoked rules go through the registry
// lookup; auto-applied rules call the bound operation directly. Both
// paths execute the same catalog entry.
func (e *RuleEngine) run(b boundRule, value ruleops.Value, clientName string) (ruleops.Result, error) {
	tool := b.parsed.Tool
	if b.rule.ExecutionMode == models.ModeToolInvoked {
		registered, ok := ruleops.Lookup(tool.Name)
		if !ok {
			e.logger.Warn("Tool not registered", zap.String("tool", tool.Name))
		} else {
			tool = registered
		}
	}
	return tool.Run(value, b.parsed.Arg, clientName)
}

func readField(field *models.ExtractedField, name ruleops.FieldName) ruleops.Value {
	switch name {
	case ruleops.FieldCustomerName:
		return ruleops.Value{Text: field.CustomerName}
	case ruleops.FieldCustomerAccount:
		return ruleops.Value{Text: field.CustomerAccount}
	case ruleops.FieldAmountPaid:
		return ruleops.Value{Amount: field.AmountPaid, Numeric: true}
	default:
		return ruleops.Value{Amount: field.BalanceAmount, Numeric: true}
	}
}

func writeField(field *models.ExtractedField, name ruleops.FieldName, value ruleops.Value) {
	switch name {
	case ruleops.FieldCustomerName:
		field.CustomerName = value.Text
	case ruleops.FieldCustomerAccount:
		field.CustomerAccount = value.Text
	case ruleops.FieldAmountPaid:
		field.AmountPaid = value.Amount
	default:
		field.BalanceAmount = value.Amount
	}
}
