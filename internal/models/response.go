package models

// Audit statuses recorded against each applied rule.
const (
	StatusApplied = "applied"
	StatusPass    = "pass"
	StatusFail    = "fail"
	StatusError   = "error"
)

// RuleAudit is one entry in a field's audit trail. Every applicable rule
// produces exactly one entry, including rules that failed.
type RuleAudit struct {
	RuleID      int64  `json:"rule_id"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// FieldValidation is a reconciliation annotation. Mismatches are data,
// not errors.
type FieldValidation struct {
	Message string `json:"message"`
}

// ExtractedField is one candidate record produced by the extractor,
// annotated during rule application and reconciliation.
type ExtractedField struct {
	CustomerName    string  `json:"customer_name"`
	CustomerAccount string  `json:"customer_account"`
	AmountPaid      float64 `json:"amount_paid"`
	BalanceAmount   float64 `json:"balance_amount"`

	TransformationRules []RuleAudit       `json:"transformation_rules"`
	ValidationRules     []RuleAudit       `json:"validation_rules"`
	FieldValidations    []FieldValidation `json:"field_validations"`
}

// FinalResponse is the pipeline's accumulating result. It is passed by
// value between stages; no stage shares mutable state with another.
type FinalResponse struct {
	ClientID        int64            `json:"client_id"`
	ClientName      string           `json:"client_name"`
	ProcessType     ProcessType      `json:"process_type"`
	ExtractedFields []ExtractedField `json:"extracted_fields"`
	Errors          []string         `json:"errors,omitempty"`
}
