package dto

type StoreRulesRequest struct {
	ProcessType int      `json:"process_type" validate:"required,oneof=1 2"`
	Rules       []string `json:"rules" validate:"required,min=1"`

	// Replace drops the client's current rules before storing the batch.
	Replace bool `json:"replace"`
}

type StoreRulesResponse struct {
	ClientID    int64 `json:"client_id"`
	StoredCount int   `json:"stored_count"`
	Deleted     int64 `json:"deleted,omitempty"`
}

type RuleResult struct {
	RuleID          int64     `json:"rule_id"`
	ClientID        int64     `json:"client_id"`
	ProcessType     string    `json:"process_type"`
	RuleContent     string    `json:"rule_content"`
	IsAutoApply     bool      `json:"is_auto_apply"`
	Embedding       []float32 `json:"embedding,omitempty"`
	SimilarityScore float64   `json:"similarity_score,omitempty"`
}

type RulesResponse struct {
	ClientID     int64        `json:"client_id"`
	ResultsCount int          `json:"results_count"`
	Results      []RuleResult `json:"results"`
}

type DeleteRulesResponse struct {
	ClientID     int64 `json:"client_id"`
	RulesDeleted int64 `json:"rules_deleted"`
}
