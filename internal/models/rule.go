package models

import "time"

// ProcessType is derived once per request from the notification subject
// and never changes afterwards.
type ProcessType int

const (
	ProcessTypePlacement   ProcessType = 1
	ProcessTypeTransaction ProcessType = 2
)

func (p ProcessType) String() string {
	switch p {
	case ProcessTypePlacement:
		return "Placement"
	case ProcessTypeTransaction:
		return "Transaction"
	default:
		return "Unknown"
	}
}

func (p ProcessType) Valid() bool {
	return p == ProcessTypePlacement || p == ProcessTypeTransaction
}

// ExecutionMode selects how a rule is executed: computed inline or routed
// through a named tool operation. The persisted column is the legacy
// is_auto_apply boolean; the enum keeps the two paths explicit.
type ExecutionMode int

const (
	ModeAutoApplied ExecutionMode = iota
	ModeToolInvoked
)

func ExecutionModeFromBool(autoApply bool) ExecutionMode {
	if autoApply {
		return ModeAutoApplied
	}
	return ModeToolInvoked
}

func (m ExecutionMode) AutoApply() bool {
	return m == ModeAutoApplied
}

func (m ExecutionMode) String() string {
	if m == ModeToolInvoked {
		return "tool_invoked"
	}
	return "auto_applied"
}

// Rule is a stored transformation or validation instruction with an
// embedding for semantic retrieval.
type Rule struct {
	ID            int64         `db:"id" json:"rule_id"`
	ClientID      int64         `db:"client_id" json:"client_id"`
	ProcessType   ProcessType   `db:"process_type" json:"process_type"`
	RuleContent   string        `db:"rule_content" json:"rule_content"`
	ExecutionMode ExecutionMode `db:"is_auto_apply" json:"-"`
	Embedding     []float32     `db:"embedding" json:"embedding,omitempty"`

	// SimilarityScore is populated by semantic search only.
	SimilarityScore float64 `db:"similarity_score" json:"similarity_score,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"-"`
}
