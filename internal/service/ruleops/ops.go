package ruleops

import (
	"fmt"
	"strings"
	"unicode"
)

// FieldName identifies one of the four extracted-record fields a rule
// can target.
type FieldName string

const (
	FieldCustomerName    FieldName = "customer_name"
	FieldCustomerAccount FieldName = "customer_account"
	FieldAmountPaid      FieldName = "amount_paid"
	FieldBalanceAmount   FieldName = "balance_amount"
)

// AllFields returns the field names in their fixed processing order.
func AllFields() []FieldName {
	return []FieldName{FieldCustomerName, FieldCustomerAccount, FieldAmountPaid, FieldBalanceAmount}
}

// Kind separates rules that reshape a value from rules that check a
// predicate. The split is by operation semantics, not by execution mode.
type Kind int

const (
	KindTransformation Kind = iota
	KindValidation
)

// Value carries the current state of one field through a rule chain.
// String fields use Text; amount fields use Amount with Numeric set.
type Value struct {
	Text    string
	Amount  float64
	Numeric bool
}

// Result is the outcome of running one operation.
type Result struct {
	Value   Value
	Valid   bool
	Message string
}

// Tool is one named operation with a fixed signature. The catalog below
// is the closed set of operations the engine can dispatch, whether a
// rule is auto-applied or tool-invoked.
type Tool struct {
	Name string
	Kind Kind
	Run  func(v Value, arg float64, clientName string) (Result, error)
}

const (
	ToolTrimWhitespace      = "trim_whitespace"
	ToolStripSpecialChars   = "strip_special_chars"
	ToolFormatAccountNumber = "format_account_number"
	ToolRequired            = "required"
	ToolMaxLength           = "max_length"
	ToolMinAmount           = "min_amount"
)

var catalog = map[string]*Tool{
	ToolTrimWhitespace: {
		Name: ToolTrimWhitespace,
		Kind: KindTransformation,
		Run: func(v Value, _ float64, _ string) (Result, error) {
			if v.Numeric {
				return Result{}, fmt.Errorf("trim_whitespace is not applicable to numeric values")
			}
			v.Text = strings.TrimSpace(v.Text)
			return Result{Value: v, Valid: true}, nil
		},
	},
	ToolStripSpecialChars: {
		Name: ToolStripSpecialChars,
		Kind: KindTransformation,
		Run: func(v Value, _ float64, _ string) (Result, error) {
			if v.Numeric {
				return Result{}, fmt.Errorf("strip_special_chars is not applicable to numeric values")
			}
			var builder strings.Builder
			for _, r := range v.Text {
				if unicode.IsLetter(r) || unicode.IsDigit(r) {
					builder.WriteRune(r)
				}
			}
			v.Text = builder.String()
			return Result{Value: v, Valid: true}, nil
		},
	},
	ToolFormatAccountNumber: {
		Name: ToolFormatAccountNumber,
		Kind: KindTransformation,
		Run: func(v Value, _ float64, clientName string) (Result, error) {
			if v.Numeric {
				return Result{}, fmt.Errorf("format_account_number is not applicable to numeric values")
			}
			if clientName == "ABC" && len(v.Text) > 3 {
				v.Text = v.Text[:3] + "-" + v.Text[3:]
			}
			return Result{Value: v, Valid: true}, nil
		},
	},
	ToolRequired: {
		Name: ToolRequired,
		Kind: KindValidation,
		Run: func(v Value, _ float64, _ string) (Result, error) {
			if v.Numeric {
				return Result{Value: v, Valid: v.Amount != 0, Message: "value is required"}, nil
			}
			return Result{Value: v, Valid: strings.TrimSpace(v.Text) != "", Message: "value is required"}, nil
		},
	},
	ToolMaxLength: {
		Name: ToolMaxLength,
		Kind: KindValidation,
		Run: func(v Value, arg float64, _ string) (Result, error) {
			if v.Numeric {
				return Result{}, fmt.Errorf("max_length is not applicable to numeric values")
			}
			valid := len(v.Text) <= int(arg)
			return Result{Value: v, Valid: valid, Message: fmt.Sprintf("length must not exceed %d", int(arg))}, nil
		},
	},
	ToolMinAmount: {
		Name: ToolMinAmount,
		Kind: KindValidation,
		Run: func(v Value, arg float64, _ string) (Result, error) {
			if !v.Numeric {
				return Result{}, fmt.Errorf("min_amount requires a numeric value")
			}
			valid := v.Amount >= arg
			return Result{Value: v, Valid: valid, Message: fmt.Sprintf("amount must be at least %g", arg)}, nil
		},
	},
}

// Lookup returns the named tool from the catalog.
func Lookup(name string) (*Tool, bool) {
	tool, ok := catalog[name]
	return tool, ok
}

// Names lists the catalog in no particular order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	return names
}
