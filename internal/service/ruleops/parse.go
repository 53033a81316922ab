package ruleops

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedRule is a rule's free-text content resolved against the catalog:
// which field it targets, which operation runs, and the numeric argument
// for parameterized validations.
type ParsedRule struct {
	Field  FieldName
	Tool   *Tool
	Arg    float64
	HasArg bool
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Parse maps rule content onto the operation catalog. It returns false
// when the content names no recognizable field or operation; such rules
// are recorded in the audit trail with an error status by the engine.
func Parse(content string) (ParsedRule, bool) {
	lowered := strings.ToLower(content)

	field, ok := detectField(lowered)
	if !ok {
		return ParsedRule{}, false
	}

	tool, ok := detectTool(lowered)
	if !ok {
		return ParsedRule{Field: field}, false
	}

	parsed := ParsedRule{Field: field, Tool: tool}
	if match := numberPattern.FindString(lowered); match != "" {
		if arg, err := strconv.ParseFloat(match, 64); err == nil {
			parsed.Arg = arg
			parsed.HasArg = true
		}
	}

	return parsed, true
}

// Match order matters: "amount paid" and "balance" must win before the
// generic "account" check so rules like "minimum amount paid" do not
// bind to the account field.
func detectField(lowered string) (FieldName, bool) {
	switch {
	case strings.Contains(lowered, "customer name") || strings.Contains(lowered, "name"):
		if strings.Contains(lowered, "account") {
			return FieldCustomerAccount, true
		}
		return FieldCustomerName, true
	case strings.Contains(lowered, "balance"):
		return FieldBalanceAmount, true
	case strings.Contains(lowered, "amount paid") || strings.Contains(lowered, "paid"):
		return FieldAmountPaid, true
	case strings.Contains(lowered, "account"):
		return FieldCustomerAccount, true
	default:
		return "", false
	}
}

func detectTool(lowered string) (*Tool, bool) {
	switch {
	case strings.Contains(lowered, "trim") || strings.Contains(lowered, "whitespace"):
		return catalog[ToolTrimWhitespace], true
	case strings.Contains(lowered, "special") || strings.Contains(lowered, "alphanumeric"):
		return catalog[ToolStripSpecialChars], true
	case strings.Contains(lowered, "format"):
		return catalog[ToolFormatAccountNumber], true
	case strings.Contains(lowered, "maximum length") || strings.Contains(lowered, "max length"):
		return catalog[ToolMaxLength], true
	case strings.Contains(lowered, "minimum") || strings.Contains(lowered, "at least"):
		return catalog[ToolMinAmount], true
	case strings.Contains(lowered, "required") || strings.Contains(lowered, "mandatory"):
		return catalog[ToolRequired], true
	default:
		return nil, false
	}
}
